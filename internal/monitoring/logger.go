// Package monitoring holds the diagnostic logger used by the orchestration
// layer. Numeric packages never log.
package monitoring

import (
	"log"
	"sync/atomic"
)

type logFunc func(format string, v ...interface{})

var logger atomic.Pointer[logFunc]

func init() {
	SetLogger(log.Printf)
}

// Logf writes a diagnostic message through the current logger, log.Printf
// unless replaced by SetLogger.
func Logf(format string, v ...interface{}) {
	(*logger.Load())(format, v...)
}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
// It is safe to call while other goroutines log; tests and embedding
// applications use it to redirect or mute output.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	fn := logFunc(f)
	logger.Store(&fn)
}
