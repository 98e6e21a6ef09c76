// Package cube defines the spectral cube data model and the chunked row
// stores used by streaming processing.
//
// A cube has shape (Rows, Cols, Bands) and is laid out row-major with the
// band index fastest, so each pixel spectrum and each block of whole rows is
// contiguous. Stores exchange whole rows: a read or write of n rows moves
// n·Cols·Bands values.
package cube
