// Package badgerstore implements cube.Store on BadgerDB.
//
// Each cube row is one key. Row values are XOR-delta encoded across
// consecutive samples, which turns the slowly varying bits of neighbouring
// bands into long zero runs, and then zstd compressed. A WriteRows call is
// committed as one write batch, so a streaming chunk lands atomically.
package badgerstore
