// Package merkle implements the fixed-depth, dirty-bit-recomputed binary
// hash tree that indexes the file store's slots and produces inclusion
// proofs.
package merkle
