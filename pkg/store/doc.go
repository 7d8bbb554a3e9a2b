// Package store implements the FileStore façade: a slot allocator, a
// name_hash -> slot_index map, and the merkle.Tree they sit in front of.
//
// A single mutex guards the allocator, the index, and the tree together,
// since an allocation and its tree update must be observed atomically by
// any concurrent reader.
package store
