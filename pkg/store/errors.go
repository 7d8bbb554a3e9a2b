package store

import "errors"

// ErrStoreFull is returned by Add when next_slot has reached the tree's
// capacity (2^D).
var ErrStoreFull = errors.New("store: full")

// ErrNotFound is returned by operations addressed by name_hash when the
// name_hash is absent from the index. Lookup paths (Get, Proof) prefer
// returning ok=false over this error so a missing file is not confused
// with a genuine fault; ErrNotFound exists for callers, such as Evict,
// that have no optional-return shape.
var ErrNotFound = errors.New("store: name_hash not found")
