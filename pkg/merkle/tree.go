package merkle

import (
	"crypto/sha256"
	"fmt"

	"github.com/coldvault/vault/pkg/blob"
)

// Digest is a SHA-256 output.
type Digest [32]byte

// node is a single tree node, a tagged union of leaf and branch expressed
// as one struct rather than an interface: isLeaf selects which fields are
// meaningful, avoiding virtual dispatch for a shape this simple.
type node struct {
	digest Digest
	dirty  bool

	isLeaf bool
	blob   *blob.FileBlob // only meaningful if isLeaf

	left, right *node // only meaningful if !isLeaf
}

var emptyLeafDigest = sha256.Sum256(nil)

// Tree is a complete binary tree of fixed depth over 2^depth leaf slots.
// It is not safe for concurrent use on its own; pkg/store serializes
// access to it under a single RWMutex.
type Tree struct {
	depth int
	root  *node
}

// New builds a fully populated tree of the given depth with every leaf
// empty, so the top hash is well-defined before any slot is occupied.
func New(depth int) *Tree {
	return &Tree{depth: depth, root: buildNode(depth)}
}

func buildNode(depth int) *node {
	if depth == 0 {
		return &node{isLeaf: true, digest: emptyLeafDigest}
	}
	left := buildNode(depth - 1)
	right := buildNode(depth - 1)
	return &node{digest: branchDigest(left.digest, right.digest), left: left, right: right}
}

func branchDigest(left, right Digest) Digest {
	buf := make([]byte, 0, 64)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return sha256.Sum256(buf)
}

// Depth returns the tree's fixed depth D.
func (t *Tree) Depth() int { return t.depth }

// Capacity returns 2^D, the number of leaf slots.
func (t *Tree) Capacity() uint64 { return uint64(1) << uint(t.depth) }

func (t *Tree) checkID(id uint64) error {
	if id >= t.Capacity() {
		return fmt.Errorf("merkle: slot %d out of range (capacity %d)", id, t.Capacity())
	}
	return nil
}

// SetLeaf installs b (possibly nil, to clear a slot) at id and marks every
// node on the root-to-leaf path dirty. The bit order is a contract shared
// with Proof: bit 0 of id chooses the child at the root (0=left,
// 1=right), bit 1 at depth 1, and so on.
func (t *Tree) SetLeaf(id uint64, b *blob.FileBlob) error {
	if err := t.checkID(id); err != nil {
		return err
	}
	n := t.root
	for d := t.depth; d > 0; d-- {
		n.dirty = true
		if id&1 == 0 {
			n = n.left
		} else {
			n = n.right
		}
		id >>= 1
	}
	n.dirty = true
	n.blob = b
	return nil
}

// Leaf returns the blob at id without marking anything dirty, or nil if the
// slot is empty.
func (t *Tree) Leaf(id uint64) (*blob.FileBlob, error) {
	if err := t.checkID(id); err != nil {
		return nil, err
	}
	n := t.root
	for d := t.depth; d > 0; d-- {
		if id&1 == 0 {
			n = n.left
		} else {
			n = n.right
		}
		id >>= 1
	}
	return n.blob, nil
}

// Recompute walks the tree in post-order, recomputing the digest of every
// dirty node and clearing its dirty flag. It must be called before TopHash
// or Proof is consumed by an external party. It never fails: hashing is
// pure in-memory CPU work over whatever body bytes are currently resident
// in each leaf's blob.
func (t *Tree) Recompute() {
	recompute(t.root)
}

func recompute(n *node) {
	if !n.dirty {
		return
	}
	n.dirty = false

	if n.isLeaf {
		var body []byte
		if n.blob != nil {
			body = n.blob.Contents()
		}
		n.digest = sha256.Sum256(body)
		return
	}

	recompute(n.left)
	recompute(n.right)
	n.digest = branchDigest(n.left.digest, n.right.digest)
}

// TopHash returns the root digest. Meaningful only after Recompute.
func (t *Tree) TopHash() Digest {
	return t.root.digest
}

// Proof extracts the inclusion proof for id: the ordered, root-to-leaf
// sibling path, plus the current top hash. Meaningful only after
// Recompute.
func (t *Tree) Proof(id uint64) (*Proof, error) {
	if err := t.checkID(id); err != nil {
		return nil, err
	}

	entries := make([]ProofEntry, 0, t.depth)
	n := t.root
	for d := t.depth; d > 0; d-- {
		if id&1 == 0 {
			entries = append(entries, ProofEntry{Side: SideRight, Digest: n.right.digest})
			n = n.left
		} else {
			entries = append(entries, ProofEntry{Side: SideLeft, Digest: n.left.digest})
			n = n.right
		}
		id >>= 1
	}

	return &Proof{TopHash: t.root.digest, Hashes: entries}, nil
}
