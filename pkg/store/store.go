package store

import (
	"sync"

	"github.com/coldvault/vault/pkg/blob"
	"github.com/coldvault/vault/pkg/envelope"
	"github.com/coldvault/vault/pkg/merkle"
)

// FileListEntry describes one slot for the list operation, without any of
// the body bytes.
type FileListEntry struct {
	NameHash  string
	Size      int
	Name      envelope.ByteArray
	Nonce     envelope.ByteArray
	NameNonce envelope.ByteArray
}

// Store is the FileStore façade: a slot allocator, a name_hash ->
// slot_index index, and the merkle.Tree they front.
//
// A single RWMutex guards next_slot and the index together with the tree,
// since an Add must advance all three atomically with respect to any
// concurrent Get/Proof/List. Per-blob body I/O (FileBlob.Load) is guarded
// independently by the blob's own mutex, so a Get that triggers a disk
// load only needs a read lock here; it does not need to upgrade to a
// write lock, unlike the index/tree mutation path in Add.
type Store struct {
	mu sync.RWMutex

	tree     *merkle.Tree
	nextSlot uint64
	index    map[string]uint64
}

// New builds an empty store over a tree of the given depth.
func New(depth int) *Store {
	return &Store{
		tree:  merkle.New(depth),
		index: make(map[string]uint64),
	}
}

// Add allocates the next free slot for env, binds env.NameHash to it, and
// recomputes the tree. Overwriting an existing name_hash is permitted: the
// old slot is left occupied and orphaned, a documented slot leak with no
// reclamation path.
func (s *Store) Add(env envelope.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nextSlot == s.tree.Capacity() {
		return ErrStoreFull
	}

	slot := s.nextSlot
	s.nextSlot++
	s.index[env.NameHash] = slot

	if err := s.tree.SetLeaf(slot, blob.New(env)); err != nil {
		return err
	}
	s.tree.Recompute()
	return nil
}

// Get returns the envelope bound to nameHash, or ok=false if no such
// binding exists.
func (s *Store) Get(nameHash string) (env envelope.Envelope, ok bool, err error) {
	s.mu.RLock()
	slot, found := s.index[nameHash]
	if !found {
		s.mu.RUnlock()
		return envelope.Envelope{}, false, nil
	}
	b, lerr := s.tree.Leaf(slot)
	s.mu.RUnlock()
	if lerr != nil {
		return envelope.Envelope{}, false, lerr
	}
	if b == nil {
		return envelope.Envelope{}, false, nil
	}

	env, err = b.Load()
	if err != nil {
		return envelope.Envelope{}, false, err
	}
	return env, true, nil
}

// Proof returns the inclusion proof for nameHash's slot, or ok=false if no
// such binding exists. The tree must already be recomputed, which Add
// guarantees.
func (s *Store) Proof(nameHash string) (proof *merkle.Proof, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, found := s.index[nameHash]
	if !found {
		return nil, false, nil
	}
	p, err := s.tree.Proof(slot)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// List walks the index and returns the current top hash plus a
// FileListEntry per occupied slot, none of which forces a disk load.
func (s *Store) List() (topHash merkle.Digest, entries []FileListEntry, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries = make([]FileListEntry, 0, len(s.index))
	for nameHash, slot := range s.index {
		b, lerr := s.tree.Leaf(slot)
		if lerr != nil {
			return merkle.Digest{}, nil, lerr
		}
		if b == nil {
			continue
		}
		entries = append(entries, FileListEntry{
			NameHash:  nameHash,
			Size:      b.Size(),
			Name:      b.Name(),
			Nonce:     b.Nonce(),
			NameNonce: b.NameNonce(),
		})
	}
	return s.tree.TopHash(), entries, nil
}

// TopHash returns the current root digest without listing entries.
func (s *Store) TopHash() merkle.Digest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.TopHash()
}

// Evict moves the blob bound to nameHash to disk, for test and operator
// use. Returns ErrNotFound if nameHash is unbound.
func (s *Store) Evict(nameHash, saveDir string) error {
	s.mu.RLock()
	slot, found := s.index[nameHash]
	if !found {
		s.mu.RUnlock()
		return ErrNotFound
	}
	b, err := s.tree.Leaf(slot)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	if b == nil {
		return ErrNotFound
	}
	return b.Evict(saveDir)
}

// Depth returns the underlying tree's fixed depth D.
func (s *Store) Depth() int {
	return s.tree.Depth()
}

// Capacity returns 2^D, the total number of slots.
func (s *Store) Capacity() uint64 {
	return s.tree.Capacity()
}
