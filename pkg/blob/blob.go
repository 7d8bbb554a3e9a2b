package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/coldvault/vault/pkg/envelope"
)

// tier tags which of the two states a FileBlob is in.
type tier uint8

const (
	tierMemory tier = iota
	tierDisk
)

// FileBlob holds one file's Envelope, either entirely in memory or with its
// body bytes evicted to a file under saveDir. Every accessor except Load
// reads cached, non-body fields and therefore never touches disk; Size is
// cached at construction so listing never forces a load.
type FileBlob struct {
	mu sync.Mutex

	state tier
	size  int

	// Populated in both tiers.
	nameNonce envelope.ByteArray
	name      envelope.ByteArray
	nameHash  string
	nonce     envelope.ByteArray
	signature envelope.ByteArray

	// Populated only while state == tierMemory.
	contents envelope.ByteArray

	// Populated only while state == tierDisk.
	path string
}

// New wraps env in a FileBlob, starting in the Memory tier.
func New(env envelope.Envelope) *FileBlob {
	return &FileBlob{
		state:     tierMemory,
		size:      len(env.Contents),
		nameNonce: env.NameNonce,
		name:      env.Name,
		nameHash:  env.NameHash,
		nonce:     env.Nonce,
		signature: env.Signature,
		contents:  env.Contents,
	}
}

// Load returns the full Envelope, reading the body from disk if the blob
// has been evicted. An I/O error here taints only this retrieval; it does
// not affect any other blob or the tree's dirty state.
func (b *FileBlob) Load() (envelope.Envelope, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == tierMemory {
		return b.envelopeLocked(), nil
	}

	data, err := os.ReadFile(b.path)
	if err != nil {
		return envelope.Envelope{}, fmt.Errorf("blob: loading %s: %w", b.path, err)
	}

	b.contents = data
	b.state = tierMemory
	return b.envelopeLocked(), nil
}

// envelopeLocked assembles the Envelope from current fields. Caller must
// hold b.mu and b.state must be tierMemory.
func (b *FileBlob) envelopeLocked() envelope.Envelope {
	return envelope.Envelope{
		NameNonce: append(envelope.ByteArray{}, b.nameNonce...),
		Name:      append(envelope.ByteArray{}, b.name...),
		NameHash:  b.nameHash,
		Nonce:     append(envelope.ByteArray{}, b.nonce...),
		Contents:  append(envelope.ByteArray{}, b.contents...),
		Signature: append(envelope.ByteArray{}, b.signature...),
	}
}

// Evict moves a Memory blob to Disk, writing its body to
// saveDir/<name_hash> and dropping the in-memory copy. Evicting an
// already-Disk blob is a no-op.
func (b *FileBlob) Evict(saveDir string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == tierDisk {
		return nil
	}

	path := filepath.Join(saveDir, b.nameHash)
	if err := os.WriteFile(path, b.contents, 0o600); err != nil {
		return fmt.Errorf("blob: evicting %s: %w", path, err)
	}

	b.path = path
	b.contents = nil
	b.state = tierDisk
	return nil
}

// Contents returns the raw leaf body bytes the Merkle tree hashes: the
// current ciphertext body if loaded, or empty if evicted and not yet
// reloaded. The tree always reads this without forcing a load — the hash
// commits to whatever is currently resident, which Recompute is
// responsible for keeping in sync via the dirty bit set on every
// mutation path.
func (b *FileBlob) Contents() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != tierMemory {
		return nil
	}
	return append([]byte{}, b.contents...)
}

// Size returns the cached ciphertext body length, valid in both tiers.
func (b *FileBlob) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// NameHash returns the server-side lookup key without forcing a load.
func (b *FileBlob) NameHash() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nameHash
}

// Name returns the encrypted display-name bytes without forcing a load.
func (b *FileBlob) Name() envelope.ByteArray {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append(envelope.ByteArray{}, b.name...)
}

// NameNonce returns the nonce used to encrypt Name.
func (b *FileBlob) NameNonce() envelope.ByteArray {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append(envelope.ByteArray{}, b.nameNonce...)
}

// Nonce returns the nonce used to encrypt the body.
func (b *FileBlob) Nonce() envelope.ByteArray {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append(envelope.ByteArray{}, b.nonce...)
}

// OnDisk reports whether the blob is currently evicted. Exported for
// tests exercising scenario S6 (eviction transparency).
func (b *FileBlob) OnDisk() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == tierDisk
}

// DiskPath returns the path the blob's body was written to, or "" if it has
// never been evicted.
func (b *FileBlob) DiskPath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path
}
