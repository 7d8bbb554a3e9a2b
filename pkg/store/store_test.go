package store

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"testing"

	"github.com/coldvault/vault/pkg/envelope"
)

func testEnvelope(nameHash string, body []byte) envelope.Envelope {
	return envelope.Envelope{
		NameNonce: envelope.ByteArray("123456789012"),
		Name:      envelope.ByteArray("encrypted-name"),
		NameHash:  nameHash,
		Nonce:     envelope.ByteArray("abcdefghijkl"),
		Contents:  envelope.ByteArray(body),
		Signature: envelope.ByteArray("sig"),
	}
}

func TestSingleFilePushListPull(t *testing.T) {
	s := New(8)
	hash := envelope.NameHash("hunter42", "hello.txt")
	if err := s.Add(testEnvelope(hash, []byte("hello"))); err != nil {
		t.Fatalf("Add: %v", err)
	}

	top, entries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("List: got %d entries, want 1", len(entries))
	}
	if entries[0].Size != 5 {
		t.Fatalf("List: size got %d want 5", entries[0].Size)
	}

	env, ok, err := s.Get(hash)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(env.Contents) != "hello" {
		t.Fatalf("Get: contents got %q", env.Contents)
	}

	proof, ok, err := s.Proof(hash)
	if err != nil || !ok {
		t.Fatalf("Proof: ok=%v err=%v", ok, err)
	}
	if !proof.Verify(sha256.Sum256(env.Contents)) {
		t.Fatalf("proof did not verify")
	}
	if proof.TopHash != top {
		t.Fatalf("proof top hash does not match List's top hash")
	}
}

func TestGetMissingReturnsNotOkNoError(t *testing.T) {
	s := New(8)
	hash := envelope.NameHash("hunter42", "nope")
	_, ok, err := s.Get(hash)
	if err != nil {
		t.Fatalf("Get on empty store should not error: %v", err)
	}
	if ok {
		t.Fatalf("Get on empty store should report ok=false")
	}
}

func TestTamperedBodyFailsToDecrypt(t *testing.T) {
	s := New(8)
	hash := envelope.NameHash("hunter42", "hello.txt")
	key, err := (&envelope.ZeroPadKeyProvider{}).DeriveKey([]byte("hunter42"))
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	nonce, ct, err := envelope.Seal([]byte("hello"), key)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	env := testEnvelope(hash, ct)
	env.Nonce = envelope.ByteArray(nonce[:])
	if err := s.Add(env); err != nil {
		t.Fatalf("Add: %v", err)
	}

	fetched, ok, err := s.Get(hash)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	tampered := append(envelope.ByteArray{}, fetched.Contents...)
	tampered[0] ^= 0xFF

	var n [envelope.NonceSize]byte
	copy(n[:], fetched.Nonce)
	if _, err := envelope.Open(tampered, key, n); err == nil {
		t.Fatalf("expected decryption failure on tampered ciphertext")
	}
}

func TestTopHashCommitsToInsertionOrder(t *testing.T) {
	forward := New(8)
	forward.Add(testEnvelope("nameA", []byte("A")))
	forward.Add(testEnvelope("nameB", []byte("B")))

	reverse := New(8)
	reverse.Add(testEnvelope("nameB", []byte("B")))
	reverse.Add(testEnvelope("nameA", []byte("A")))

	if forward.TopHash() == reverse.TopHash() {
		t.Fatalf("top hash should differ when insertion order differs")
	}
}

func TestCapacityEnforced(t *testing.T) {
	s := New(8) // depth 8 -> 256 slots
	for i := 0; i < 256; i++ {
		h := fmt.Sprintf("slot-%d", i)
		if err := s.Add(testEnvelope(h, []byte("x"))); err != nil {
			t.Fatalf("Add #%d: %v", i, err)
		}
	}
	if err := s.Add(testEnvelope("overflow", []byte("x"))); err != ErrStoreFull {
		t.Fatalf("257th Add: got %v, want ErrStoreFull", err)
	}
}

func TestConcurrentPushesAreLinearizable(t *testing.T) {
	s := New(8)
	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			s.Add(testEnvelope(fmt.Sprintf("slot-%d", i), []byte("x")))
		}(i)
	}
	wg.Wait()

	_, entries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != n {
		t.Fatalf("got %d entries, want %d — concurrent Add lost a slot", len(entries), n)
	}
}

func TestEvictThenGetRoundTrips(t *testing.T) {
	dir := t.TempDir()
	s := New(8)
	hash := envelope.NameHash("hunter42", "hello.txt")
	if err := s.Add(testEnvelope(hash, []byte("hello"))); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Evict(hash, dir); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	env, ok, err := s.Get(hash)
	if err != nil || !ok {
		t.Fatalf("Get after evict: ok=%v err=%v", ok, err)
	}
	if string(env.Contents) != "hello" {
		t.Fatalf("Get after evict: contents got %q", env.Contents)
	}
}
