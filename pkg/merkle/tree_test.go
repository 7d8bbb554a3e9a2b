package merkle

import (
	"crypto/sha256"
	"testing"

	"github.com/coldvault/vault/pkg/blob"
	"github.com/coldvault/vault/pkg/envelope"
)

func envelopeWithBody(body []byte) envelope.Envelope {
	return envelope.Envelope{
		NameNonce: envelope.ByteArray("123456789012"),
		Name:      envelope.ByteArray("name"),
		NameHash:  "h",
		Nonce:     envelope.ByteArray("abcdefghijkl"),
		Contents:  envelope.ByteArray(body),
		Signature: envelope.ByteArray("sig"),
	}
}

func TestEmptyTreeTopHashIsDeterministic(t *testing.T) {
	a := New(3)
	b := New(3)
	a.Recompute()
	b.Recompute()
	if a.TopHash() != b.TopHash() {
		t.Fatalf("two fresh trees of equal depth should share a top hash")
	}
}

func TestTopHashIsPureFunctionOfContents(t *testing.T) {
	build := func() *Tree {
		tr := New(3)
		tr.SetLeaf(0, blob.New(envelopeWithBody([]byte("alpha"))))
		tr.SetLeaf(5, blob.New(envelopeWithBody([]byte("beta"))))
		tr.Recompute()
		return tr
	}
	t1 := build()
	t2 := build()
	if t1.TopHash() != t2.TopHash() {
		t.Fatalf("top hash must be a pure function of (slot, body) pairs")
	}
}

func TestInsertionOrderAffectsTopHash(t *testing.T) {
	forward := New(3)
	forward.SetLeaf(0, blob.New(envelopeWithBody([]byte("A"))))
	forward.SetLeaf(1, blob.New(envelopeWithBody([]byte("B"))))
	forward.Recompute()

	reverse := New(3)
	reverse.SetLeaf(0, blob.New(envelopeWithBody([]byte("B"))))
	reverse.SetLeaf(1, blob.New(envelopeWithBody([]byte("A"))))
	reverse.Recompute()

	if forward.TopHash() == reverse.TopHash() {
		t.Fatalf("top hash should commit to which slot holds which body")
	}
}

func TestInclusionProofSoundnessOnOccupiedSlot(t *testing.T) {
	tr := New(4)
	body := []byte("hello")
	tr.SetLeaf(9, blob.New(envelopeWithBody(body)))
	tr.Recompute()

	proof, err := tr.Proof(9)
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}
	leafDigest := sha256.Sum256(body)
	if !proof.Verify(leafDigest) {
		t.Fatalf("proof for occupied slot did not verify")
	}
}

func TestInclusionProofCompletenessOnEmptySlot(t *testing.T) {
	tr := New(4)
	tr.SetLeaf(3, blob.New(envelopeWithBody([]byte("occupied"))))
	tr.Recompute()

	proof, err := tr.Proof(12)
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}
	emptyDigest := sha256.Sum256(nil)
	if !proof.Verify(emptyDigest) {
		t.Fatalf("proof for empty slot did not verify against empty-leaf digest")
	}
}

func TestProofFailsOnTamperedBody(t *testing.T) {
	tr := New(4)
	tr.SetLeaf(1, blob.New(envelopeWithBody([]byte("original"))))
	tr.Recompute()

	proof, err := tr.Proof(1)
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}
	tamperedDigest := sha256.Sum256([]byte("tampered"))
	if proof.Verify(tamperedDigest) {
		t.Fatalf("proof should not verify against a different body")
	}
}

func TestCapacityMatchesDepth(t *testing.T) {
	tr := New(4)
	if tr.Capacity() != 16 {
		t.Fatalf("Capacity: got %d want 16", tr.Capacity())
	}
	if err := tr.SetLeaf(16, blob.New(envelopeWithBody([]byte("x")))); err == nil {
		t.Fatalf("expected out-of-range error for slot 16 in a depth-4 tree")
	}
	if err := tr.SetLeaf(15, blob.New(envelopeWithBody([]byte("x")))); err != nil {
		t.Fatalf("SetLeaf on last valid slot: %v", err)
	}
}

func TestRecomputeOnlyTouchesDirtyPath(t *testing.T) {
	tr := New(3)
	tr.SetLeaf(0, blob.New(envelopeWithBody([]byte("a"))))
	tr.Recompute()
	before := tr.TopHash()

	leaf, err := tr.Leaf(7)
	if err != nil {
		t.Fatalf("Leaf: %v", err)
	}
	if leaf != nil {
		t.Fatalf("expected slot 7 to remain empty")
	}
	tr.Recompute()
	if tr.TopHash() != before {
		t.Fatalf("recompute with no new dirty leaves must not change the top hash")
	}
}
