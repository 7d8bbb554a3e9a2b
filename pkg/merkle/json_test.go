package merkle

import (
	"crypto/sha256"
	"encoding/json"
	"testing"

	"github.com/coldvault/vault/pkg/blob"
	"github.com/coldvault/vault/pkg/envelope"
)

func TestProofJSONRoundTrip(t *testing.T) {
	tr := New(4)
	body := []byte("hello")
	tr.SetLeaf(9, blob.New(envelope.Envelope{
		NameNonce: envelope.ByteArray("123456789012"),
		Name:      envelope.ByteArray("name"),
		NameHash:  "h",
		Nonce:     envelope.ByteArray("abcdefghijkl"),
		Contents:  envelope.ByteArray(body),
		Signature: envelope.ByteArray("sig"),
	}))
	tr.Recompute()

	proof, err := tr.Proof(9)
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}

	data, err := json.Marshal(proof)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Proof
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.TopHash != proof.TopHash {
		t.Fatalf("top hash mismatch after round trip")
	}
	if len(decoded.Hashes) != len(proof.Hashes) {
		t.Fatalf("hash count mismatch after round trip")
	}
	if !decoded.Verify(sha256.Sum256(body)) {
		t.Fatalf("decoded proof failed to verify")
	}
}

func TestSideJSONShape(t *testing.T) {
	data, err := json.Marshal(SideLeft)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"Left"` {
		t.Fatalf("got %s, want \"Left\"", data)
	}
}
