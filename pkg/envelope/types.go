package envelope

import (
	"encoding/json"
	"fmt"
)

// ByteArray marshals to/from a JSON array of 0-255 integers instead of the
// base64 string Go's encoding/json produces for []byte by default. Byte
// fields on the wire round-trip as arrays so any client built against the
// same contract, not just a Go one, can decode them directly.
type ByteArray []byte

// MarshalJSON emits the byte array as a JSON array of numbers.
func (b ByteArray) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("[]"), nil
	}
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

// UnmarshalJSON accepts a JSON array of numbers in the 0-255 range.
func (b *ByteArray) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return fmt.Errorf("envelope: decoding byte array: %w", err)
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("envelope: byte array element %d out of range: %d", i, v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// Envelope is the on-wire, on-disk record for one file. Every field except
// NameHash is opaque ciphertext or signature material from the server's
// point of view.
type Envelope struct {
	NameNonce ByteArray `json:"name_nonce"`
	Name      ByteArray `json:"name"`
	NameHash  string    `json:"name_hash"`
	Nonce     ByteArray `json:"nonce"`
	Contents  ByteArray `json:"contents"`
	Signature ByteArray `json:"signature"`
}

// Size reports the stored (ciphertext) length of the file body, the same
// value blob.FileBlob caches for listing, so answering "how big" never
// needs a decryption.
func (e *Envelope) Size() int {
	return len(e.Contents)
}
