package merkle

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes d as a JSON array of 0-255 ints, matching the
// envelope package's ByteArray wire contract: every byte field on the
// wire is a JSON array, never base64.
func (d Digest) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(d))
	for i, b := range d {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}

// UnmarshalJSON decodes a JSON array of 0-255 ints into d.
func (d *Digest) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return fmt.Errorf("merkle: decoding digest: %w", err)
	}
	if len(ints) != len(d) {
		return fmt.Errorf("merkle: digest has %d bytes, want %d", len(ints), len(d))
	}
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("merkle: digest byte %d out of range: %d", i, v)
		}
		d[i] = byte(v)
	}
	return nil
}

// MarshalJSON encodes s as the string "Left" or "Right".
func (s Side) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes "Left"/"Right" (or their all-lowercase forms) into
// s; any other spelling is rejected.
func (s *Side) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("merkle: decoding side: %w", err)
	}
	switch str {
	case "Left", "left":
		*s = SideLeft
	case "Right", "right":
		*s = SideRight
	default:
		return fmt.Errorf("merkle: unknown side %q", str)
	}
	return nil
}

// MarshalJSON encodes e as the two-element tuple [Side, Digest] the wire
// format requires, rather than a {"Side":...,"Digest":...} object.
func (e ProofEntry) MarshalJSON() ([]byte, error) {
	sideJSON, err := e.Side.MarshalJSON()
	if err != nil {
		return nil, err
	}
	digestJSON, err := e.Digest.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal([2]json.RawMessage{sideJSON, digestJSON})
}

// UnmarshalJSON decodes the [Side, Digest] tuple shape into e.
func (e *ProofEntry) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("merkle: decoding proof entry: %w", err)
	}
	if err := e.Side.UnmarshalJSON(raw[0]); err != nil {
		return err
	}
	return e.Digest.UnmarshalJSON(raw[1])
}

type proofWire struct {
	TopHash Digest       `json:"top_hash"`
	Hashes  []ProofEntry `json:"hashes"`
}

// MarshalJSON encodes p using snake_case field names, matching the other
// wire types in pkg/envelope.
func (p Proof) MarshalJSON() ([]byte, error) {
	return json.Marshal(proofWire{TopHash: p.TopHash, Hashes: p.Hashes})
}

// UnmarshalJSON decodes p from the snake_case wire shape.
func (p *Proof) UnmarshalJSON(data []byte) error {
	var w proofWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.TopHash = w.TopHash
	p.Hashes = w.Hashes
	return nil
}
