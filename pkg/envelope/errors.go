package envelope

import "errors"

// Client-side failure kinds. The server never produces these: it never
// decrypts or verifies, so it can only report NotFound / StoreFull
// (defined in pkg/store) or a wrapped I/O error from pkg/blob.
var (
	// ErrDecryptionFailure is returned by Open when the AEAD tag does not
	// authenticate, meaning either a wrong key or a tampered ciphertext.
	ErrDecryptionFailure = errors.New("envelope: decryption failure")

	// ErrSignatureInvalid is returned by Verify when the detached
	// signature does not match (plaintext body || plaintext name).
	ErrSignatureInvalid = errors.New("envelope: signature invalid")

	// ErrProofInvalid is returned by callers (internal/client's Pull) when
	// a recomputed top hash does not match the one declared in a
	// MerkleProof; merkle.Proof.Verify itself only reports a bool.
	ErrProofInvalid = errors.New("envelope: merkle proof invalid")

	// ErrBadPrivateKey is returned when a signing key cannot be parsed or
	// used to produce a signature.
	ErrBadPrivateKey = errors.New("envelope: bad private key")

	// ErrKeyGenFailure is returned when RSA key-pair generation fails,
	// which in practice only happens if the system RNG is exhausted.
	ErrKeyGenFailure = errors.New("envelope: key generation failure")
)
