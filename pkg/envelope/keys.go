package envelope

import (
	"fmt"

	"golang.org/x/crypto/argon2"
)

// KeySize is the length in bytes of a derived symmetric key.
const KeySize = 32

// KeyProvider derives the 32-byte symmetric key Seal/Open use from a
// user's password. coldvault ships two implementations; which one a client
// uses is a password-to-key derivation policy decision left to the caller.
type KeyProvider interface {
	DeriveKey(password []byte) ([]byte, error)
}

// ZeroPadKeyProvider is the documented weak default key derivation: the
// password's raw UTF-8 bytes, right-padded with zeroes to 32 bytes. It has
// no resistance to brute force and no salt, passwords longer than 32 bytes
// are rejected, and a password with trailing zero bytes derives the same
// key as the password without them. It is kept as the explicit baseline
// so the weakness stays visible rather than silently fixed.
type ZeroPadKeyProvider struct{}

// DeriveKey implements KeyProvider.
func (ZeroPadKeyProvider) DeriveKey(password []byte) ([]byte, error) {
	if len(password) > KeySize {
		return nil, fmt.Errorf("envelope: password exceeds %d bytes under zero-pad derivation", KeySize)
	}
	key := make([]byte, KeySize)
	copy(key, password)
	return key, nil
}

// Argon2idKeyProvider derives a key with Argon2id, salted per-account. It is
// the recommended replacement for ZeroPadKeyProvider; switching a running
// account to it changes the derived key for the same password, so existing
// envelopes must be re-sealed (see Rekey) before the old provider can be
// retired.
type Argon2idKeyProvider struct {
	// Salt should be unique per account. coldvault's account layer uses
	// the account name, the same "salted by the username" convention the
	// client follows when it hashes the password it sends to the server.
	Salt        []byte
	Time        uint32
	Memory      uint32
	Parallelism uint8
}

// NewArgon2idKeyProvider builds a provider with the package's recommended
// defaults (3 passes, 64 MiB, 4 lanes), salted by account name.
func NewArgon2idKeyProvider(accountName string) *Argon2idKeyProvider {
	return &Argon2idKeyProvider{
		Salt:        []byte(accountName),
		Time:        3,
		Memory:      64 * 1024,
		Parallelism: 4,
	}
}

// DeriveKey implements KeyProvider.
func (p *Argon2idKeyProvider) DeriveKey(password []byte) ([]byte, error) {
	if len(p.Salt) == 0 {
		return nil, fmt.Errorf("envelope: argon2id key provider requires a non-empty salt")
	}
	return argon2.IDKey(password, p.Salt, p.Time, p.Memory, p.Parallelism, KeySize), nil
}

// MultiKeyProvider tries a sequence of providers in order, used during a
// password/KDF rotation window: Open tries the new provider first, then
// falls back to the providers that sealed older envelopes still on disk.
type MultiKeyProvider struct {
	providers []KeyProvider
}

// NewMultiKeyProvider builds a MultiKeyProvider. The first provider is
// treated as primary by DeriveKey; Rekey and Open use the Open method to
// search all of them.
func NewMultiKeyProvider(providers ...KeyProvider) (*MultiKeyProvider, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("envelope: at least one key provider required")
	}
	return &MultiKeyProvider{providers: providers}, nil
}

// DeriveKey uses the primary (first) provider.
func (m *MultiKeyProvider) DeriveKey(password []byte) ([]byte, error) {
	return m.providers[0].DeriveKey(password)
}

// Open tries each wrapped provider's derived key against ciphertext in
// turn, returning the plaintext from the first one whose AEAD tag
// authenticates. DeriveKey alone cannot tell which provider sealed a given
// envelope — these providers only validate input shape, not correctness —
// so the search has to happen at Open time, against the ciphertext itself.
func (m *MultiKeyProvider) Open(ciphertext []byte, password []byte, nonce [NonceSize]byte) ([]byte, error) {
	var lastErr error
	for _, p := range m.providers {
		key, err := p.DeriveKey(password)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := Open(ciphertext, key, nonce)
		if err != nil {
			lastErr = err
			continue
		}
		return body, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrDecryptionFailure
}
