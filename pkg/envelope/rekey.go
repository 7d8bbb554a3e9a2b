package envelope

import (
	"crypto/rsa"
	"fmt"
)

// RekeyOptions configures Rekey.
type RekeyOptions struct {
	// OldSecret and NewSecret are the values passed to NameHash and to the
	// KeyProviders below — in practice, the account's old and new
	// passwords.
	OldSecret, NewSecret string

	OldKeyProvider KeyProvider
	NewKeyProvider KeyProvider

	// SigningKey re-signs the envelope under the (possibly new) private
	// key. Pass the same key used originally if only the password is
	// changing.
	SigningKey *rsa.PrivateKey
}

// OpenWithProvider derives a key and opens ciphertext under it. When
// provider is a *MultiKeyProvider — the rotation-window case, where an
// envelope predating a KDF switch may still be sealed under an older
// provider — it searches all of the wrapped providers instead of just the
// primary one.
func OpenWithProvider(ciphertext []byte, provider KeyProvider, secret string, nonce [NonceSize]byte) ([]byte, error) {
	if multi, ok := provider.(*MultiKeyProvider); ok {
		return multi.Open(ciphertext, []byte(secret), nonce)
	}
	key, err := provider.DeriveKey([]byte(secret))
	if err != nil {
		return nil, err
	}
	return Open(ciphertext, key, nonce)
}

// Rekey opens env under the old secret/provider, re-seals its name and
// contents under the new one, and re-signs it. The returned Envelope's
// NameHash is recomputed from NewSecret, so it changes whenever the secret
// (usually the account password) changes and stays the same when
// NewSecret equals OldSecret. Either way, pushing it allocates a new slot;
// the old slot is not reclaimed.
func Rekey(env *Envelope, opts RekeyOptions) (*Envelope, error) {
	var oldNonce, oldNameNonce [NonceSize]byte
	copy(oldNonce[:], env.Nonce)
	copy(oldNameNonce[:], env.NameNonce)

	body, err := OpenWithProvider(env.Contents, opts.OldKeyProvider, opts.OldSecret, oldNonce)
	if err != nil {
		return nil, fmt.Errorf("envelope: opening body under old key: %w", err)
	}
	name, err := OpenWithProvider(env.Name, opts.OldKeyProvider, opts.OldSecret, oldNameNonce)
	if err != nil {
		return nil, fmt.Errorf("envelope: opening name under old key: %w", err)
	}

	newKey, err := opts.NewKeyProvider.DeriveKey([]byte(opts.NewSecret))
	if err != nil {
		return nil, fmt.Errorf("envelope: deriving new key: %w", err)
	}

	newNonce, newContents, err := Seal(body, newKey)
	if err != nil {
		return nil, err
	}
	newNameNonce, newName, err := Seal(name, newKey)
	if err != nil {
		return nil, err
	}

	signature, err := Sign(body, name, opts.SigningKey)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		NameNonce: newNameNonce[:],
		Name:      newName,
		NameHash:  NameHash(opts.NewSecret, string(name)),
		Nonce:     newNonce[:],
		Contents:  newContents,
		Signature: signature,
	}, nil
}
