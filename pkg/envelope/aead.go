package envelope

import (
	"crypto/rand"
	"fmt"
)

// NonceSize is the length in bytes of both of an Envelope's nonce fields.
const NonceSize = 12

// expandSIVKey stretches a 32-byte symmetric key into the 64-byte key
// AES-SIV needs by duplicating it and XORing the second half with a fixed
// constant, so the S2V (CMAC) half and the CTR half of the SIV key differ.
// Bodies and names are both sealed through Seal under the same expanded key.
func expandSIVKey(key []byte) []byte {
	sivKey := make([]byte, 64)
	copy(sivKey[:32], key)
	copy(sivKey[32:], key)
	for i := 0; i < 32; i++ {
		sivKey[32+i] ^= 0xC5
	}
	return sivKey
}

// Seal encrypts body under key, returning a fresh random nonce alongside the
// ciphertext. The nonce is authenticated as associated data to the
// underlying AES-SIV engine, so Open fails closed if either is tampered
// with independently. Seal only fails if the system RNG is unavailable.
func Seal(body, key []byte) (nonce [NonceSize]byte, ciphertext []byte, err error) {
	if _, err = rand.Read(nonce[:]); err != nil {
		return nonce, nil, fmt.Errorf("envelope: generating nonce: %w", err)
	}

	siv, err := newSIVEngine(expandSIVKey(key))
	if err != nil {
		return nonce, nil, err
	}

	ciphertext, err = siv.Encrypt(body, nonce[:])
	if err != nil {
		return nonce, nil, err
	}
	return nonce, ciphertext, nil
}

// Open decrypts ciphertext under key and nonce, returning
// ErrDecryptionFailure if the AEAD tag does not authenticate.
func Open(ciphertext, key []byte, nonce [NonceSize]byte) ([]byte, error) {
	siv, err := newSIVEngine(expandSIVKey(key))
	if err != nil {
		return nil, err
	}

	body, err := siv.Decrypt(ciphertext, nonce[:])
	if err != nil {
		return nil, ErrDecryptionFailure
	}
	return body, nil
}
