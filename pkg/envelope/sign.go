package envelope

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// SigningKeyBits is the RSA modulus size used by GenerateKeyPair.
const SigningKeyBits = 2048

// GenerateKeyPair produces a fresh RSA key pair for signing envelopes.
func GenerateKeyPair() (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, SigningKeyBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGenFailure, err)
	}
	return key, nil
}

// ParsePrivateKeyPKCS8 parses a PKCS#8-encoded RSA private key, PEM or raw
// DER, as produced by GenerateKeyPair via MarshalPrivateKeyPKCS8.
func ParsePrivateKeyPKCS8(data []byte) (*rsa.PrivateKey, error) {
	der := data
	if block, _ := pem.Decode(data); block != nil {
		der = block.Bytes
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPrivateKey, err)
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", ErrBadPrivateKey)
	}
	return key, nil
}

// MarshalPrivateKeyPKCS8 serializes priv for storage, e.g. in the client's
// local key file.
func MarshalPrivateKeyPKCS8(priv *rsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPrivateKey, err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// Sign produces a detached RSA-PKCS1-SHA256 signature over
// (plaintext body || plaintext name).
func Sign(body, name []byte, priv *rsa.PrivateKey) ([]byte, error) {
	hashed := sha256.Sum256(append(append([]byte{}, body...), name...))
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, hashed[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPrivateKey, err)
	}
	return sig, nil
}

// Verify checks a signature produced by Sign. It returns ErrSignatureInvalid
// on any mismatch, deliberately collapsing all verification failure modes
// into one error so callers cannot branch on *why* a signature failed.
func Verify(body, name, signature []byte, pub *rsa.PublicKey) error {
	hashed := sha256.Sum256(append(append([]byte{}, body...), name...))
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, hashed[:], signature); err != nil {
		return ErrSignatureInvalid
	}
	return nil
}
