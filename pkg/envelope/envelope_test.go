package envelope

import (
	"bytes"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key := ZeroPadKeyProvider{}
	k, err := key.DeriveKey([]byte("hunter42"))
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}

	body := []byte("hello")
	nonce, ciphertext, err := Seal(body, k)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	got, err := Open(ciphertext, k, nonce)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("round-trip mismatch: got %q want %q", got, body)
	}
}

func TestOpenFailsOnTamperedCiphertext(t *testing.T) {
	k, _ := ZeroPadKeyProvider{}.DeriveKey([]byte("hunter42"))
	nonce, ciphertext, err := Seal([]byte("hello"), k)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	tampered := append([]byte{}, ciphertext...)
	tampered[0] ^= 0xff

	if _, err := Open(tampered, k, nonce); err != ErrDecryptionFailure {
		t.Fatalf("expected ErrDecryptionFailure, got %v", err)
	}
}

func TestOpenFailsOnWrongKey(t *testing.T) {
	k1, _ := ZeroPadKeyProvider{}.DeriveKey([]byte("hunter42"))
	k2, _ := ZeroPadKeyProvider{}.DeriveKey([]byte("different"))

	nonce, ciphertext, err := Seal([]byte("hello"), k1)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if _, err := Open(ciphertext, k2, nonce); err != ErrDecryptionFailure {
		t.Fatalf("expected ErrDecryptionFailure, got %v", err)
	}
}

func TestNameHashDeterministic(t *testing.T) {
	a := NameHash("hunter42", "hello.txt")
	b := NameHash("hunter42", "hello.txt")
	if a != b {
		t.Fatalf("NameHash not deterministic: %q != %q", a, b)
	}

	c := NameHash("hunter42", "nope.txt")
	if a == c {
		t.Fatalf("NameHash collided across distinct names")
	}

	d := NameHash("other-secret", "hello.txt")
	if a == d {
		t.Fatalf("NameHash collided across distinct secrets")
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	body := []byte("hello")
	name := []byte("hello.txt")

	sig, err := Sign(body, name, priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := Verify(body, name, sig, &priv.PublicKey); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if err := Verify([]byte("tampered"), name, sig, &priv.PublicKey); err != ErrSignatureInvalid {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestArgon2idKeyProviderDifferentFromZeroPad(t *testing.T) {
	zp, _ := ZeroPadKeyProvider{}.DeriveKey([]byte("hunter42"))
	ar, err := NewArgon2idKeyProvider("alice").DeriveKey([]byte("hunter42"))
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if bytes.Equal(zp, ar) {
		t.Fatalf("expected Argon2id and zero-pad keys to differ")
	}
}

func TestMultiKeyProviderOpenFallsBackAcrossProviders(t *testing.T) {
	oldProvider := ZeroPadKeyProvider{}
	newProvider := NewArgon2idKeyProvider("alice")

	oldKey, _ := oldProvider.DeriveKey([]byte("hunter42"))
	nonce, ciphertext, err := Seal([]byte("hello"), oldKey)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	multi, err := NewMultiKeyProvider(newProvider, oldProvider)
	if err != nil {
		t.Fatalf("NewMultiKeyProvider: %v", err)
	}

	got, err := multi.Open(ciphertext, []byte("hunter42"), nonce)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("Open: got %q, want %q", got, "hello")
	}

	if _, err := OpenWithProvider(ciphertext, multi, "hunter42", nonce); err != nil {
		t.Fatalf("OpenWithProvider: %v", err)
	}
	if _, err := OpenWithProvider(ciphertext, oldProvider, "hunter42", nonce); err != nil {
		t.Fatalf("OpenWithProvider with plain provider: %v", err)
	}
}

func TestByteArrayJSONRoundTrip(t *testing.T) {
	b := ByteArray([]byte{0, 1, 2, 255})
	data, err := b.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(data) != "[0,1,2,255]" {
		t.Fatalf("unexpected JSON: %s", data)
	}

	var out ByteArray
	if err := out.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if !bytes.Equal(out, b) {
		t.Fatalf("round-trip mismatch: got %v want %v", out, b)
	}
}

func TestRekey(t *testing.T) {
	priv, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	oldProvider := ZeroPadKeyProvider{}
	oldKey, _ := oldProvider.DeriveKey([]byte("hunter42"))

	body := []byte("hello")
	name := []byte("hello.txt")

	nonce, contents, err := Seal(body, oldKey)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	nameNonce, encName, err := Seal(name, oldKey)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	sig, err := Sign(body, name, priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	env := &Envelope{
		NameNonce: nameNonce[:],
		Name:      encName,
		NameHash:  NameHash("hunter42", string(name)),
		Nonce:     nonce[:],
		Contents:  contents,
		Signature: sig,
	}

	newProvider := NewArgon2idKeyProvider("alice")
	rekeyed, err := Rekey(env, RekeyOptions{
		OldSecret:      "hunter42",
		NewSecret:      "better-password",
		OldKeyProvider: oldProvider,
		NewKeyProvider: newProvider,
		SigningKey:     priv,
	})
	if err != nil {
		t.Fatalf("Rekey: %v", err)
	}

	if rekeyed.NameHash == env.NameHash {
		t.Fatalf("expected NameHash to change with the secret")
	}

	newKey, _ := newProvider.DeriveKey([]byte("better-password"))
	var rNonce [NonceSize]byte
	copy(rNonce[:], rekeyed.Nonce)
	got, err := Open(rekeyed.Contents, newKey, rNonce)
	if err != nil {
		t.Fatalf("Open rekeyed: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("rekeyed body mismatch: got %q want %q", got, body)
	}
}
