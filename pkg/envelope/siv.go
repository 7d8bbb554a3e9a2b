package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
)

// sivEngine implements AES-SIV (RFC 5297) authenticated encryption. SIV is
// nonce-misuse resistant: the synthetic IV is derived from the plaintext
// and any associated data, so encrypting the same plaintext twice under the
// same key still yields the same ciphertext, and a colliding externally
// supplied nonce never degrades security the way it would under GCM.
// Seal/Open (aead.go) use the envelope's 12-byte nonce as associated data
// so it still authenticates even though SIV itself needs no nonce.
type sivEngine struct {
	k1    []byte // CMAC (S2V) subkey
	k2    []byte // CTR subkey
	block cipher.Block
}

// newSIVEngine builds an AES-SIV engine from a 64-byte key, split into two
// 32-byte halves per RFC 5297.
func newSIVEngine(key []byte) (*sivEngine, error) {
	if len(key) != 64 {
		return nil, fmt.Errorf("envelope: AES-SIV requires a 64-byte key, got %d", len(key))
	}

	k1 := key[:32]
	k2 := key[32:]

	block, err := aes.NewCipher(k2)
	if err != nil {
		return nil, fmt.Errorf("envelope: creating AES cipher: %w", err)
	}

	return &sivEngine{k1: k1, k2: k2, block: block}, nil
}

// Encrypt seals plaintext, authenticating ad as associated data. The result
// is the 16-byte synthetic IV followed by the CTR-mode ciphertext.
func (e *sivEngine) Encrypt(plaintext []byte, ad ...[]byte) ([]byte, error) {
	siv := e.s2v(plaintext, ad...)

	ciphertext := make([]byte, len(plaintext))
	e.ctrMode(siv, plaintext, ciphertext)

	result := make([]byte, 16+len(ciphertext))
	copy(result[:16], siv)
	copy(result[16:], ciphertext)
	return result, nil
}

// Decrypt opens a value produced by Encrypt, failing closed with
// ErrDecryptionFailure if ad does not match what was used to seal it.
func (e *sivEngine) Decrypt(ciphertext []byte, ad ...[]byte) ([]byte, error) {
	if len(ciphertext) < 16 {
		return nil, ErrDecryptionFailure
	}

	siv := ciphertext[:16]
	ct := ciphertext[16:]

	plaintext := make([]byte, len(ct))
	e.ctrMode(siv, ct, plaintext)

	expectedSIV := e.s2v(plaintext, ad...)
	if subtle.ConstantTimeCompare(siv, expectedSIV) != 1 {
		return nil, ErrDecryptionFailure
	}

	return plaintext, nil
}

// s2v implements the S2V construction from RFC 5297 §2.4.
func (e *sivEngine) s2v(plaintext []byte, ad ...[]byte) []byte {
	block, _ := aes.NewCipher(e.k1)

	d := e.cmac(block, make([]byte, 16))

	for _, a := range ad {
		d = xorBuf(dbl(d), e.cmac(block, a))
	}

	var t []byte
	if len(plaintext) >= 16 {
		t = make([]byte, len(plaintext))
		copy(t, plaintext)
		xorInto(t[len(t)-16:], d)
	} else {
		t = xorBuf(dbl(d), pad(plaintext))
	}

	return e.cmac(block, t)
}

// cmac implements CMAC (NIST SP 800-38B) over data using block.
func (e *sivEngine) cmac(block cipher.Block, data []byte) []byte {
	k1, k2 := cmacSubkeys(block)

	n := (len(data) + 15) / 16
	if n == 0 {
		n = 1
	}

	lastBlock := make([]byte, 16)
	if len(data) == 0 || len(data)%16 != 0 {
		copy(lastBlock, data[16*(n-1):])
		lastBlock = pad(lastBlock[:len(data)%16])
		xorInto(lastBlock, k2)
	} else {
		copy(lastBlock, data[16*(n-1):])
		xorInto(lastBlock, k1)
	}

	mac := make([]byte, 16)
	for i := 0; i < n-1; i++ {
		chunk := data[i*16 : (i+1)*16]
		xorInto(mac, chunk)
		block.Encrypt(mac, mac)
	}
	xorInto(mac, lastBlock)
	block.Encrypt(mac, mac)

	return mac
}

// ctrMode XORs src with an AES-CTR keystream seeded from iv, with bits 31
// and 63 cleared per RFC 5297 §2.5 so the counter never wraps into the SIV
// itself.
func (e *sivEngine) ctrMode(iv, src, dst []byte) {
	ctr := make([]byte, 16)
	copy(ctr, iv)
	ctr[8] &= 0x7f
	ctr[12] &= 0x7f

	stream := cipher.NewCTR(e.block, ctr)
	stream.XORKeyStream(dst, src)
}

// dbl implements doubling in GF(2^128) with the 0x87 reduction polynomial.
func dbl(block []byte) []byte {
	result := make([]byte, 16)
	carry := uint64(0)

	for i := 0; i < 2; i++ {
		offset := (1 - i) * 8
		val := binary.BigEndian.Uint64(block[offset : offset+8])
		newVal := (val << 1) | carry
		binary.BigEndian.PutUint64(result[offset:offset+8], newVal)
		carry = val >> 63
	}

	if carry != 0 {
		result[15] ^= 0x87
	}

	return result
}

// pad applies 10* padding for an incomplete 16-byte CMAC block.
func pad(data []byte) []byte {
	result := make([]byte, 16)
	copy(result, data)
	result[len(data)] = 0x80
	return result
}

func xorBuf(a, b []byte) []byte {
	result := make([]byte, len(a))
	for i := 0; i < len(a) && i < len(b); i++ {
		result[i] = a[i] ^ b[i]
	}
	return result
}

func xorInto(dst, src []byte) {
	for i := 0; i < len(dst) && i < len(src); i++ {
		dst[i] ^= src[i]
	}
}

func cmacSubkeys(block cipher.Block) ([]byte, []byte) {
	l := make([]byte, 16)
	block.Encrypt(l, l)

	k1 := dbl(l)
	k2 := dbl(k1)

	return k1, k2
}
