// Package envelope implements the cryptographic envelope format that
// coldvault uses to store one file on an untrusted server.
//
// # Overview
//
// An Envelope carries an encrypted file body, an encrypted display name,
// a deterministic lookup key derived from the plaintext name (NameHash),
// and a detached signature over the plaintext body and name. The server
// only ever sees the opaque fields; it cannot decrypt, forge, or verify
// an Envelope's contents.
//
// # Cryptographic Primitives
//
//   - Confidentiality: a nonce-misuse-resistant AEAD built on AES-SIV
//     (RFC 5297), fed the envelope's 12-byte nonce as associated
//     data so that Envelope's nonce field still participates in the
//     authentication tag even though the underlying SIV construction is
//     itself nonce-free. This is the package's implementation of the
//     "AEAD-AES-256-GCM-SIV" primitive named in the envelope format.
//   - Authenticity: RSA-PKCS1-SHA256 detached signatures over
//     (plaintext body || plaintext name).
//   - Lookup key: Argon2id over the plaintext name, salted by a secret
//     supplied by the caller (in practice, the user's password) so the
//     same (secret, name) pair always hashes to the same value.
//
// # Key Derivation
//
// The default KeyProvider, ZeroPadKeyProvider, derives the symmetric key
// from the password's raw UTF-8 bytes right-padded with zeroes to 32
// bytes. It is kept as an explicit, visible baseline rather than a
// recommendation.
// Argon2idKeyProvider derives the same 32-byte key space properly and
// should be preferred; swapping providers changes the derived key for a
// given password, which changes everything encrypted under it.
package envelope
