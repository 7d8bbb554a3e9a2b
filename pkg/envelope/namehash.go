package envelope

import (
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// nameHashTime, nameHashMemory, and nameHashParallelism fix the Argon2id
// cost parameters for NameHash. Unlike password hashing, these do not need
// to be tunable per deployment: NameHash runs once per push/pull on the
// client, not at server scale, and a fixed cost keeps the same (secret,
// name) pair producing the same hash across every caller.
const (
	nameHashTime        = 1
	nameHashMemory      = 64 * 1024
	nameHashParallelism = 4
	nameHashLength      = 32
)

// NameHash deterministically derives the server-side lookup key for a file
// from a user secret (in practice, the account password) and the file's
// plaintext name. The secret plays the role of an Argon2id salt: the same
// (secret, name) pair always produces the same hash, and two different
// secrets over the same name produce unrelated hashes, so one user cannot
// enumerate another's filenames from the hash alone.
//
// The result is hex-encoded so it is always filename-safe, since
// pkg/blob derives an on-disk path directly from it.
func NameHash(secret, name string) string {
	sum := argon2.IDKey([]byte(name), []byte(secret), nameHashTime, nameHashMemory, nameHashParallelism, nameHashLength)
	return hex.EncodeToString(sum)
}
