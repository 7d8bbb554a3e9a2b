// Package account implements the account registry: a name -> password_hash
// map, with Create/Authenticate delegating all password hashing to the
// client. The server never holds a plaintext password. A single mutex
// guards concurrent access.
package account
