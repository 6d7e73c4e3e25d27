// Package adaptive provides authenticated encryption for small secrets
// kept on the local disk, such as the session token.
//
// Supported algorithms:
//
//   - AES-256-GCM: preferred when the CPU has AES instructions
//   - ChaCha20-Poly1305: used everywhere else
//
// Keys are derived from a user passphrase with argon2id (DeriveKey).
// Ciphertexts carry their nonce as a prefix; callers that persist them
// should also record Cipher.Type so that a file copied to a machine with a
// different preferred algorithm can still be opened with NewWithType.
//
// Usage:
//
//	key := adaptive.DeriveKey(passphrase, salt)
//	c, err := adaptive.New(key)
//	sealed, err := c.Encrypt(plaintext, aad)
//	plaintext, err := c.Decrypt(sealed, aad)
package adaptive
