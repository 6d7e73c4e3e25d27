package adaptive

import "golang.org/x/crypto/argon2"

// argon2id parameters. Memory is in KiB.
const (
	kdfTime    = 2
	kdfMemory  = 19 * 1024
	kdfThreads = 1
)

// DeriveKey stretches passphrase into a KeySize-byte key with argon2id.
// The same passphrase and salt always yield the same key.
func DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, kdfTime, kdfMemory, kdfThreads, KeySize)
}
