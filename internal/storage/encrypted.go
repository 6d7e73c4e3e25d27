package storage

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/yndnr/unionhub-go/pkg/crypto/adaptive"
)

// encryptedPrefix marks sealed values: enc:v1:<cipher-type>:<base64>.
const encryptedPrefix = "enc:v1:"

// saltSize is the length of the random key derivation salt kept in the
// wrapped store under KeyKDFSalt.
const saltSize = 16

// ErrNotEncrypted is returned by EncryptedKV.Get when the stored value was
// written without encryption.
var ErrNotEncrypted = errors.New("storage: value is not encrypted")

// EncryptedKV seals every value before handing it to the wrapped store.
// The key name is bound as additional data, so a value cannot be moved to
// another key undetected.
type EncryptedKV struct {
	inner KV
	key   []byte
	enc   adaptive.Cipher
}

// NewEncryptedKV wraps inner with a cipher keyed from passphrase. The salt
// is read from inner, or generated and stored there on first use.
func NewEncryptedKV(ctx context.Context, inner KV, passphrase string) (*EncryptedKV, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("storage: passphrase is required")
	}
	salt, err := loadSalt(ctx, inner)
	if err != nil {
		return nil, err
	}
	key := adaptive.DeriveKey(passphrase, salt)
	enc, err := adaptive.New(key)
	if err != nil {
		return nil, err
	}
	return &EncryptedKV{inner: inner, key: key, enc: enc}, nil
}

func loadSalt(ctx context.Context, kv KV) ([]byte, error) {
	encoded, err := kv.Get(ctx, KeyKDFSalt)
	switch {
	case err == nil:
		salt, err := base64.RawStdEncoding.DecodeString(encoded)
		if err != nil || len(salt) < saltSize {
			return nil, fmt.Errorf("storage: malformed %s", KeyKDFSalt)
		}
		return salt, nil
	case !errors.Is(err, ErrKeyNotFound):
		return nil, fmt.Errorf("storage: read %s: %w", KeyKDFSalt, err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("storage: generate salt: %w", err)
	}
	if err := kv.Set(ctx, KeyKDFSalt, base64.RawStdEncoding.EncodeToString(salt)); err != nil {
		return nil, fmt.Errorf("storage: write %s: %w", KeyKDFSalt, err)
	}
	return salt, nil
}

func (e *EncryptedKV) Get(ctx context.Context, key string) (string, error) {
	raw, err := e.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}

	rest, ok := strings.CutPrefix(raw, encryptedPrefix)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotEncrypted, key)
	}
	typ, payload, ok := strings.Cut(rest, ":")
	if !ok {
		return "", fmt.Errorf("storage: malformed sealed value for %s", key)
	}

	sealed, err := base64.RawStdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("storage: decode %s: %w", key, err)
	}

	dec := e.enc
	if adaptive.CipherType(typ) != e.enc.Type() {
		dec, err = adaptive.NewWithType(e.key, adaptive.CipherType(typ))
		if err != nil {
			return "", err
		}
	}

	plaintext, err := dec.Decrypt(sealed, []byte(key))
	if err != nil {
		return "", fmt.Errorf("storage: decrypt %s: %w", key, err)
	}
	return string(plaintext), nil
}

func (e *EncryptedKV) Set(ctx context.Context, key, value string) error {
	sealed, err := e.enc.Encrypt([]byte(value), []byte(key))
	if err != nil {
		return fmt.Errorf("storage: encrypt %s: %w", key, err)
	}
	encoded := encryptedPrefix + string(e.enc.Type()) + ":" + base64.RawStdEncoding.EncodeToString(sealed)
	return e.inner.Set(ctx, key, encoded)
}

func (e *EncryptedKV) Remove(ctx context.Context, key string) error {
	return e.inner.Remove(ctx, key)
}

func (e *EncryptedKV) Close() error {
	return e.inner.Close()
}
