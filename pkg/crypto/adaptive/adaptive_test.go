package adaptive

import (
	"bytes"
	"errors"
	"testing"
)

var key32 = func() []byte {
	k := make([]byte, KeySize)
	for i := range k {
		k[i] = byte(i)
	}
	return k
}()

func TestNew(t *testing.T) {
	c, err := New(key32)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.Type() != Preferred() {
		t.Errorf("New() type = %s, want %s", c.Type(), Preferred())
	}
}

func TestNewWithType(t *testing.T) {
	tests := []struct {
		name    string
		typ     CipherType
		key     []byte
		wantErr bool
	}{
		{"aes-gcm", CipherAESGCM, key32, false},
		{"chacha20", CipherChaCha20, key32, false},
		{"unknown type", CipherType("rot13"), key32, true},
		{"short key", CipherAESGCM, make([]byte, 16), true},
		{"long key", CipherChaCha20, make([]byte, 64), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewWithType(tt.key, tt.typ)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewWithType() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && c.Type() != tt.typ {
				t.Errorf("Type() = %s, want %s", c.Type(), tt.typ)
			}
		})
	}
}

func TestEncryptDecrypt(t *testing.T) {
	for _, typ := range []CipherType{CipherAESGCM, CipherChaCha20} {
		t.Run(string(typ), func(t *testing.T) {
			c, err := NewWithType(key32, typ)
			if err != nil {
				t.Fatal(err)
			}

			plaintext := []byte("eyJhbGciOiJIUzI1NiJ9.payload.sig")
			aad := []byte("token")

			sealed, err := c.Encrypt(plaintext, aad)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if len(sealed) != c.NonceSize()+len(plaintext)+c.Overhead() {
				t.Errorf("sealed length = %d, want %d", len(sealed), c.NonceSize()+len(plaintext)+c.Overhead())
			}
			if bytes.Contains(sealed, plaintext) {
				t.Error("sealed value contains plaintext")
			}

			got, err := c.Decrypt(sealed, aad)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Errorf("Decrypt() = %q, want %q", got, plaintext)
			}

			if _, err := c.Decrypt(sealed, []byte("locale")); err == nil {
				t.Error("Decrypt() with wrong additional data should fail")
			}

			sealed[len(sealed)-1] ^= 0xff
			if _, err := c.Decrypt(sealed, aad); err == nil {
				t.Error("Decrypt() of tampered value should fail")
			}

			if _, err := c.Decrypt([]byte{1, 2, 3}, aad); !errors.Is(err, ErrCiphertextTooShort) {
				t.Errorf("Decrypt(short) error = %v, want ErrCiphertextTooShort", err)
			}
		})
	}
}

func TestEncrypt_Uniqueness(t *testing.T) {
	c, err := New(key32)
	if err != nil {
		t.Fatal(err)
	}

	a, _ := c.Encrypt([]byte("same"), nil)
	b, _ := c.Encrypt([]byte("same"), nil)
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same plaintext should differ")
	}
}

func TestDeriveKey(t *testing.T) {
	salt := []byte("unionhub-test-salt")

	k1 := DeriveKey("correct horse", salt)
	k2 := DeriveKey("correct horse", salt)
	k3 := DeriveKey("battery staple", salt)

	if len(k1) != KeySize {
		t.Fatalf("len(key) = %d, want %d", len(k1), KeySize)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("DeriveKey should be deterministic")
	}
	if bytes.Equal(k1, k3) {
		t.Error("different passphrases should yield different keys")
	}
}
