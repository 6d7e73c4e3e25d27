package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// exerciseKV runs the behaviour every backend must share.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		if _, err := kv.Get(ctx, KeyToken); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
		}
	})

	t.Run("set and get", func(t *testing.T) {
		if err := kv.Set(ctx, KeyToken, "abc.def.ghi"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := kv.Get(ctx, KeyToken)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != "abc.def.ghi" {
			t.Errorf("Get() = %q, want %q", got, "abc.def.ghi")
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		if err := kv.Set(ctx, KeyLocale, "en"); err != nil {
			t.Fatal(err)
		}
		if err := kv.Set(ctx, KeyLocale, "ja"); err != nil {
			t.Fatal(err)
		}
		got, _ := kv.Get(ctx, KeyLocale)
		if got != "ja" {
			t.Errorf("Get() = %q, want %q", got, "ja")
		}
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		if err := kv.Remove(ctx, KeyToken); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if err := kv.Remove(ctx, KeyToken); err != nil {
			t.Fatalf("second Remove() error = %v", err)
		}
		if _, err := kv.Get(ctx, KeyToken); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Get() after Remove error = %v, want ErrKeyNotFound", err)
		}
		if got, _ := kv.Get(ctx, KeyLocale); got != "ja" {
			t.Errorf("Remove(token) touched locale: got %q", got)
		}
	})
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()
	exerciseKV(t, kv)

	if err := kv.Close(); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(context.Background(), KeyToken, "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Set() after Close error = %v, want ErrClosed", err)
	}
}

func TestFileKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	kv, err := NewFileKV(path)
	if err != nil {
		t.Fatalf("NewFileKV() error = %v", err)
	}
	exerciseKV(t, kv)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("state file missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("state file mode = %o, want 600", perm)
	}
}

func TestFileKV_SharedBetweenInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	a, _ := NewFileKV(path)
	b, _ := NewFileKV(path)

	if err := a.Set(ctx, KeyToken, "from-a"); err != nil {
		t.Fatal(err)
	}
	got, err := b.Get(ctx, KeyToken)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "from-a" {
		t.Errorf("Get() = %q, want %q", got, "from-a")
	}
}

func TestFileKV_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	kv, _ := NewFileKV(path)
	if _, err := kv.Get(context.Background(), KeyToken); err == nil || errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get() on corrupt file error = %v, want parse error", err)
	}
}

func TestBadgerKV(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewBadgerKV(dir, slog.Default())
	if err != nil {
		t.Fatalf("NewBadgerKV() error = %v", err)
	}
	exerciseKV(t, kv)
	if err := kv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	reopened, err := NewBadgerKV(dir, slog.Default())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(context.Background(), KeyLocale)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if got != "ja" {
		t.Errorf("Get() after reopen = %q, want %q", got, "ja")
	}
}

func TestBadgerKV_EmptyDir(t *testing.T) {
	if _, err := NewBadgerKV("", nil); err == nil {
		t.Error("NewBadgerKV(\"\") should fail")
	}
}

func TestEncryptedKV(t *testing.T) {
	inner := NewMemoryKV()
	kv, err := NewEncryptedKV(context.Background(), inner, "hunter2")
	if err != nil {
		t.Fatalf("NewEncryptedKV() error = %v", err)
	}
	exerciseKV(t, kv)

	ctx := context.Background()
	if err := kv.Set(ctx, KeyToken, "secret-token"); err != nil {
		t.Fatal(err)
	}

	raw, _ := inner.Get(ctx, KeyToken)
	if !strings.HasPrefix(raw, encryptedPrefix) {
		t.Errorf("raw value %q lacks %q prefix", raw, encryptedPrefix)
	}
	if strings.Contains(raw, "secret-token") {
		t.Error("raw value contains plaintext token")
	}

	other, _ := NewEncryptedKV(ctx, inner, "wrong passphrase")
	if _, err := other.Get(ctx, KeyToken); err == nil {
		t.Error("Get() with wrong passphrase should fail")
	}
}

func TestEncryptedKV_PlaintextValue(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryKV()
	_ = inner.Set(ctx, KeyToken, "plain")

	kv, _ := NewEncryptedKV(ctx, inner, "pw")
	if _, err := kv.Get(ctx, KeyToken); !errors.Is(err, ErrNotEncrypted) {
		t.Errorf("Get() error = %v, want ErrNotEncrypted", err)
	}
}

func TestEncryptedKV_SaltPerStore(t *testing.T) {
	ctx := context.Background()
	innerA, innerB := NewMemoryKV(), NewMemoryKV()

	a, err := NewEncryptedKV(ctx, innerA, "same passphrase")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewEncryptedKV(ctx, innerB, "same passphrase"); err != nil {
		t.Fatal(err)
	}

	saltA, err := innerA.Get(ctx, KeyKDFSalt)
	if err != nil {
		t.Fatalf("salt not stored: %v", err)
	}
	saltB, _ := innerB.Get(ctx, KeyKDFSalt)
	if saltA == saltB {
		t.Error("two stores share a salt")
	}
	if raw, _ := base64.RawStdEncoding.DecodeString(saltA); len(raw) != saltSize {
		t.Errorf("salt is %d bytes, want %d", len(raw), saltSize)
	}

	if err := a.Set(ctx, KeyToken, "secret-token"); err != nil {
		t.Fatal(err)
	}
	reopened, err := NewEncryptedKV(ctx, innerA, "same passphrase")
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := innerA.Get(ctx, KeyKDFSalt); got != saltA {
		t.Error("reopening replaced the salt")
	}
	if got, err := reopened.Get(ctx, KeyToken); err != nil || got != "secret-token" {
		t.Errorf("Get() after reopen = %q, %v", got, err)
	}

	sealed, _ := innerA.Get(ctx, KeyToken)
	_ = innerB.Set(ctx, KeyToken, sealed)
	b, _ := NewEncryptedKV(ctx, innerB, "same passphrase")
	if _, err := b.Get(ctx, KeyToken); err == nil {
		t.Error("a value sealed under another salt should not decrypt")
	}
}

func TestEncryptedKV_MalformedSalt(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryKV()
	_ = inner.Set(ctx, KeyKDFSalt, "!!")
	if _, err := NewEncryptedKV(ctx, inner, "pw"); err == nil {
		t.Error("NewEncryptedKV with a malformed salt should fail")
	}
}

func TestEncryptedKV_EmptyPassphrase(t *testing.T) {
	if _, err := NewEncryptedKV(context.Background(), NewMemoryKV(), ""); err == nil {
		t.Error("NewEncryptedKV with empty passphrase should fail")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{"memory", Config{Backend: BackendMemory}, "*storage.MemoryKV", false},
		{"file", Config{Backend: BackendFile, Path: filepath.Join(dir, "s.json")}, "*storage.FileKV", false},
		{"default is file", Config{Path: filepath.Join(dir, "d.json")}, "*storage.FileKV", false},
		{"badger", Config{Backend: BackendBadger, Path: filepath.Join(dir, "db")}, "*storage.BadgerKV", false},
		{"encrypted", Config{Backend: BackendMemory, Passphrase: "pw"}, "*storage.EncryptedKV", false},
		{"unknown", Config{Backend: "etcd"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv, err := Open(context.Background(), tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer kv.Close()

			if got := typeName(kv); got != tt.want {
				t.Errorf("Open() type = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(kv KV) string {
	switch kv.(type) {
	case *MemoryKV:
		return "*storage.MemoryKV"
	case *FileKV:
		return "*storage.FileKV"
	case *BadgerKV:
		return "*storage.BadgerKV"
	case *EncryptedKV:
		return "*storage.EncryptedKV"
	default:
		return "unknown"
	}
}
