package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path)

	if err := store.SaveToken("tok-abc"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if err := store.SaveEmail("chu@cuahang.vn"); err != nil {
		t.Fatalf("save email: %v", err)
	}

	// A fresh store over the same path sees the persisted state.
	reopened := NewFileStore(path)
	token, err := reopened.LoadToken()
	if err != nil || token != "tok-abc" {
		t.Fatalf("load token: %q %v", token, err)
	}
	email, err := reopened.LoadEmail()
	if err != nil || email != "chu@cuahang.vn" {
		t.Fatalf("load email: %q %v", email, err)
	}
}

func TestFileStoreClearTokenKeepsEmail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path)
	if err := store.SaveToken("tok"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if err := store.SaveEmail("a@b.vn"); err != nil {
		t.Fatalf("save email: %v", err)
	}

	if err := store.ClearToken(); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if token, _ := store.LoadToken(); token != "" {
		t.Fatalf("expected token cleared, got %q", token)
	}
	if email, _ := store.LoadEmail(); email != "a@b.vn" {
		t.Fatalf("expected remembered email kept, got %q", email)
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	token, err := store.LoadToken()
	if err != nil || token != "" {
		t.Fatalf("expected empty state, got %q %v", token, err)
	}
}

func TestFileStoreCorruptFileIsTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	store := NewFileStore(path)
	token, err := store.LoadToken()
	if err != nil || token != "" {
		t.Fatalf("expected corrupt file treated as empty, got %q %v", token, err)
	}
	// And the store recovers: a save overwrites the corrupt file.
	if err := store.SaveToken("fresh"); err != nil {
		t.Fatalf("save after corruption: %v", err)
	}
	if token, _ := store.LoadToken(); token != "fresh" {
		t.Fatalf("expected fresh token, got %q", token)
	}
}

func TestFileStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path)
	if err := store.SaveToken("tok"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}
}
