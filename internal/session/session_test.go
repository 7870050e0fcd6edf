package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/molinosatl/invdash/internal/models"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return s, path
}

func TestNewFileStore_FileNotExist(t *testing.T) {
	s, _ := newTestStore(t)
	if s.IsAuthenticated() {
		t.Error("expected anonymous session for missing file")
	}
	if s.Token() != "" {
		t.Errorf("expected empty token, got %q", s.Token())
	}
	if s.User() != nil {
		t.Errorf("expected nil user, got %+v", s.User())
	}
}

func TestSet_PersistsTokenAndUser(t *testing.T) {
	s, path := newTestStore(t)

	u := &models.UserProfile{Username: "admin", FullName: "Administrador", IsAdmin: true}
	if err := s.Set("abc", u); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !s.IsAuthenticated() {
		t.Error("expected authenticated after Set")
	}
	if !s.IsAdmin() {
		t.Error("expected admin after Set")
	}

	// A new store reading the same file sees the same session.
	reloaded, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Token() != "abc" {
		t.Errorf("reloaded token = %q; want %q", reloaded.Token(), "abc")
	}
	got := reloaded.User()
	if got == nil || got.Username != "admin" || !got.IsAdmin {
		t.Errorf("reloaded user = %+v", got)
	}
}

func TestClear_RemovesFileAndIsIdempotent(t *testing.T) {
	s, path := newTestStore(t)
	if err := s.Set("abc", &models.UserProfile{Username: "admin"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if s.IsAuthenticated() {
		t.Error("expected anonymous after Clear")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected session file removed, stat err = %v", err)
	}

	// Clearing again must not fail.
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
}

func TestIsAdmin_DefaultsFalse(t *testing.T) {
	s, _ := newTestStore(t)
	if s.IsAdmin() {
		t.Error("anonymous session must not be admin")
	}
	if err := s.Set("abc", &models.UserProfile{Username: "clerk"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if s.IsAdmin() {
		t.Error("non-admin user must not be admin")
	}
}

func TestUser_ReturnsCopy(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Set("abc", &models.UserProfile{Username: "admin"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	u := s.User()
	u.Username = "mutated"
	if s.User().Username != "admin" {
		t.Error("User must return a copy, not the stored profile")
	}
}

func TestFileFormat_TwoFixedKeys(t *testing.T) {
	s, path := newTestStore(t)
	if err := s.Set("abc", &models.UserProfile{Username: "admin"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read session file: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("session file is not JSON: %v", err)
	}
	for _, key := range []string{"token", "user"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("session file missing %q key", key)
		}
	}
}
