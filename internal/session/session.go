// Package session holds the authenticated session: the bearer token and
// the profile of the logged-in user, persisted to a local JSON file so a
// new process starts where the previous one left off.
package session

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/molinosatl/invdash/internal/models"
)

// Store is the session contract the API client depends on. It is an
// interface so tests can swap in an in-memory double.
type Store interface {
	// Token returns the current bearer token, or "" when anonymous.
	Token() string
	// User returns the current profile, or nil when anonymous.
	User() *models.UserProfile
	// Set persists a new token and profile together.
	Set(token string, u *models.UserProfile) error
	// Clear drops the token and profile. Clearing an already-cleared
	// session is a no-op.
	Clear() error
	// IsAuthenticated reports whether a token is present.
	IsAuthenticated() bool
	// IsAdmin reports whether the current user is an administrator.
	// False when anonymous.
	IsAdmin() bool
}

// fileDoc is the on-disk shape: the same two keys the browser dashboard
// kept in localStorage.
type fileDoc struct {
	Token string              `json:"token,omitempty"`
	User  *models.UserProfile `json:"user,omitempty"`
}

// FileStore implements Store on top of a single JSON file.
type FileStore struct {
	path string

	mu    sync.Mutex
	token string
	user  *models.UserProfile
}

// NewFileStore loads the session persisted at path. A missing file is not
// an error; it simply means the session starts anonymous.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	defer f.Close()

	var doc fileDoc
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, err
	}
	s.token = doc.Token
	s.user = doc.User
	return s, nil
}

func (s *FileStore) save() error {
	if s.token == "" && s.user == nil {
		err := os.Remove(s.path)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(fileDoc{Token: s.token, User: s.user})
}

// Token returns the current bearer token, or "" when anonymous.
func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns a copy of the current profile, or nil when anonymous.
func (s *FileStore) User() *models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Set persists token and profile together.
func (s *FileStore) Set(token string, u *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = u
	return s.save()
}

/// Clear drops the session. Idempotent: clearing an anonymous session is a
// no-op, which matters when two concurrent 401s both trigger it.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" && s.user == nil {
		return nil
	}
	s.token = ""
	s.user = nil
	return s.save()
}

// IsAuthenticated reports whether a token is present.
func (s *FileStore) IsAuthenticated() bool {
	return s.Token() != ""
}

// IsAdmin reports whether the logged-in user is an administrator.
func (s *FileStore) IsAdmin() bool {
	u := s.User()
	return u != nil && u.IsAdmin
}
