// Package store persists small named JSON records for the console.
//
// Records live in one of two scopes: the durable scope under the user config
// directory, which survives terminal restarts, and the session scope under a
// temp directory keyed by the parent shell, which does not. The remember-me
// preference decides which scope holds the cached user.
//
// Storage failures are never fatal: writes log and drop the record, reads
// degrade to "record absent".
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/IbtissamELANSARI/school-management-app/internal/log"
)

// Scope selects where a record is persisted.
type Scope int

const (
	// ScopeDurable survives terminal restarts.
	ScopeDurable Scope = iota
	// ScopeSession lives for the current shell session only.
	ScopeSession
)

// String returns the string representation of the scope
func (s Scope) String() string {
	switch s {
	case ScopeDurable:
		return "durable"
	case ScopeSession:
		return "session"
	default:
		return "unknown"
	}
}

// Record names used by the session store.
const (
	RecordUser       = "user"
	RecordRememberMe = "remember_me"
	RecordCookies    = "cookies"
)

// Store reads and writes named JSON records in the two scopes.
type Store struct {
	dirs map[Scope]string
	log  *log.Logger
}

// New creates a Store rooted at the default scope directories.
func New(logger *log.Logger) (*Store, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("could not locate the user config directory: %w", err)
	}

	durable := filepath.Join(configDir, "schooladmin")
	session := filepath.Join(os.TempDir(), fmt.Sprintf("schooladmin-%d", os.Getppid()))

	return NewAt(durable, session, logger), nil
}

// NewAt creates a Store rooted at explicit scope directories.
func NewAt(durableDir, sessionDir string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Store{
		dirs: map[Scope]string{
			ScopeDurable: durableDir,
			ScopeSession: sessionDir,
		},
		log: logger,
	}
}

func (s *Store) path(scope Scope, name string) string {
	return filepath.Join(s.dirs[scope], name+".json")
}

// Get reads the named record into v. It reports whether a usable record was
// found; corrupt or unreadable records count as absent.
func (s *Store) Get(scope Scope, name string, v any) bool {
	path := s.path(scope, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("could not read record, treating as absent",
				"record", name, "scope", scope.String(), "error", err.Error())
		}
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warn("record is corrupt, treating as absent",
			"record", name, "scope", scope.String(), "error", err.Error())
		return false
	}
	return true
}

// Set serializes v into the named record. Failures are logged and dropped.
func (s *Store) Set(scope Scope, name string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("could not serialize record",
			"record", name, "scope", scope.String(), "error", err.Error())
		return
	}

	dir := s.dirs[scope]
	if err := os.MkdirAll(dir, 0o700); err != nil {
		s.log.Warn("could not create scope directory",
			"scope", scope.String(), "error", err.Error())
		return
	}

	if err := os.WriteFile(s.path(scope, name), data, 0o600); err != nil {
		s.log.Warn("could not write record",
			"record", name, "scope", scope.String(), "error", err.Error())
	}
}

// Remove deletes the named record from one scope.
func (s *Store) Remove(scope Scope, name string) {
	if err := os.Remove(s.path(scope, name)); err != nil && !os.IsNotExist(err) {
		s.log.Warn("could not remove record",
			"record", name, "scope", scope.String(), "error", err.Error())
	}
}

// Purge deletes the named record from both scopes.
func (s *Store) Purge(name string) {
	s.Remove(ScopeDurable, name)
	s.Remove(ScopeSession, name)
}

// PurgeAll deletes every session record from both scopes.
func (s *Store) PurgeAll() {
	s.Purge(RecordUser)
	s.Purge(RecordRememberMe)
	s.Purge(RecordCookies)
}
