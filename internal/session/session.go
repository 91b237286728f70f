// Package session holds the console's authentication state.
//
// The Store is the only writer of that state: every mutation goes through a
// named operation (Signup, Login, CheckAuth, Logout, ClearError), never
// through ad hoc field writes. Operations move the store through the
// idle → loading → succeeded/failed lifecycle and keep the persisted
// credential records in sync with the remember-me preference.
package session

import (
	"github.com/IbtissamELANSARI/school-management-app/internal/ability"
	"github.com/IbtissamELANSARI/school-management-app/internal/api"
	"github.com/IbtissamELANSARI/school-management-app/internal/store"
)

// Status is the request lifecycle state of the store.
type Status int

const (
	// StatusIdle means no operation has run yet.
	StatusIdle Status = iota
	// StatusLoading means an operation is in flight.
	StatusLoading
	// StatusSucceeded means the last operation completed.
	StatusSucceeded
	// StatusFailed means the last operation failed.
	StatusFailed
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is one snapshot of the session.
type State struct {
	User          *api.User
	Authenticated bool
	RememberMe    bool
	Status        Status
	Err           string
}

// Anonymous returns the signed-out state.
func Anonymous() State {
	return State{}
}

// Ability derives the authorization predicate for the snapshot's user.
func (s State) Ability() ability.Ability {
	if s.User == nil {
		return ability.None()
	}
	return ability.FromPermissions(s.User.Permissions)
}

// scopeFor maps the remember-me preference to a storage scope.
func scopeFor(rememberMe bool) store.Scope {
	if rememberMe {
		return store.ScopeDurable
	}
	return store.ScopeSession
}

func otherScope(s store.Scope) store.Scope {
	if s == store.ScopeDurable {
		return store.ScopeSession
	}
	return store.ScopeDurable
}
