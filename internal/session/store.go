package session

import (
	"context"
	"net/http"
	"sync"

	"github.com/IbtissamELANSARI/school-management-app/internal/api"
	"github.com/IbtissamELANSARI/school-management-app/internal/errors"
	"github.com/IbtissamELANSARI/school-management-app/internal/log"
	"github.com/IbtissamELANSARI/school-management-app/internal/store"
)

// Store serializes all session mutations.
//
// Each operation takes a generation ticket when it starts; synchronous resets
// (logout, failure handling) advance the generation, so a response that
// arrives after a reset finds its ticket stale and is discarded. A logout can
// therefore never be undone by a login success that was already in flight.
type Store struct {
	client  *api.Client
	records *store.Store
	log     *log.Logger

	mu    sync.Mutex
	state State
	gen   uint64
}

// New creates a Store and restores any persisted session, durable scope
// preferred. A restored user is provisional until CheckAuth confirms the
// backend session cookie is still alive.
func New(client *api.Client, records *store.Store, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	s := &Store{
		client:  client,
		records: records,
		log:     logger,
	}
	s.restore()
	// A rejected session anywhere in the app forces the anonymous state.
	// The error still reaches whoever made the call, and that operation's
	// own failure handling stays current, so expire does not advance the
	// generation the way Reset does.
	client.SetUnauthorizedHook(s.expire)
	return s
}

// expire forces the anonymous state and purges both scopes without fencing
// the operation that observed the rejection.
func (s *Store) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Anonymous()
	s.records.PurgeAll()
}

func (s *Store) restore() {
	var user api.User
	if s.records.Get(store.ScopeDurable, store.RecordUser, &user) {
		s.state = State{User: &user, Authenticated: true, RememberMe: true}
		return
	}
	if s.records.Get(store.ScopeSession, store.RecordUser, &user) {
		s.state = State{User: &user, Authenticated: true, RememberMe: false}
	}
}

// State returns a snapshot of the session.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state
	if s.state.User != nil {
		user := *s.state.User
		user.Roles = append([]string(nil), user.Roles...)
		user.Permissions = append([]string(nil), user.Permissions...)
		snapshot.User = &user
	}
	return snapshot
}

// begin marks an operation in flight and returns its generation ticket.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.state.Status = StatusLoading
	s.state.Err = ""
	return s.gen
}

// succeed records an authenticated user and persists it under the scope the
// remember-me preference selects, purging the other scope. Stale tickets are
// discarded.
func (s *Store) succeed(gen uint64, user *api.User, rememberMe bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.log.Debug("discarding stale auth success", "ticket", gen, "generation", s.gen)
		return false
	}

	s.state = State{
		User:          user,
		Authenticated: true,
		RememberMe:    rememberMe,
		Status:        StatusSucceeded,
	}

	scope := scopeFor(rememberMe)
	s.records.Set(scope, store.RecordUser, user)
	s.records.Set(scope, store.RecordRememberMe, rememberMe)
	s.records.Remove(otherScope(scope), store.RecordUser)
	s.records.Remove(otherScope(scope), store.RecordRememberMe)

	// Cookies set by the login response were saved before the preference
	// existed; move them into the scope it selects.
	var cookies []*http.Cookie
	if s.records.Get(otherScope(scope), store.RecordCookies, &cookies) {
		s.records.Set(scope, store.RecordCookies, cookies)
		s.records.Remove(otherScope(scope), store.RecordCookies)
	}
	return true
}

// fail forces the anonymous state with a failure message. purge additionally
// clears both storage scopes. Stale tickets are discarded.
func (s *Store) fail(gen uint64, message string, purge bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.log.Debug("discarding stale auth failure", "ticket", gen, "generation", s.gen)
		return
	}

	s.state = State{
		Status: StatusFailed,
		Err:    message,
	}
	if purge {
		s.records.PurgeAll()
	}
}

// Signup registers an account, fetches the canonical profile, and signs the
// session in with the remember-me default of true.
func (s *Store) Signup(ctx context.Context, name, email, password, confirmation string) error {
	gen := s.begin()

	err := s.client.Register(ctx, api.RegisterRequest{
		Name:                 name,
		Email:                email,
		Password:             password,
		PasswordConfirmation: confirmation,
	})
	if err != nil {
		s.fail(gen, flatten(err, "could not create the account"), false)
		return err
	}

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		s.fail(gen, flatten(err, "could not fetch the new account's profile"), false)
		return err
	}

	s.succeed(gen, user, true)
	return nil
}

// Login authenticates and fetches the canonical profile. The remember-me
// choice decides which scope caches the session across restarts.
func (s *Store) Login(ctx context.Context, email, password string, rememberMe bool) error {
	gen := s.begin()

	err := s.client.Login(ctx, api.LoginRequest{
		Email:    email,
		Password: password,
		Remember: rememberMe,
	})
	if err != nil {
		s.fail(gen, flatten(err, "could not sign in"), false)
		return err
	}

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		s.fail(gen, flatten(err, "could not fetch the profile"), false)
		return err
	}

	s.succeed(gen, user, rememberMe)
	return nil
}

// CheckAuth verifies the backend session cookie by fetching the profile.
// On failure both storage scopes are purged and a coded error is returned;
// CheckAuth never panics and never surfaces raw transport errors.
func (s *Store) CheckAuth(ctx context.Context) error {
	gen := s.begin()

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		s.log.WithError(err).Debug("session check failed")
		s.fail(gen, "not authenticated", true)
		return errors.Wrap(errors.ErrCodeAuthNotAuthenticated, "not authenticated", err)
	}

	s.succeed(gen, user, s.rememberedPreference())
	return nil
}

// rememberedPreference re-reads the persisted remember-me flag, durable
// scope preferred, so an app restart refreshes the cache in the right place.
func (s *Store) rememberedPreference() bool {
	var remembered bool
	if s.records.Get(store.ScopeDurable, store.RecordRememberMe, &remembered) {
		return remembered
	}
	if s.records.Get(store.ScopeSession, store.RecordRememberMe, &remembered) {
		return remembered
	}
	return false
}

// Logout ends the backend session. Whatever the backend answers, the client
// state resets to anonymous and both scopes are purged; the reset also
// fences out any operation still in flight.
func (s *Store) Logout(ctx context.Context) {
	if err := s.client.Logout(ctx); err != nil {
		s.log.WithError(err).Warn("backend logout failed, clearing local session anyway")
	}
	s.Reset()
}

// Reset synchronously forces the anonymous state and purges both scopes.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.state = Anonymous()
	s.records.PurgeAll()
}

// ClearError clears the error message and nothing else.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Err = ""
}

// RefreshPermissions refetches the permission list for the current user.
func (s *Store) RefreshPermissions(ctx context.Context) error {
	gen := s.begin()

	permissions, err := s.client.Permissions(ctx)
	if err != nil {
		s.fail(gen, flatten(err, "could not fetch permissions"), false)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.state.User == nil {
		return nil
	}
	s.state.User.Permissions = permissions
	s.state.Status = StatusSucceeded
	s.records.Set(scopeFor(s.state.RememberMe), store.RecordUser, s.state.User)
	return nil
}

// flatten turns any error into the single message shown near the form.
func flatten(err error, fallback string) string {
	if msg := errors.FlatMessageOf(err); msg != "" {
		return msg
	}
	return fallback
}
