package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IbtissamELANSARI/school-management-app/internal/api"
	"github.com/IbtissamELANSARI/school-management-app/internal/config"
	"github.com/IbtissamELANSARI/school-management-app/internal/errors"
	"github.com/IbtissamELANSARI/school-management-app/internal/store"
)

// fakeBackend is a minimal Sanctum-style backend: a CSRF priming endpoint,
// cookie-free fake auth (state held server-side per test), and a profile
// endpoint that answers 401 until a login succeeds.
type fakeBackend struct {
	mu       sync.Mutex
	user     api.User
	loggedIn bool

	failLogout  bool
	loginGate   chan struct{} // when set, /login blocks until closed
	loginCalled chan struct{} // when set, closed once /login is reached
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /sanctum/csrf-cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "tok", Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		gate, called := b.loginGate, b.loginCalled
		b.mu.Unlock()
		if called != nil {
			close(called)
		}
		if gate != nil {
			<-gate
		}

		var req api.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password == "wrong" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
			return
		}

		b.mu.Lock()
		b.loggedIn = true
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) {
		var req api.RegisterRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != req.PasswordConfirmation {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]any{
				"message": "The given data was invalid.",
				"errors": map[string][]string{
					"password": {"The password confirmation does not match."},
				},
			})
			return
		}

		b.mu.Lock()
		b.loggedIn = true
		b.user = api.User{ID: 2, Name: req.Name, Email: req.Email}
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("GET /api/user", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !b.loggedIn {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Unauthenticated."})
			return
		}
		json.NewEncoder(w).Encode(map[string]api.User{"data": b.user})
	})

	mux.HandleFunc("GET /api/user/permissions", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !b.loggedIn {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Unauthenticated."})
			return
		}
		json.NewEncoder(w).Encode(map[string][]string{"data": b.user.Permissions})
	})

	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failLogout {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		b.loggedIn = false
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

type fixture struct {
	store    *Store
	records  *store.Store
	backend  *fakeBackend
	durable  string
	sessions string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := &fakeBackend{
		user: api.User{ID: 1, Name: "A", Email: "a@b.com", Roles: []string{}, Permissions: []string{"view_secteurs"}},
	}
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	client, err := api.New(config.Config{BaseURL: server.URL, Timeout: 5 * time.Second}, nil, nil)
	require.NoError(t, err)

	durable, sessions := t.TempDir(), t.TempDir()
	records := store.NewAt(durable, sessions, nil)

	return &fixture{
		store:    New(client, records, nil),
		records:  records,
		backend:  backend,
		durable:  durable,
		sessions: sessions,
	}
}

func (f *fixture) userIn(t *testing.T, scope store.Scope) (api.User, bool) {
	t.Helper()
	var u api.User
	ok := f.records.Get(scope, store.RecordUser, &u)
	return u, ok
}

func TestLogin_Succeeded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Login(ctx, "a@b.com", "x", true))

	state := f.store.State()
	require.NotNil(t, state.User)
	assert.Equal(t, 1, state.User.ID)
	assert.True(t, state.Authenticated)
	assert.True(t, state.RememberMe)
	assert.Equal(t, StatusSucceeded, state.Status)
	assert.Empty(t, state.Err)

	a := state.Ability()
	assert.True(t, a.Can("view_secteurs"))
	assert.False(t, a.Can("delete_secteurs"))
}

func TestLogin_ThenCheckAuth_SameUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Login(ctx, "a@b.com", "x", true))
	loggedIn := f.store.State()

	require.NoError(t, f.store.CheckAuth(ctx))
	checked := f.store.State()

	assert.Equal(t, loggedIn.User, checked.User)
	assert.True(t, checked.Authenticated)
	assert.True(t, checked.RememberMe, "durable remember-me preference is reused")
}

func TestLogin_Failed(t *testing.T) {
	f := newFixture(t)

	err := f.store.Login(context.Background(), "a@b.com", "wrong", true)
	require.Error(t, err)

	state := f.store.State()
	assert.Nil(t, state.User)
	assert.False(t, state.Authenticated)
	assert.False(t, state.RememberMe)
	assert.Equal(t, StatusFailed, state.Status)
	assert.Equal(t, "Invalid credentials", state.Err)
}

func TestLogin_RememberMeScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Login(ctx, "a@b.com", "x", true))
	_, inDurable := f.userIn(t, store.ScopeDurable)
	_, inSession := f.userIn(t, store.ScopeSession)
	assert.True(t, inDurable)
	assert.False(t, inSession)

	// Toggling the preference must flip with no residual duplicate.
	require.NoError(t, f.store.Login(ctx, "a@b.com", "x", false))
	_, inDurable = f.userIn(t, store.ScopeDurable)
	_, inSession = f.userIn(t, store.ScopeSession)
	assert.False(t, inDurable)
	assert.True(t, inSession)

	require.NoError(t, f.store.Login(ctx, "a@b.com", "x", true))
	_, inDurable = f.userIn(t, store.ScopeDurable)
	_, inSession = f.userIn(t, store.ScopeSession)
	assert.True(t, inDurable)
	assert.False(t, inSession)
}

func TestSignup_Succeeded(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.store.Signup(context.Background(), "B", "b@c.com", "secret123", "secret123"))

	state := f.store.State()
	require.NotNil(t, state.User)
	assert.Equal(t, "b@c.com", state.User.Email)
	assert.True(t, state.Authenticated)
	assert.True(t, state.RememberMe, "signup remembers by default")

	_, inDurable := f.userIn(t, store.ScopeDurable)
	assert.True(t, inDurable)
}

func TestSignup_ValidationFailure(t *testing.T) {
	f := newFixture(t)

	err := f.store.Signup(context.Background(), "B", "b@c.com", "secret123", "different")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAuthValidation, errors.CodeOf(err))

	state := f.store.State()
	assert.Equal(t, StatusFailed, state.Status)
	assert.Equal(t, "The password confirmation does not match.", state.Err)
	assert.False(t, state.Authenticated)
}

func TestCheckAuth_Failure(t *testing.T) {
	f := newFixture(t)

	// Plant records in both scopes; a failed check must purge everything.
	f.records.Set(store.ScopeDurable, store.RecordUser, api.User{ID: 1})
	f.records.Set(store.ScopeSession, store.RecordUser, api.User{ID: 1})

	err := f.store.CheckAuth(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAuthNotAuthenticated, errors.CodeOf(err))

	state := f.store.State()
	assert.False(t, state.Authenticated)
	assert.Equal(t, StatusFailed, state.Status)
	assert.Equal(t, "not authenticated", state.Err)

	_, inDurable := f.userIn(t, store.ScopeDurable)
	_, inSession := f.userIn(t, store.ScopeSession)
	assert.False(t, inDurable)
	assert.False(t, inSession)
}

func TestLogout_AlwaysResets(t *testing.T) {
	tests := []struct {
		name        string
		failBackend bool
	}{
		{"backend logout succeeds", false},
		{"backend logout fails", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			require.NoError(t, f.store.Login(ctx, "a@b.com", "x", true))
			f.backend.failLogout = tt.failBackend

			f.store.Logout(ctx)

			state := f.store.State()
			assert.False(t, state.Authenticated)
			assert.Nil(t, state.User)
			assert.False(t, state.RememberMe)

			for _, scope := range []store.Scope{store.ScopeDurable, store.ScopeSession} {
				var u api.User
				assert.False(t, f.records.Get(scope, store.RecordUser, &u))
				var remembered bool
				assert.False(t, f.records.Get(scope, store.RecordRememberMe, &remembered))
			}
		})
	}
}

func TestClearError_OnlyClearsError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Login(ctx, "a@b.com", "x", true))

	// Force an error on top of an authenticated session.
	f.store.mu.Lock()
	f.store.state.Err = "stale message"
	f.store.mu.Unlock()

	before := f.store.State()
	f.store.ClearError()
	after := f.store.State()

	assert.Empty(t, after.Err)
	assert.Equal(t, before.User, after.User)
	assert.Equal(t, before.Authenticated, after.Authenticated)
	assert.Equal(t, before.RememberMe, after.RememberMe)
}

func TestReset_FencesInFlightLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gate := make(chan struct{})
	called := make(chan struct{})
	f.backend.mu.Lock()
	f.backend.loginGate = gate
	f.backend.loginCalled = called
	f.backend.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- f.store.Login(ctx, "a@b.com", "x", true)
	}()

	// Wait until the login request is in flight, then log out underneath it.
	<-called
	f.store.Reset()
	close(gate)

	require.NoError(t, <-done, "the network call itself completes")

	state := f.store.State()
	assert.False(t, state.Authenticated, "a stale success must not resurrect the session")
	assert.Nil(t, state.User)

	_, inDurable := f.userIn(t, store.ScopeDurable)
	_, inSession := f.userIn(t, store.ScopeSession)
	assert.False(t, inDurable, "a stale success must not persist records")
	assert.False(t, inSession)
}

func TestLogin_MovesCookieRecordToSelectedScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Cookies from the login response land before the preference is known.
	seed := []*http.Cookie{{Name: "laravel_session", Value: "sess", Path: "/"}}
	f.records.Set(store.ScopeSession, store.RecordCookies, seed)

	require.NoError(t, f.store.Login(ctx, "a@b.com", "x", true))

	var cookies []*http.Cookie
	require.True(t, f.records.Get(store.ScopeDurable, store.RecordCookies, &cookies))
	assert.Equal(t, "sess", cookies[0].Value)
	assert.False(t, f.records.Get(store.ScopeSession, store.RecordCookies, &cookies))
}

func TestRefreshPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Login(ctx, "a@b.com", "x", true))
	assert.False(t, f.store.State().Ability().Can("delete_secteurs"))

	// The backend grants a new permission after the login.
	f.backend.mu.Lock()
	f.backend.user.Permissions = append(f.backend.user.Permissions, "delete_secteurs")
	f.backend.mu.Unlock()

	require.NoError(t, f.store.RefreshPermissions(ctx))

	state := f.store.State()
	assert.True(t, state.Ability().Can("delete_secteurs"))

	// The refreshed permission list is persisted with the user record.
	cached, ok := f.userIn(t, store.ScopeDurable)
	require.True(t, ok)
	assert.Contains(t, cached.Permissions, "delete_secteurs")
}

func TestNew_RestoresPersistedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Login(ctx, "a@b.com", "x", true))

	// A fresh store over the same records sees the cached session.
	restored := New(f.store.client, f.records, nil)
	state := restored.State()
	require.NotNil(t, state.User)
	assert.Equal(t, 1, state.User.ID)
	assert.True(t, state.Authenticated)
	assert.True(t, state.RememberMe)
	assert.Equal(t, StatusIdle, state.Status)
}

func TestState_ReturnsCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Login(ctx, "a@b.com", "x", true))

	snapshot := f.store.State()
	snapshot.User.Name = "mutated"
	snapshot.User.Permissions[0] = "delete_secteurs"
	snapshot.User.Roles = append(snapshot.User.Roles, "admin")

	state := f.store.State()
	assert.Equal(t, "A", state.User.Name)
	assert.Equal(t, []string{"view_secteurs"}, state.User.Permissions)
	assert.Empty(t, state.User.Roles)
}
