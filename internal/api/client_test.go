package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IbtissamELANSARI/school-management-app/internal/config"
	"github.com/IbtissamELANSARI/school-management-app/internal/errors"
)

// newTestClient wires a Client against an httptest server.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(config.Config{BaseURL: server.URL, Timeout: 5 * time.Second}, nil, nil)
	require.NoError(t, err)
	return client, server
}

// csrfMux returns a mux that serves the priming endpoint and counts hits.
func csrfMux(primed *atomic.Int32) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sanctum/csrf-cookie", func(w http.ResponseWriter, r *http.Request) {
		primed.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "tok%3D%3D", Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func TestClient_CSRFPriming(t *testing.T) {
	var primed atomic.Int32
	var gotToken string

	mux := csrfMux(&primed)
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-XSRF-TOKEN")
		w.WriteHeader(http.StatusNoContent)
	})

	client, _ := newTestClient(t, mux)

	require.NoError(t, client.Logout(context.Background()))
	assert.Equal(t, int32(1), primed.Load(), "state-changing call must prime first")
	assert.Equal(t, "tok==", gotToken, "token must be echoed URL-decoded")

	// A second mutation reuses the cookie instead of priming again.
	require.NoError(t, client.Logout(context.Background()))
	assert.Equal(t, int32(1), primed.Load())
}

func TestClient_NoPrimingForReads(t *testing.T) {
	var primed atomic.Int32

	mux := csrfMux(&primed)
	mux.HandleFunc("GET /api/user", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(User{ID: 1, Name: "A"})
	})

	client, _ := newTestClient(t, mux)

	_, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Zero(t, primed.Load(), "safe calls must not prime")
}

func TestClient_CSRFPrimingFailureAbortsCall(t *testing.T) {
	var reachedLogin atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("GET /sanctum/csrf-cookie", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		reachedLogin.Store(true)
		w.WriteHeader(http.StatusNoContent)
	})

	client, _ := newTestClient(t, mux)

	err := client.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCSRFAcquisition, errors.CodeOf(err))
	assert.False(t, reachedLogin.Load(), "the original call must be aborted")
}

func TestClient_CSRFCookieMissingFromResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sanctum/csrf-cookie", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent) // no cookie set
	})

	client, _ := newTestClient(t, mux)

	err := client.Logout(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCSRFTokenEmpty, errors.CodeOf(err))
}

func TestClient_UnauthorizedHook(t *testing.T) {
	var hookCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/user", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Unauthenticated."})
	})

	client, _ := newTestClient(t, mux)
	client.SetUnauthorizedHook(func() { hookCalls.Add(1) })

	_, err := client.CurrentUser(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAuthUnauthorized, errors.CodeOf(err))
	assert.Equal(t, int32(1), hookCalls.Load())
}

func TestClient_UnauthorizedOnLoginSkipsHook(t *testing.T) {
	var hookCalls atomic.Int32
	var primed atomic.Int32

	mux := csrfMux(&primed)
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	})

	client, _ := newTestClient(t, mux)
	client.SetUnauthorizedHook(func() { hookCalls.Add(1) })

	err := client.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "bad"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAuthBadCredentials, errors.CodeOf(err))
	assert.Zero(t, hookCalls.Load(), "a rejected login is not a session expiry")
}

func TestClient_ValidationErrors(t *testing.T) {
	var primed atomic.Int32

	mux := csrfMux(&primed)
	mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"message": "The given data was invalid.",
			"errors": map[string][]string{
				"email":    {"The email has already been taken."},
				"password": {"The password confirmation does not match."},
			},
		})
	})

	client, _ := newTestClient(t, mux)

	err := client.Register(context.Background(), RegisterRequest{Name: "A", Email: "a@b.com"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAuthValidation, errors.CodeOf(err))
	assert.Equal(t,
		"The email has already been taken. The password confirmation does not match.",
		errors.FlatMessageOf(err))
}

func TestClient_DataEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"enveloped", `{"data":[{"id":1,"nom":"Informatique"},{"id":2,"nom":"Gestion"}]}`},
		{"bare", `[{"id":1,"nom":"Informatique"},{"id":2,"nom":"Gestion"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /secteurs", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			})

			client, _ := newTestClient(t, mux)

			secteurs, err := client.Secteurs().List(context.Background(), "")
			require.NoError(t, err)
			require.Len(t, secteurs, 2)
			assert.Equal(t, "Informatique", secteurs[0].Nom)
		})
	}
}

func TestClient_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /secteurs/99", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "Secteur not found"})
	})

	client, _ := newTestClient(t, mux)

	_, err := client.Secteurs().Get(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeResourceNotFound, errors.CodeOf(err))
	assert.Equal(t, "Secteur not found", errors.FlatMessageOf(err))
}

func TestClient_RequestHeaders(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		json.NewEncoder(w).Encode(User{ID: 1})
	})

	client, _ := newTestClient(t, mux)

	_, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
}

func TestClient_TransportError(t *testing.T) {
	client, server := newTestClient(t, http.NewServeMux())
	server.Close()

	_, err := client.CurrentUser(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAPITransport, errors.CodeOf(err))
}
