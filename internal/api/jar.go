package api

import (
	"net/http"
	"net/url"
)

// CookieStore persists the backend's session cookies between invocations,
// the way a browser would. Implementations follow the storage contract of
// the rest of the console: failures degrade to "no cookies", never errors.
type CookieStore interface {
	// Load returns the previously saved cookies, or nil.
	Load() []*http.Cookie
	// Save replaces the saved cookies.
	Save(cookies []*http.Cookie)
}

// persistentJar wraps the in-memory jar and mirrors the backend root's
// cookies into a CookieStore after every response that sets one.
type persistentJar struct {
	inner http.CookieJar
	root  *url.URL
	store CookieStore
}

func newPersistentJar(inner http.CookieJar, root *url.URL, store CookieStore) *persistentJar {
	jar := &persistentJar{inner: inner, root: root, store: store}
	if cookies := store.Load(); len(cookies) > 0 {
		inner.SetCookies(root, cookies)
	}
	return jar
}

// SetCookies implements http.CookieJar.
func (j *persistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)
	j.store.Save(j.inner.Cookies(j.root))
}

// Cookies implements http.CookieJar.
func (j *persistentJar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}
