// Package api is the shared client for the school-management backend.
//
// The backend authenticates with Laravel-Sanctum-style session cookies: a
// safe GET to /sanctum/csrf-cookie primes an XSRF-TOKEN cookie, whose value
// is echoed back on every state-changing request as the X-XSRF-TOKEN header.
// One Client is shared by every service in the process; it owns the cookie
// jar and therefore the session.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/IbtissamELANSARI/school-management-app/internal/config"
	"github.com/IbtissamELANSARI/school-management-app/internal/errors"
	"github.com/IbtissamELANSARI/school-management-app/internal/log"
)

// Backend paths.
const (
	csrfCookiePath  = "/sanctum/csrf-cookie"
	registerPath    = "/register"
	loginPath       = "/login"
	logoutPath      = "/logout"
	userPath        = "/api/user"
	permissionsPath = "/api/user/permissions"
	secteursPath    = "/secteurs"
)

const csrfCookieName = "XSRF-TOKEN"

// Client is the shared backend API client.
type Client struct {
	root string
	http *http.Client
	log  *log.Logger

	// onUnauthorized, when set, runs on any 401 outside the login
	// endpoint. The error still propagates to the caller.
	onUnauthorized func()
}

// New creates a Client for the configured backend deployment. A non-nil
// cookies store makes the session cookie survive process restarts.
func New(cfg config.Config, logger *log.Logger, cookies CookieStore) (*Client, error) {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	var jar http.CookieJar
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAPIRequest, "could not create cookie jar", err)
	}

	root := cfg.Root()
	if cookies != nil {
		rootURL, parseErr := url.Parse(root)
		if parseErr != nil {
			return nil, errors.Wrap(errors.ErrCodeAPIRequest, "invalid backend root", parseErr)
		}
		jar = newPersistentJar(jar, rootURL, cookies)
	}

	return &Client{
		root: root,
		http: &http.Client{
			Jar:     jar,
			Timeout: cfg.Timeout,
		},
		log: logger,
	}, nil
}

// SetUnauthorizedHook installs the global 401 hook.
func (c *Client) SetUnauthorizedHook(hook func()) {
	c.onUnauthorized = hook
}

// Root returns the backend root the client talks to.
func (c *Client) Root() string {
	return c.root
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// csrfToken returns the current XSRF-TOKEN cookie value, URL-decoded the way
// the backend expects it echoed, or "" when no token has been primed yet.
func (c *Client) csrfToken() string {
	rootURL, err := url.Parse(c.root)
	if err != nil {
		return ""
	}
	for _, cookie := range c.http.Jar.Cookies(rootURL) {
		if cookie.Name == csrfCookieName {
			if decoded, err := url.QueryUnescape(cookie.Value); err == nil {
				return decoded
			}
			return cookie.Value
		}
	}
	return ""
}

// ensureCSRF primes the XSRF-TOKEN cookie when it is missing. The priming
// request goes through the raw path so it can never re-prime itself.
func (c *Client) ensureCSRF(ctx context.Context) error {
	if c.csrfToken() != "" {
		return nil
	}

	resp, err := c.send(ctx, http.MethodGet, csrfCookiePath, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCSRFAcquisition, "could not obtain CSRF cookie", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Newf(errors.ErrCodeCSRFAcquisition,
			"CSRF cookie request returned status %d", resp.StatusCode)
	}
	if c.csrfToken() == "" {
		return errors.New(errors.ErrCodeCSRFTokenEmpty, "backend did not set the XSRF-TOKEN cookie")
	}
	return nil
}

// send issues one HTTP request without CSRF orchestration.
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeAPIRequest, "could not marshal request body", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.root+path, reqBody)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAPIRequest, "could not create request", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if isStateChanging(method) {
		if token := c.csrfToken(); token != "" {
			req.Header.Set("X-XSRF-TOKEN", token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).Debug("request failed", "method", method, "path", path)
		return nil, errors.Wrap(errors.ErrCodeAPITransport,
			fmt.Sprintf("%s %s failed", method, path), err)
	}

	c.log.Debug("request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String())
	return resp, nil
}

// do issues a request and decodes the response into out. State-changing
// methods prime the CSRF cookie first; a priming failure aborts the call.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if isStateChanging(method) {
		if err := c.ensureCSRF(ctx); err != nil {
			return err
		}
	}

	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.parseResponse(resp, path, out)
}

// errorBody is the backend's failure payload: validation failures nest
// field→messages under "errors", general failures carry "message".
type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// envelope matches collection and single-resource payloads that nest the
// useful part under "data".
type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) parseResponse(resp *http.Response, path string, out any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAPITransport, "could not read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.decodeError(resp.StatusCode, path, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	payload := data
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && len(env.Data) > 0 {
		payload = env.Data
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrap(errors.ErrCodeAPIDecode, "could not decode response", err)
	}
	return nil
}

func (c *Client) decodeError(status int, path string, data []byte) error {
	var body errorBody
	_ = json.Unmarshal(data, &body)

	message := body.Message
	if message == "" {
		message = strings.TrimSpace(string(data))
	}
	if message == "" {
		message = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		if path == loginPath {
			return errors.New(errors.ErrCodeAuthBadCredentials, message)
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return errors.New(errors.ErrCodeAuthUnauthorized, message)

	case status == 419:
		// Laravel's "page expired": the CSRF token was stale.
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return errors.New(errors.ErrCodeCSRFAcquisition, message)

	case status == http.StatusUnprocessableEntity:
		code := errors.ErrCodeResourceValidation
		if path == registerPath || path == loginPath {
			code = errors.ErrCodeAuthValidation
		}
		return errors.NewValidation(code, message, body.Errors)

	case status == http.StatusNotFound:
		return errors.New(errors.ErrCodeResourceNotFound, message)

	default:
		return errors.Newf(errors.ErrCodeAPIStatus, "request failed with status %d: %s", status, message)
	}
}
