package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/IbtissamELANSARI/school-management-app/internal/api"
	"github.com/IbtissamELANSARI/school-management-app/internal/config"
	"github.com/IbtissamELANSARI/school-management-app/internal/log"
	"github.com/IbtissamELANSARI/school-management-app/internal/session"
	"github.com/IbtissamELANSARI/school-management-app/internal/store"
)

// app bundles the wired runtime every command works against: configuration,
// logger, the shared API client, and the session store restored from disk.
type app struct {
	cfg     config.Config
	log     *log.Logger
	client  *api.Client
	session *session.Store
}

// newApp loads configuration, applies flag overrides, and wires the stack.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if baseURL, _ := cmd.Flags().GetString("base-url"); baseURL != "" {
		cfg.BaseURL = baseURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logCfg := log.Config{
		Level:  log.ParseLevel(cfg.LogLevel),
		Format: log.ParseFormat(cfg.LogFormat),
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logCfg = log.DevelopmentConfig()
	}
	logger := log.New(logCfg)
	log.SetDefaultLogger(logger)

	records, err := store.New(logger)
	if err != nil {
		return nil, err
	}

	client, err := api.New(cfg, logger, &cookieRecords{records: records})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		log:     logger,
		client:  client,
		session: session.New(client, records, logger),
	}, nil
}

// cookieRecords persists cookies through the record store so a login
// survives the process the way a browser session survives a reload. The
// record follows the remember-me preference: durable scope only when the
// user asked to stay signed in, session scope otherwise.
type cookieRecords struct {
	records *store.Store
}

func (c *cookieRecords) Load() []*http.Cookie {
	var cookies []*http.Cookie
	if c.records.Get(store.ScopeDurable, store.RecordCookies, &cookies) {
		return cookies
	}
	if c.records.Get(store.ScopeSession, store.RecordCookies, &cookies) {
		return cookies
	}
	return nil
}

func (c *cookieRecords) Save(cookies []*http.Cookie) {
	// The durable remember-me record only exists when the preference is on.
	var remember bool
	if c.records.Get(store.ScopeDurable, store.RecordRememberMe, &remember) && remember {
		c.records.Set(store.ScopeDurable, store.RecordCookies, cookies)
		c.records.Remove(store.ScopeSession, store.RecordCookies)
		return
	}
	c.records.Set(store.ScopeSession, store.RecordCookies, cookies)
	c.records.Remove(store.ScopeDurable, store.RecordCookies)
}
