package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/eduoj/ojcli/internal/browser"
	"github.com/eduoj/ojcli/internal/localstore"
	"github.com/eduoj/ojcli/internal/logging"
	"github.com/eduoj/ojcli/internal/tui"
	"github.com/eduoj/ojcli/pkg/client"
	"github.com/eduoj/ojcli/pkg/session"
)

// app is everything one command needs to talk to the API.
type app struct {
	logger   *zap.Logger
	storage  localstore.Storage
	flag     *localstore.LoginFlag
	jar      *client.PersistentJar
	nav      *browser.Navigator
	notices  *noticeSwitch
	registry *prometheus.Registry
	api      *client.Client
	store    *session.Store
	textfile string
}

// newApp wires storage, cookie jar, navigator, client and session store.
// page is the location the command is considered to run on.
func (c *cli) newApp(ctx context.Context, page string) (*app, error) {
	cfg := c.cfg

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Dev)
	if err != nil {
		return nil, err
	}

	storage, err := localstore.Open(ctx, localstore.Options{
		Driver:        cfg.Storage.Driver,
		Path:          cfg.Storage.Path,
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisPassword: cfg.Storage.RedisPassword,
		RedisDB:       cfg.Storage.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}

	apiURL := cfg.APIBaseURL()
	jar, err := client.NewPersistentJar(ctx, apiURL, storage, logger)
	if err != nil {
		storage.Close() //nolint:errcheck
		return nil, err
	}

	navOpts := []browser.NavigatorOption{
		browser.WithBrowser(cfg.OpenBrowser),
		browser.WithLogger(logger),
		browser.WithClipboard(c.clipboard()),
	}
	if c.opts.OpenURL != nil {
		navOpts = append(navOpts, browser.WithOpener(c.opts.OpenURL))
	}
	nav := browser.NewNavigator(cfg.WebURL, navOpts...)
	nav.SetLocation(page)

	notices := &noticeSwitch{current: tui.NewPrinter(c.opts.Stderr)}
	registry := prometheus.NewRegistry()

	api := client.New(apiURL,
		client.WithJar(jar),
		client.WithNotifier(notices),
		client.WithNavigator(nav),
		client.WithLogger(logger),
		client.WithMetrics(client.NewMetrics(registry)),
	)
	flag := localstore.NewLoginFlag(storage)

	logger.Debug("client ready",
		zap.String("api_url", apiURL),
		zap.String("web_url", cfg.WebURL),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("page", nav.Location()),
	)

	return &app{
		logger:   logger,
		storage:  storage,
		flag:     flag,
		jar:      jar,
		nav:      nav,
		notices:  notices,
		registry: registry,
		api:      api,
		store:    session.New(api, flag, nav, logger),
		textfile: cfg.Metrics.Textfile,
	}, nil
}

// closeApp exports metrics, closes storage and joins any failure with err.
func closeApp(a *app, err error) error {
	var errs []error
	if err != nil {
		errs = append(errs, err)
	}
	if a.textfile != "" {
		if werr := client.WriteTextfile(a.textfile, a.registry); werr != nil {
			errs = append(errs, werr)
		}
	}
	if cerr := a.storage.Close(); cerr != nil {
		errs = append(errs, fmt.Errorf("close local storage: %w", cerr))
	}
	a.logger.Sync() //nolint:errcheck // stderr sync fails on some terminals
	return errors.Join(errs...)
}

func (c *cli) clipboard() func(string) error {
	if c.opts.Clipboard != nil {
		return c.opts.Clipboard
	}
	return clipboard.WriteAll
}

// pagePath reduces a request path to the page it names.
func pagePath(path string) string {
	u, err := url.Parse(path)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// noticeSwitch forwards notices to a notifier that can be swapped while
// requests are in flight.
type noticeSwitch struct {
	mu      sync.RWMutex
	current client.Notifier
}

func (s *noticeSwitch) Notify(message string) {
	s.mu.RLock()
	n := s.current
	s.mu.RUnlock()
	n.Notify(message)
}

// Set installs n and returns a func restoring the previous notifier.
func (s *noticeSwitch) Set(n client.Notifier) func() {
	s.mu.Lock()
	prev := s.current
	s.current = n
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.current = prev
		s.mu.Unlock()
	}
}
