package browser

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

// Navigator tracks the page the user is on. Navigating records the new page
// and opens it in the browser; when no browser can be started the URL is put
// on the clipboard instead.
type Navigator struct {
	webURL  string
	open    func(url string) error
	copy    func(text string) error
	enabled bool
	logger  *zap.Logger

	mu       sync.RWMutex
	location string
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithOpener replaces the browser launcher.
func WithOpener(open func(url string) error) NavigatorOption {
	return func(n *Navigator) { n.open = open }
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(write func(text string) error) NavigatorOption {
	return func(n *Navigator) { n.copy = write }
}

// WithBrowser turns launching the browser on or off. When off, navigation
// only records the location.
func WithBrowser(enabled bool) NavigatorOption {
	return func(n *Navigator) { n.enabled = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) NavigatorOption {
	return func(n *Navigator) { n.logger = l }
}

// NewNavigator returns a navigator for the front end at webURL, starting at "/".
func NewNavigator(webURL string, opts ...NavigatorOption) *Navigator {
	n := &Navigator{
		webURL:   strings.TrimRight(webURL, "/"),
		open:     Open,
		copy:     clipboard.WriteAll,
		enabled:  true,
		logger:   zap.NewNop(),
		location: "/",
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Location returns the current page path.
func (n *Navigator) Location() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.location
}

// SetLocation records the current page without opening anything.
func (n *Navigator) SetLocation(path string) {
	n.mu.Lock()
	n.location = normalize(path)
	n.mu.Unlock()
}

// URL returns the absolute front-end URL of path.
func (n *Navigator) URL(path string) string {
	return n.webURL + normalize(path)
}

// Navigate moves to path. An error is returned only when neither the browser
// nor the clipboard could take the URL; the location changes regardless.
func (n *Navigator) Navigate(path string) error {
	n.SetLocation(path)
	if !n.enabled {
		return nil
	}

	url := n.URL(path)
	openErr := n.open(url)
	if openErr == nil {
		n.logger.Debug("opened browser", zap.String("url", url))
		return nil
	}
	copyErr := n.copy(url)
	if copyErr == nil {
		n.logger.Info("browser unavailable, URL copied to clipboard",
			zap.String("url", url), zap.Error(openErr))
		return nil
	}
	return fmt.Errorf("browser.Navigate %s: %w", url, errors.Join(openErr, copyErr))
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
