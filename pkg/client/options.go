package client

import (
	"net/http"

	"go.uber.org/zap"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient sets the http.Client used for requests. A copy is taken;
// a missing jar or timeout is filled in with the client defaults.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithJar sets the cookie jar that carries session credentials.
func WithJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.jar = jar
	}
}

// WithNotifier sets where user-visible failure notices go.
func WithNotifier(n Notifier) Option {
	return func(c *Client) {
		c.notifier = n
	}
}

// WithNavigator sets the navigator used for the current location and login redirects.
func WithNavigator(nav Navigator) Option {
	return func(c *Client) {
		c.navigator = nav
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics enables request metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}
