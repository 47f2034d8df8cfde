package client

import "go.uber.org/zap"

// Notifier shows a user-visible error notice. Implementations must not block.
type Notifier interface {
	Notify(message string)
}

// Navigator knows the page the user is on and can move them to another one.
type Navigator interface {
	Location() string
	Navigate(path string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

type nopNavigator struct{}

func (nopNavigator) Location() string      { return "" }
func (nopNavigator) Navigate(string) error { return nil }

// Effects performs the side effects an Outcome asks for.
type Effects struct {
	notifier  Notifier
	navigator Navigator
	logger    *zap.Logger
}

// NewEffects returns an effect handler. Nil arguments fall back to no-ops.
func NewEffects(n Notifier, nav Navigator, logger *zap.Logger) *Effects {
	if n == nil {
		n = nopNotifier{}
	}
	if nav == nil {
		nav = nopNavigator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Effects{notifier: n, navigator: nav, logger: logger}
}

// Location returns the navigator's current page.
func (e *Effects) Location() string {
	return e.navigator.Location()
}

// Apply emits at most one notice and one navigation for o.
// Navigation failures are logged and otherwise ignored.
func (e *Effects) Apply(o Outcome) {
	if o.ShouldNotify() {
		e.notifier.Notify(o.Message)
	}
	if o.ShouldRedirect {
		if err := e.navigator.Navigate(LoginPage); err != nil {
			e.logger.Warn("redirect to login page failed", zap.Error(err))
		}
	}
}
