// Package session holds the client's view of the signed-in user and keeps it
// consistent with the server and the persisted login flag.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/eduoj/ojcli/pkg/domain"
)

// LoginPage is where Terminate sends the user.
const LoginPage = "/login"

// ErrNoUser is returned by CurrentUser for an anonymous session.
var ErrNoUser = errors.New("no user signed in")

// IdentityFetcher asks the server who the caller is.
type IdentityFetcher interface {
	GetMe(ctx context.Context) (*domain.User, error)
}

// FlagStore is the persisted login flag.
type FlagStore interface {
	Present(ctx context.Context) (bool, error)
	Clear(ctx context.Context) error
}

// Navigator moves the user to another page.
type Navigator interface {
	Navigate(path string) error
}

// Store is the session store. The zero value is not usable; use New.
//
// Operations are not serialised against each other: concurrent refreshes race
// and the last one to finish wins.
type Store struct {
	fetcher IdentityFetcher
	flag    FlagStore
	nav     Navigator
	logger  *zap.Logger

	mu      sync.RWMutex
	current domain.Session

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(domain.Session)
}

// New returns an anonymous store.
func New(fetcher IdentityFetcher, flag FlagStore, nav Navigator, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		fetcher: fetcher,
		flag:    flag,
		nav:     nav,
		logger:  logger,
		current: domain.Anonymous(),
		subs:    make(map[int]func(domain.Session)),
	}
}

// Session returns a snapshot of the current state.
func (s *Store) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Session{
		User:            s.current.User.Clone(),
		IsAuthenticated: s.current.IsAuthenticated,
	}
}

// CurrentUser returns the signed-in user or ErrNoUser.
func (s *Store) CurrentUser() (*domain.User, error) {
	sess := s.Session()
	if !sess.IsAuthenticated || sess.User == nil {
		return nil, ErrNoUser
	}
	return sess.User, nil
}

// Refresh re-fetches the identity when the login flag is present. Without the
// flag it returns at once and touches nothing.
//
// Any fetch failure leaves the store anonymous and clears the flag. The
// failure is still returned so the caller can log it.
func (s *Store) Refresh(ctx context.Context) error {
	present, err := s.flag.Present(ctx)
	if err != nil {
		return fmt.Errorf("session.Refresh: read login flag: %w", err)
	}
	if !present {
		return nil
	}

	user, err := s.fetcher.GetMe(ctx)
	if err == nil && user == nil {
		err = ErrNoUser
	}
	if err != nil {
		s.set(domain.Anonymous())
		s.logger.Debug("identity fetch failed, session cleared", zap.Error(err))
		if clearErr := s.flag.Clear(ctx); clearErr != nil {
			s.logger.Warn("clear login flag failed", zap.Error(clearErr))
			err = errors.Join(err, clearErr)
		}
		return fmt.Errorf("session.Refresh: %w", err)
	}

	s.set(domain.Session{User: user.Clone(), IsAuthenticated: true})
	s.logger.Debug("session refreshed", zap.String("username", user.Username))
	return nil
}

// Terminate ends the session locally: the store becomes anonymous, the flag is
// cleared and the user is sent to the login page. No request is made.
func (s *Store) Terminate(ctx context.Context) error {
	s.set(domain.Anonymous())

	var errs []error
	if err := s.flag.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear login flag: %w", err))
	}
	if s.nav != nil {
		if err := s.nav.Navigate(LoginPage); err != nil {
			errs = append(errs, fmt.Errorf("navigate to %s: %w", LoginPage, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("session.Terminate: %w", err)
	}
	return nil
}

// Subscribe registers fn to receive the new state after every write. The
// returned func removes the subscription.
func (s *Store) Subscribe(fn func(domain.Session)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) set(next domain.Session) {
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	s.subMu.Lock()
	fns := make([]func(domain.Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(domain.Session{User: next.User.Clone(), IsAuthenticated: next.IsAuthenticated})
	}
}
