package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
)

// cookiesKey is the storage key the jar mirrors its cookies into.
const cookiesKey = "cookies"

// KeyValue is the persistent storage the jar writes through to.
type KeyValue interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitzero"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"httpOnly,omitempty"`
}

func (sc storedCookie) expired(now time.Time) bool {
	return !sc.Expires.IsZero() && !sc.Expires.After(now)
}

// PersistentJar is an http.CookieJar that survives process restarts, so the
// server-side session cookie travels with requests made by later runs.
type PersistentJar struct {
	mu     sync.Mutex
	jar    *cookiejar.Jar
	apiURL *url.URL
	kv     KeyValue
	logger *zap.Logger
	now    func() time.Time

	// attrs remembers what cookiejar.Cookies does not return, by cookie name.
	attrs map[string]storedCookie
}

// NewPersistentJar restores cookies previously stored for apiURL.
func NewPersistentJar(ctx context.Context, apiURL string, kv KeyValue, logger *zap.Logger) (*PersistentJar, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("client.NewPersistentJar: parse api url: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("client.NewPersistentJar: %w", err)
	}
	pj := &PersistentJar{
		jar:    jar,
		apiURL: u,
		kv:     kv,
		logger: logger,
		now:    time.Now,
		attrs:  map[string]storedCookie{},
	}

	raw, ok, err := kv.GetItem(ctx, cookiesKey)
	if err != nil {
		return nil, fmt.Errorf("client.NewPersistentJar: load cookies: %w", err)
	}
	if !ok {
		return pj, nil
	}
	var stored []storedCookie
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		// Corrupt entries are dropped rather than blocking startup.
		logger.Warn("discarding unreadable stored cookies", zap.Error(err))
		return pj, nil
	}
	now := pj.now()
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		if sc.expired(now) {
			continue
		}
		if sc.Path == "" {
			sc.Path = "/"
		}
		pj.attrs[sc.Name] = sc
		cookies = append(cookies, &http.Cookie{
			Name:     sc.Name,
			Value:    sc.Value,
			Path:     sc.Path,
			Expires:  sc.Expires,
			Secure:   sc.Secure,
			HttpOnly: sc.HTTPOnly,
		})
	}
	jar.SetCookies(u, cookies)
	return pj, nil
}

func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)
	now := j.now()
	for _, c := range cookies {
		j.attrs[c.Name] = attrsOf(c, now)
	}
	if err := j.persist(context.Background()); err != nil {
		j.logger.Warn("persist cookies failed", zap.Error(err))
	}
}

// Clear forgets every cookie, in memory and in storage.
func (j *PersistentJar) Clear(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("client.PersistentJar.Clear: %w", err)
	}
	j.jar = jar
	j.attrs = map[string]storedCookie{}
	if err := j.kv.RemoveItem(ctx, cookiesKey); err != nil {
		return fmt.Errorf("client.PersistentJar.Clear: %w", err)
	}
	return nil
}

// persist must be called with j.mu held.
func (j *PersistentJar) persist(ctx context.Context) error {
	current := j.jar.Cookies(j.apiURL)
	if len(current) == 0 {
		return j.kv.RemoveItem(ctx, cookiesKey)
	}
	stored := make([]storedCookie, 0, len(current))
	for _, c := range current {
		sc, ok := j.attrs[c.Name]
		if !ok {
			sc = storedCookie{Name: c.Name, Path: "/"}
		}
		sc.Value = c.Value
		stored = append(stored, sc)
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal cookies: %w", err)
	}
	return j.kv.SetItem(ctx, cookiesKey, string(data))
}

// attrsOf resolves Max-Age into an absolute expiry. A zero Expires means a
// session cookie, which is kept until Clear.
func attrsOf(c *http.Cookie, now time.Time) storedCookie {
	sc := storedCookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HttpOnly,
	}
	switch {
	case c.MaxAge > 0:
		sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second).UTC()
	case c.MaxAge < 0:
		sc.Expires = now
	case !c.Expires.IsZero():
		sc.Expires = c.Expires.UTC()
	}
	if sc.Path == "" {
		sc.Path = "/"
	}
	return sc
}
