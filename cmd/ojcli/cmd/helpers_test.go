package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/eduoj/ojcli/internal/localstore"
	"github.com/eduoj/ojcli/internal/tui"
	"github.com/eduoj/ojcli/pkg/domain"
)

const (
	sessionCookie = "JSESSIONID"
	sessionValue  = "abc"
	webURL        = "http://web.test"
)

// backend mimics the OJ API behind the /api prefix.
type backend struct {
	*httptest.Server
	mu    sync.Mutex
	calls []string
}

func (b *backend) record(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, r.Method+" "+r.URL.Path)
}

// Calls returns the requests received so far, as "METHOD /path".
func (b *backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func errorBody(code int, message string) map[string]any {
	return map[string]any{
		"status":    code,
		"error":     http.StatusText(code),
		"message":   message,
		"timestamp": "2025-01-01T00:00:00",
	}
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	authed := func(r *http.Request) bool {
		c, err := r.Cookie(sessionCookie)
		return err == nil && c.Value == sessionValue
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/user/login", func(w http.ResponseWriter, r *http.Request) {
		var req domain.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, errorBody(401, "Bad credentials"))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: sessionValue, Path: "/"})
		writeJSON(w, http.StatusOK, domain.AuthResponse{
			User:    &domain.User{ID: 1, Username: req.Username, Role: "USER", Enabled: true},
			Message: "login success",
		})
	})
	mux.HandleFunc("POST /api/user/register", func(w http.ResponseWriter, r *http.Request) {
		var req domain.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(400, "malformed request"))
			return
		}
		if req.Username == "taken" {
			writeJSON(w, http.StatusBadRequest, errorBody(400, "username already exists"))
			return
		}
		writeJSON(w, http.StatusOK, domain.AuthResponse{
			User:    &domain.User{ID: 2, Username: req.Username, Description: req.Description, Role: "USER", Enabled: true},
			Message: "register success",
		})
	})
	mux.HandleFunc("GET /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			writeJSON(w, http.StatusUnauthorized, errorBody(401, "Full authentication is required"))
			return
		}
		writeJSON(w, http.StatusOK, domain.User{
			ID: 1, Username: "a", Description: "first user", Role: "ADMIN", Enabled: true, CreatedAt: "2025-01-01T00:00:00",
		})
	})
	mux.HandleFunc("GET /api/orders", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			writeJSON(w, http.StatusUnauthorized, errorBody(401, "Full authentication is required"))
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 10, "status": "ACCEPTED"}})
	})
	mux.HandleFunc("GET /api/boom", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, errorBody(500, "db down"))
	})
	mux.HandleFunc("POST /api/echo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.Copy(w, r.Body) //nolint:errcheck
	})

	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

// harness runs the CLI against a backend with its own config and storage.
type harness struct {
	t           *testing.T
	dir         string
	cfgPath     string
	storagePath string

	stdin       string
	interactive bool
	password    string

	stdout bytes.Buffer
	stderr bytes.Buffer

	opened     []string
	copied     []string
	dashboards []string

	// dashboardKeys are pressed in order before the dashboard is captured.
	dashboardKeys []string
}

func newHarness(t *testing.T, apiOrigin string, extraConfig ...string) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		t:           t,
		dir:         dir,
		cfgPath:     filepath.Join(dir, "ojcli.yaml"),
		storagePath: filepath.Join(dir, "storage.json"),
	}
	cfg := fmt.Sprintf(`mode: development
proxy_target: %s
web_url: %s
open_browser: true
storage:
  driver: file
  path: %s
log:
  level: error
`, apiOrigin, webURL, h.storagePath)
	cfg += strings.Join(extraConfig, "")
	require.NoError(t, os.WriteFile(h.cfgPath, []byte(cfg), 0600))
	return h
}

func (h *harness) run(args ...string) error {
	h.t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()

	root := NewRootCmd(Options{
		Stdin:  strings.NewReader(h.stdin),
		Stdout: &h.stdout,
		Stderr: &h.stderr,
		OpenURL: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
		Clipboard: func(text string) error {
			h.copied = append(h.copied, text)
			return nil
		},
		Interactive:  func() bool { return h.interactive },
		ReadPassword: func() ([]byte, error) { return []byte(h.password), nil },
		RunDashboard: func(app tui.App) error {
			var m tea.Model = app
			for _, k := range h.dashboardKeys {
				var cmd tea.Cmd
				m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
				if cmd == nil {
					continue
				}
				if msg := cmd(); msg != nil {
					m, _ = m.Update(msg)
				}
			}
			h.dashboards = append(h.dashboards, m.View())
			return nil
		},
	})
	root.SetArgs(append([]string{"--config", h.cfgPath}, args...))
	return root.ExecuteContext(context.Background())
}

func (h *harness) storage() *localstore.FileStorage {
	h.t.Helper()
	s, err := localstore.NewFileStorage(h.storagePath)
	require.NoError(h.t, err)
	return s
}

func (h *harness) item(key string) (string, bool) {
	h.t.Helper()
	v, ok, err := h.storage().GetItem(context.Background(), key)
	require.NoError(h.t, err)
	return v, ok
}

func (h *harness) seed(key, value string) {
	h.t.Helper()
	require.NoError(h.t, h.storage().SetItem(context.Background(), key, value))
}

// seedSession stores the login flag and, when cookie is non-empty, a session cookie.
func (h *harness) seedSession(cookie string) {
	h.t.Helper()
	h.seed(localstore.LoginFlagKey, "true")
	if cookie != "" {
		h.seed("cookies", fmt.Sprintf(`[{"name":%q,"value":%q}]`, sessionCookie, cookie))
	}
}
