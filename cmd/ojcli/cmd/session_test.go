package cmd

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduoj/ojcli/internal/localstore"
	"github.com/eduoj/ojcli/pkg/client"
)

func TestScenarioA_NoFlagNoRequest(t *testing.T) {
	srv := newBackend(t)
	h := newHarness(t, srv.URL)

	err := h.run("whoami")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Contains(t, h.stdout.String(), "Not logged in.")
	assert.Empty(t, srv.Calls(), "refresh without the flag must not hit the network")
	assert.Empty(t, h.stderr.String())
	assert.Empty(t, h.opened)
}

func TestScenarioB_FlagAndValidSession(t *testing.T) {
	srv := newBackend(t)
	h := newHarness(t, srv.URL)
	h.seedSession(sessionValue)

	require.NoError(t, h.run("whoami"))
	out := h.stdout.String()
	assert.Contains(t, out, "a [ADMIN]")
	assert.Contains(t, out, "id:      1")
	assert.Contains(t, out, "first user")
	assert.Equal(t, []string{"GET /api/users/me"}, srv.Calls())

	flag, ok := h.item(localstore.LoginFlagKey)
	assert.True(t, ok)
	assert.Equal(t, "true", flag)
}

func TestScenarioB_JSON(t *testing.T) {
	srv := newBackend(t)
	h := newHarness(t, srv.URL)
	h.seedSession(sessionValue)

	require.NoError(t, h.run("whoami", "--json"))
	out := h.stdout.String()
	assert.Contains(t, out, `"isAuthenticated": true`)
	assert.Contains(t, out, `"username": "a"`)
}

func TestScenarioC_FlagButSessionExpired(t *testing.T) {
	srv := newBackend(t)
	h := newHarness(t, srv.URL)
	h.seedSession("")

	err := h.run("whoami")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Contains(t, h.stdout.String(), "Not logged in.")
	assert.Equal(t, []string{"GET /api/users/me"}, srv.Calls())

	_, ok := h.item(localstore.LoginFlagKey)
	assert.False(t, ok, "flag must be cleared")
	assert.Empty(t, h.stderr.String(), "identity 401 must not produce a notice")
	assert.Empty(t, h.opened, "identity 401 must not redirect")
}

func TestScenarioD_UnauthorizedRequestRedirects(t *testing.T) {
	srv := newBackend(t)
	h := newHarness(t, srv.URL)
	h.seedSession("stale")

	err := h.run("get", "/orders")
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, 401))
	assert.Contains(t, h.stderr.String(), client.MsgUnauthenticated)
	assert.Equal(t, []string{webURL + "/login"}, h.opened)
}

func TestLoginWhoamiLogout(t *testing.T) {
	srv := newBackend(t)
	h := newHarness(t, srv.URL)

	require.NoError(t, h.run("login", "-u", "a", "-p", "secret"))
	assert.Contains(t, h.stdout.String(), "Logged in as a")
	assert.Contains(t, h.stdout.String(), "login success")

	flag, ok := h.item(localstore.LoginFlagKey)
	require.True(t, ok)
	assert.Equal(t, "true", flag)
	cookies, ok := h.item("cookies")
	require.True(t, ok)
	assert.Contains(t, cookies, sessionValue)

	// A new process reuses the stored cookie.
	require.NoError(t, h.run("get", "/orders"))
	assert.Contains(t, h.stdout.String(), `"status": "ACCEPTED"`)

	require.NoError(t, h.run("logout"))
	assert.Contains(t, h.stdout.String(), "Logged out.")
	assert.Equal(t, []string{webURL + "/login"}, h.opened)
	_, ok = h.item(localstore.LoginFlagKey)
	assert.False(t, ok)
	_, ok = h.item("cookies")
	assert.False(t, ok)

	calls := len(srv.Calls())
	assert.ErrorIs(t, h.run("whoami"), ErrNotLoggedIn)
	assert.Len(t, srv.Calls(), calls, "logout leaves no flag, so whoami stays offline")
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newBackend(t)
	h := newHarness(t, srv.URL)

	err := h.run("login", "-u", "a", "-p", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad credentials")
	assert.Empty(t, h.stderr.String(), "failed login must not produce a notice")
	assert.Empty(t, h.opened)
	_, ok := h.item(localstore.LoginFlagKey)
	assert.False(t, ok)
}

func TestLoginPromptsFromStdin(t *testing.T) {
	srv := newBackend(t)
	h := newHarness(t, srv.URL)
	h.stdin = "a\nsecret\n"

	require.NoError(t, h.run("login"))
	assert.Contains(t, h.stdout.String(), "Logged in as a")
	assert.Contains(t, h.stderr.String(), "Username: ")
}

func TestLoginReadsPasswordFromTerminal(t *testing.T) {
	srv := newBackend(t)
	h := newHarness(t, srv.URL)
	h.interactive = true
	h.stdin = "a\n"
	h.password = "secret"

	require.NoError(t, h.run("login"))
	assert.Contains(t, h.stdout.String(), "Logged in as a")
}

func TestLoginMissingCredentials(t *testing.T) {
	srv := newBackend(t)
	h := newHarness(t, srv.URL)

	err := h.run("login")
	require.Error(t, err)
	assert.Empty(t, srv.Calls())
}

func TestRegister(t *testing.T) {
	srv := newBackend(t)
	h := newHarness(t, srv.URL)

	require.NoError(t, h.run("register", "-u", "bob", "-p", "pw", "-d", "hello"))
	out := h.stdout.String()
	assert.Contains(t, out, "register success")
	assert.Contains(t, out, "ojcli login -u bob")
	_, ok := h.item(localstore.LoginFlagKey)
	assert.False(t, ok, "register does not log in")
}

func TestRegisterRejected(t *testing.T) {
	srv := newBackend(t)
	h := newHarness(t, srv.URL)

	err := h.run("register", "-u", "taken", "-p", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username already exists")
	assert.Contains(t, h.stderr.String(), "username already exists")
	assert.Empty(t, h.opened)
}

func TestServerErrorNotice(t *testing.T) {
	srv := newBackend(t)
	h := newHarness(t, srv.URL)

	err := h.run("get", "/boom")
	require.Error(t, err)
	assert.Contains(t, h.stderr.String(), client.MsgServerPrefix+"db down")
	assert.Empty(t, h.opened)
}

func TestNetworkErrorNotice(t *testing.T) {
	dead := httptest.NewServer(nil)
	origin := dead.URL
	dead.Close()
	h := newHarness(t, origin)

	err := h.run("get", "/orders")
	require.Error(t, err)
	assert.Contains(t, h.stderr.String(), client.MsgNetwork)
	assert.Empty(t, h.opened)
}

func TestNoBrowserFlag(t *testing.T) {
	srv := newBackend(t)
	h := newHarness(t, srv.URL)
	h.seedSession("stale")

	require.Error(t, h.run("--no-browser", "get", "/orders"))
	assert.Contains(t, h.stderr.String(), client.MsgUnauthenticated)
	assert.Empty(t, h.opened)
}
