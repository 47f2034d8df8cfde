package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eduoj/ojcli/pkg/domain"
)

// maxNotices bounds the notice history kept by the dashboard.
const maxNotices = 50

// SessionController is the part of the session store the dashboard drives.
type SessionController interface {
	Session() domain.Session
	Refresh(ctx context.Context) error
	Terminate(ctx context.Context) error
}

// Navigator opens pages of the web front end.
type Navigator interface {
	Location() string
	Navigate(path string) error
}

// sessionMsg carries the session after a refresh or logout.
type sessionMsg struct {
	session domain.Session
	action  string
	err     error
}

// noticeMsg carries one notice read from the notifier channel.
type noticeMsg Notice

// statusMsg is a transient one-line status.
type statusMsg string

// App is the session dashboard model.
type App struct {
	store    SessionController
	nav      Navigator
	notices  <-chan Notice
	copyText func(string) error
	onLogout func(context.Context) error
	timeout  time.Duration

	session  domain.Session
	history  []Notice
	status   string
	busy     bool
	width    int
	height   int
	frame    int // logo shimmer animation frame
	quitting bool
}

// AppOption configures an App.
type AppOption func(*App)

// WithNotices feeds notices from ch into the dashboard.
func WithNotices(ch <-chan Notice) AppOption {
	return func(a *App) { a.notices = ch }
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(write func(string) error) AppOption {
	return func(a *App) { a.copyText = write }
}

// WithLogoutHook runs fn after the store is terminated, e.g. to drop the
// stored session cookie.
func WithLogoutHook(fn func(context.Context) error) AppOption {
	return func(a *App) { a.onLogout = fn }
}

// NewApp creates the dashboard for store.
func NewApp(store SessionController, nav Navigator, opts ...AppOption) App {
	a := App{
		store:    store,
		nav:      nav,
		copyText: clipboard.WriteAll,
		timeout:  15 * time.Second,
		session:  store.Session(),
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), a.waitForNotice())
}

func (a App) waitForNotice() tea.Cmd {
	ch := a.notices
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

func (a App) refresh() tea.Cmd {
	store, timeout := a.store, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := store.Refresh(ctx)
		return sessionMsg{session: store.Session(), action: "refresh", err: err}
	}
}

func (a App) logout() tea.Cmd {
	store, hook, timeout := a.store, a.onLogout, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := store.Terminate(ctx)
		if hook != nil {
			err = errors.Join(err, hook(ctx))
		}
		return sessionMsg{session: store.Session(), action: "logout", err: err}
	}
}

func (a App) openLogin() tea.Cmd {
	nav := a.nav
	return func() tea.Msg {
		if nav == nil {
			return statusMsg("no browser configured")
		}
		if err := nav.Navigate("/login"); err != nil {
			return statusMsg("open login page: " + err.Error())
		}
		return statusMsg("login page opened")
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case noticeMsg:
		a.history = append(a.history, Notice(msg))
		if len(a.history) > maxNotices {
			a.history = a.history[len(a.history)-maxNotices:]
		}
		return a, a.waitForNotice()

	case sessionMsg:
		a.busy = false
		a.session = msg.session
		switch {
		case msg.action == "logout" && msg.err != nil:
			a.status = "logged out locally (" + msg.err.Error() + ")"
		case msg.action == "logout":
			a.status = "logged out"
		case msg.session.IsAuthenticated:
			a.status = "session refreshed"
		default:
			a.status = "not logged in"
		}
		return a, nil

	case statusMsg:
		a.status = string(msg)
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			a.quitting = true
			return a, tea.Quit
		case "r":
			if a.busy {
				return a, nil
			}
			a.busy = true
			a.status = "refreshing..."
			return a, a.refresh()
		case "l":
			if a.busy {
				return a, nil
			}
			a.busy = true
			a.status = "logging out..."
			return a, a.logout()
		case "o":
			return a, a.openLogin()
		case "c":
			if a.session.User == nil {
				a.status = "nothing to copy"
				return a, nil
			}
			if err := a.copyText(a.session.User.Username); err != nil {
				a.status = "copy failed: " + err.Error()
				return a, nil
			}
			a.status = "username copied"
			return a, nil
		}
	}
	return a, nil
}

func (a App) View() string {
	if a.quitting {
		return ""
	}

	logo := renderShimmerLogo(a.frame)
	logoPad := (a.width - lipgloss.Width(logo)) / 2
	if logoPad < 0 {
		logoPad = 0
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", logoPad) + logo + "\n\n")

	b.WriteString("  " + sectionHeaderStyle.Render("SESSION") + "\n")
	b.WriteString(renderSession(a.session))
	if a.nav != nil {
		fmt.Fprintf(&b, "  %s %s\n", metaStyle.Render("page"), normalStyle.Render(a.nav.Location()))
	}
	b.WriteString("\n")

	b.WriteString("  " + sectionHeaderStyle.Render("NOTICES") + "\n")
	b.WriteString(renderNotices(a.history, a.width, 8))

	// Chrome: header(2) + status(1) + help(1)
	body := strings.TrimRight(truncateToHeight(b.String(), a.height-2), "\n")

	status := ""
	if a.status != "" {
		status = " " + dimStyle.Render(a.status)
	}
	help := " " + helpEntry("r", "refresh") + "  " + helpEntry("l", "logout") + "  " +
		helpEntry("o", "login page") + "  " + helpEntry("c", "copy username") + "  " + helpEntry("q", "quit")

	return fmt.Sprintf("%s\n\n%s\n%s", body, status, help)
}

func renderSession(s domain.Session) string {
	if !s.IsAuthenticated || s.User == nil {
		return "  " + dimStyle.Render("anonymous") + "  " + metaStyle.Render("press o to log in in the browser, then r") + "\n"
	}
	u := s.User
	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s  %s\n", okStyle.Render("●"), selectedStyle.Render(u.Username), RoleBadge(u.Role))
	fmt.Fprintf(&b, "  %s %s\n", metaStyle.Render("id"), normalStyle.Render(fmt.Sprintf("%d", u.ID)))
	if u.Description != "" {
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render(truncStr(u.Description, 70)))
	}
	if !u.Enabled {
		fmt.Fprintf(&b, "  %s\n", noticeTextStyle.Render("account disabled"))
	}
	if u.CreatedAt != "" {
		fmt.Fprintf(&b, "  %s %s\n", metaStyle.Render("since"), accentStyle.Render(u.CreatedAt))
	}
	return b.String()
}
