// Package cmd provides the CLI commands for ojcli.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/eduoj/ojcli/internal/config"
	"github.com/eduoj/ojcli/internal/tui"
)

// Options holds the streams and system hooks the commands run against.
// Zero fields fall back to the process defaults.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// OpenURL launches the system browser.
	OpenURL func(url string) error
	// Clipboard writes text to the system clipboard.
	Clipboard func(text string) error
	// Interactive reports whether stdout is a terminal.
	Interactive func() bool
	// ReadPassword reads a password without echo.
	ReadPassword func() ([]byte, error)
	// RunDashboard runs the session dashboard until the user quits.
	RunDashboard func(app tui.App) error
}

func (o *Options) setDefaults() {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Interactive == nil {
		o.Interactive = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	}
	if o.ReadPassword == nil {
		o.ReadPassword = func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) }
	}
	if o.RunDashboard == nil {
		o.RunDashboard = func(app tui.App) error {
			_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
			return err
		}
	}
}

// cli carries state shared by every command of one invocation.
type cli struct {
	opts    Options
	cfgFile string
	cfg     *config.Config
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd(Options{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd(opts Options) *cobra.Command {
	opts.setDefaults()
	c := &cli{opts: opts}

	root := &cobra.Command{
		Use:   "ojcli",
		Short: "ojcli - terminal client for the online judge",
		Long: `ojcli talks to the online judge API with your browser session.

Run without arguments to check your session: anonymous users get a greeting,
signed-in users get the session dashboard.

Configuration:
  Config is loaded from ojcli.yaml in the current directory or $HOME/.ojcli/.
  A .env file in the current directory is loaded first.

  Environment variables override config values with the OJ_ prefix.
  Example: OJ_MODE=production OJ_API_URL=https://oj.example.com/api`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.loadConfig,
		RunE:              c.runRoot,
	}
	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default: ./ojcli.yaml)")
	flags.String("mode", "", "development or production")
	flags.String("api-url", "", "API root in production mode")
	flags.String("storage", "", "local storage driver: file, sqlite or redis")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.Bool("no-browser", false, "never launch the browser")

	root.AddCommand(
		c.newLoginCmd(),
		c.newRegisterCmd(),
		c.newLogoutCmd(),
		c.newWhoamiCmd(),
		c.newGetCmd(),
		c.newPostCmd(),
		newVersionCmd(),
	)
	return root
}

func (c *cli) loadConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	v := config.NewViper(c.cfgFile)
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	flags := cmd.Flags()
	for key, name := range map[string]string{
		"mode":           "mode",
		"api_url":        "api-url",
		"storage.driver": "storage",
		"log.level":      "log-level",
	} {
		if f := flags.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}
	if noBrowser, _ := flags.GetBool("no-browser"); noBrowser {
		v.Set("open_browser", false)
	}
	return nil
}

// runRoot refreshes the session and greets anonymous users or opens the
// dashboard for signed-in ones.
func (c *cli) runRoot(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()
	a, err := c.newApp(ctx, "/")
	if err != nil {
		return err
	}
	defer func() { err = closeApp(a, err) }()

	if err := a.store.Refresh(ctx); err != nil {
		a.logger.Debug("session refresh failed", zap.Error(err))
	}
	sess := a.store.Session()
	if !sess.IsAuthenticated {
		printGreeting(c.opts.Stdout)
		return nil
	}
	if !c.opts.Interactive() {
		printSession(c.opts.Stdout, sess)
		return nil
	}
	return c.runDashboard(ctx, a)
}

func (c *cli) runDashboard(_ context.Context, a *app) error {
	ch := tui.NewChannelNotifier(32)
	restore := a.notices.Set(ch)
	defer restore()

	dash := tui.NewApp(a.store, a.nav,
		tui.WithNotices(ch.C()),
		tui.WithClipboard(c.clipboard()),
		tui.WithLogoutHook(a.jar.Clear),
	)
	if err := c.opts.RunDashboard(dash); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
