package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eduoj/ojcli/pkg/client"
	"github.com/eduoj/ojcli/pkg/domain"
)

func (c *cli) newLoginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with username and password",
		Long: `Log in with username and password. Missing credentials are prompted for.

The session cookie is kept in local storage so later commands reuse it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			user, pass, err := c.prompter().credentials(username, password)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := c.newApp(ctx, client.LoginPage)
			if err != nil {
				return err
			}
			defer func() { err = closeApp(a, err) }()

			resp, err := a.api.Login(ctx, domain.LoginRequest{Username: user, Password: pass})
			if err != nil {
				return fmt.Errorf("login failed: %w", describe(err))
			}
			if err := a.flag.Set(ctx); err != nil {
				return err
			}
			a.nav.SetLocation("/")
			if err := a.store.Refresh(ctx); err != nil {
				a.logger.Warn("session refresh after login failed", zap.Error(err))
			}

			name := user
			if resp.User != nil && resp.User.Username != "" {
				name = resp.User.Username
			}
			if u, uerr := a.store.CurrentUser(); uerr == nil {
				name = u.Username
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", name) //nolint:errcheck
			if resp.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), resp.Message) //nolint:errcheck
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	return cmd
}

func (c *cli) newRegisterCmd() *cobra.Command {
	var username, password, description string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			user, pass, err := c.prompter().credentials(username, password)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := c.newApp(ctx, client.RegisterPage)
			if err != nil {
				return err
			}
			defer func() { err = closeApp(a, err) }()

			resp, err := a.api.Register(ctx, domain.RegisterRequest{
				Username:    user,
				Password:    pass,
				Description: description,
			})
			if err != nil {
				return fmt.Errorf("register failed: %w", describe(err))
			}
			a.nav.SetLocation(client.LoginPage)

			out := cmd.OutOrStdout()
			if resp.Message != "" {
				fmt.Fprintln(out, resp.Message) //nolint:errcheck
			}
			fmt.Fprintf(out, "Registered %s. Log in with: ojcli login -u %s\n", user, user) //nolint:errcheck
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "profile description")
	return cmd
}

func (c *cli) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local session",
		Long: `Forget the local session: the login flag and the stored session cookie are
removed and the login page is opened.

The server is not contacted; the server-side session expires on its own.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			a, err := c.newApp(ctx, "/")
			if err != nil {
				return err
			}
			defer func() { err = closeApp(a, err) }()

			if err := a.store.Terminate(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err) //nolint:errcheck
			}
			if err := a.jar.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.") //nolint:errcheck
			return nil
		},
	}
}

// describe replaces an HTTP error by the server's own message when it sent one.
func describe(err error) error {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return errors.New(httpErr.Message)
	}
	return err
}
