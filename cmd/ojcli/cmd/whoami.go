package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eduoj/ojcli/internal/tui"
	"github.com/eduoj/ojcli/pkg/domain"
)

// ErrNotLoggedIn is returned by whoami for an anonymous session.
var ErrNotLoggedIn = errors.New("not logged in")

func (c *cli) newWhoamiCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
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

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(sess); err != nil {
					return fmt.Errorf("encode session: %w", err)
				}
			} else {
				printSession(out, sess)
			}
			if !sess.IsAuthenticated {
				return ErrNotLoggedIn
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the session as JSON")
	return cmd
}

func printSession(w io.Writer, s domain.Session) {
	if !s.IsAuthenticated || s.User == nil {
		fmt.Fprintln(w, "Not logged in.") //nolint:errcheck
		return
	}
	u := s.User
	fmt.Fprintf(w, "%s %s\n", u.Username, tui.RoleBadge(u.Role)) //nolint:errcheck
	fmt.Fprintf(w, "  id:      %d\n", u.ID)                      //nolint:errcheck
	if u.Description != "" {
		fmt.Fprintf(w, "  about:   %s\n", u.Description) //nolint:errcheck
	}
	if role, ok := domain.Roles[u.Role]; ok {
		fmt.Fprintf(w, "  role:    %s\n", role.Label) //nolint:errcheck
	}
	if !u.Enabled {
		fmt.Fprintln(w, "  status:  disabled") //nolint:errcheck
	}
	if u.CreatedAt != "" {
		fmt.Fprintf(w, "  joined:  %s\n", u.CreatedAt) //nolint:errcheck
	}
}
