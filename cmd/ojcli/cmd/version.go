package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information. Populated at build time via -ldflags.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit, and build date of ojcli.`,
		Args:  cobra.NoArgs,
		// Version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ojcli %s\n", Version)                                 //nolint:errcheck
			fmt.Fprintf(out, "  Commit:     %s\n", Commit)                          //nolint:errcheck
			fmt.Fprintf(out, "  Built:      %s\n", BuildDate)                       //nolint:errcheck
			fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())               //nolint:errcheck
			fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH) //nolint:errcheck
		},
	}
}
