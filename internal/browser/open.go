// Package browser moves the user between pages of the web front end: it
// tracks the current page and opens pages in the system browser.
package browser

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Open opens url in the user's default browser. $BROWSER, when set, wins.
func Open(url string) error {
	cmd, err := command(runtime.GOOS, os.Getenv("BROWSER"), url)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("browser.Open: %w", err)
	}
	go cmd.Wait() //nolint:errcheck // reap the launcher
	return nil
}

func command(goos, override, url string) (*exec.Cmd, error) {
	if override != "" {
		return exec.Command(override, url), nil
	}
	switch goos {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}
