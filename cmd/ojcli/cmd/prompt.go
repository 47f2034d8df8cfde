package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// prompter reads answers from stdin, one line at a time.
type prompter struct {
	reader       *bufio.Reader
	w            io.Writer
	interactive  bool
	readPassword func() ([]byte, error)
}

func (c *cli) prompter() *prompter {
	return &prompter{
		reader:       bufio.NewReader(c.opts.Stdin),
		w:            c.opts.Stderr,
		interactive:  c.opts.Interactive(),
		readPassword: c.opts.ReadPassword,
	}
}

// text prints label and reads one trimmed line. A final line without a
// newline is accepted.
func (p *prompter) text(label string) (string, error) {
	if _, err := fmt.Fprint(p.w, label+": "); err != nil {
		return "", err
	}
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// password reads a password without echo on a terminal, or as a plain line
// when stdin is piped.
func (p *prompter) password() (string, error) {
	if !p.interactive {
		return p.text("Password")
	}
	if _, err := fmt.Fprint(p.w, "Password: "); err != nil {
		return "", err
	}
	pw, err := p.readPassword()
	fmt.Fprintln(p.w) //nolint:errcheck
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

// credentials fills in whichever of username and password is empty.
func (p *prompter) credentials(username, password string) (string, string, error) {
	var err error
	if username == "" {
		if username, err = p.text("Username"); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = p.password(); err != nil {
			return "", "", err
		}
	}
	if username == "" || password == "" {
		return "", "", errors.New("username and password are required")
	}
	return username, password, nil
}
