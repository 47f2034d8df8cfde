package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Send a GET request to the API and print the response",
		Example: `  ojcli get /users/me
  ojcli get "/problems?page=1"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.request(cmd, http.MethodGet, args[0], nil)
		},
	}
}

func (c *cli) newPostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post <path> [json|-]",
		Short: "Send a POST request with a JSON body and print the response",
		Long: `Send a POST request with a JSON body and print the response.
The body is taken from the second argument, or from stdin when it is "-".`,
		Example: `  ojcli post /submissions '{"problemId":1,"language":"go"}'
  ojcli post /submissions - < body.json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := "{}"
			if len(args) == 2 {
				raw = args[1]
			}
			if raw == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read body: %w", err)
				}
				raw = string(data)
			}
			raw = strings.TrimSpace(raw)
			if !json.Valid([]byte(raw)) {
				return errors.New("body is not valid JSON")
			}
			return c.request(cmd, http.MethodPost, args[0], json.RawMessage(raw))
		},
	}
}

// request runs one API call on the page named by path and prints the body.
func (c *cli) request(cmd *cobra.Command, method, path string, body any) (err error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	ctx := cmd.Context()
	a, err := c.newApp(ctx, pagePath(path))
	if err != nil {
		return err
	}
	defer func() { err = closeApp(a, err) }()

	r, err := a.api.Do(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	out := cmd.OutOrStdout()
	if len(r.Body) == 0 {
		return nil
	}
	var pretty bytes.Buffer
	if json.Indent(&pretty, r.Body, "", "  ") == nil {
		pretty.WriteByte('\n')
		_, err = pretty.WriteTo(out)
		return err
	}
	_, err = out.Write(r.Body)
	return err
}
