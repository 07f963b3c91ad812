package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

// newHTTPClientCmd creates the raw API passthrough. It covers endpoints the
// typed commands do not wrap, e.g. configuring external authentication.
func newHTTPClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "httpclient",
		Short: "Make raw authenticated API requests",
		Long: `Make raw requests against the controller API with the session header
already set. Useful for endpoints without a dedicated command.

Examples:
  coreplane httpclient get /api/v1/workers
  coreplane httpclient post /api/v2/config/auth --json-file auth.json
  coreplane httpclient put /api/v2/config/auth --json-file -   # read stdin
  coreplane httpclient delete /api/v1/workers/1`,
	}
	cmd.AddCommand(
		newHTTPVerbCmd("get", http.MethodGet, false),
		newHTTPVerbCmd("post", http.MethodPost, true),
		newHTTPVerbCmd("put", http.MethodPut, true),
		newHTTPVerbCmd("delete", http.MethodDelete, false),
	)
	return cmd
}

func newHTTPVerbCmd(name, method string, hasBody bool) *cobra.Command {
	var jsonFile string
	var pretty bool
	cmd := &cobra.Command{
		Use:   name + " PATH",
		Short: fmt.Sprintf("Make an HTTP %s request", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			if hasBody {
				data, err := readJSONBody(cmd, jsonFile)
				if err != nil {
					return err
				}
				body = data
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			raw, _, err := client.DoRaw(cmd.Context(), method, args[0], body)
			if err != nil {
				return err
			}
			return printResponse(cmd, raw, pretty)
		},
	}
	if hasBody {
		cmd.Flags().StringVar(&jsonFile, "json-file", "", "JSON request body file, - for stdin (required)")
		_ = cmd.MarkFlagRequired("json-file")
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "re-indent JSON responses")
	return cmd
}

func readJSONBody(cmd *cobra.Command, jsonFile string) (any, error) {
	var raw []byte
	var err error
	if jsonFile == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(jsonFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("request body is not valid JSON: %w", err)
	}
	return body, nil
}

// printResponse writes the response as the controller sent it, optionally
// re-indented when it is JSON.
func printResponse(cmd *cobra.Command, raw []byte, pretty bool) error {
	if len(raw) == 0 {
		return nil
	}
	out := cmd.OutOrStdout()
	if pretty {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err == nil {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(decoded)
		}
	}
	_, err := fmt.Fprintf(out, "%s\n", raw)
	return err
}
