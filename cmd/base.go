package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/coreplane-io/coreplane/internal/output"
	"github.com/coreplane-io/coreplane/internal/platform"
	"github.com/coreplane-io/coreplane/internal/wait"
)

// listFlags are the shared rendering flags of list commands.
type listFlags struct {
	output  string
	columns string
	query   string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "table",
		"output format: table, text, json or json-pp")
	cmd.Flags().StringVar(&f.columns, "columns", "",
		"comma-separated column names, or ALL (default: the resource's standard columns)")
	cmd.Flags().StringVar(&f.query, "query", "",
		"filter expression applied to the raw records before column selection")
}

// getFlags are the rendering flags of single-record get commands.
type getFlags struct {
	output string
}

func (f *getFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "json-pp",
		"output format: json, json-pp or yaml")
}

// renderList validates the flags against the resource schema and renders
// the records to the command's stdout.
func renderList(cmd *cobra.Command, typ platform.ResourceType, records []platform.Record, flags listFlags) error {
	format, err := output.ParseFormat(flags.output)
	if err != nil {
		return err
	}
	requested := typ.DefaultFields
	if flags.columns != "" {
		requested = splitColumns(flags.columns)
	}
	columns, err := output.SelectColumns(typ.Fields, requested)
	if err != nil {
		return err
	}

	raw := make([]map[string]any, len(records))
	for i, r := range records {
		raw[i] = map[string]any(r)
	}
	return output.RenderList(cmd.OutOrStdout(), raw, output.ListOptions{
		Format:  format,
		Columns: columns,
		Query:   flags.query,
	})
}

// renderRecord renders one record in a get-capable format.
func renderRecord(cmd *cobra.Command, record platform.Record, flags getFlags) error {
	format, err := output.ParseFormat(flags.output)
	if err != nil {
		return err
	}
	return output.RenderRecord(cmd.OutOrStdout(), map[string]any(record), format)
}

func splitColumns(columns string) []string {
	parts := strings.Split(columns, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// waitSeconds converts a --wait-for-*-sec flag value to a wait timeout.
func waitSeconds(secs int) time.Duration {
	return time.Duration(secs) * time.Second
}

// reportWait turns a wait result into a command outcome: quiet success when
// the target was reached, an error naming the observed state otherwise.
func reportWait(result wait.Result, what string) error {
	switch result.Outcome {
	case wait.ReachedTarget:
		return nil
	case wait.ObservedFailure:
		return fmt.Errorf("%s entered failure status %q", what, result.Status)
	case wait.TimedOut:
		if result.Status != "" {
			return fmt.Errorf("timed out waiting for %s, last status %q", what, result.Status)
		}
		return fmt.Errorf("timed out waiting for %s", what)
	default:
		return fmt.Errorf("unexpected wait outcome for %s: %s", what, result.Outcome)
	}
}
