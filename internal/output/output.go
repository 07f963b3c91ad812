package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"sigs.k8s.io/yaml"

	"github.com/coreplane-io/coreplane/internal/query"
)

// Sentinel errors, matched with errors.Is.
var (
	// ErrInvalidArgument indicates a bad output mode or an unknown column.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidQuery indicates a malformed query expression.
	ErrInvalidQuery = errors.New("invalid query")
)

// Format selects how records are rendered.
type Format string

const (
	FormatTable      Format = "table"
	FormatText       Format = "text"
	FormatJSON       Format = "json"
	FormatJSONPretty Format = "json-pp"
	FormatYAML       Format = "yaml"
)

// ParseFormat validates an --output flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatText, FormatJSON, FormatJSONPretty, FormatYAML:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: unknown output format %q", ErrInvalidArgument, s)
}

// Column maps a display name to a dotted path into the raw record.
type Column struct {
	Name string
	Path string
}

// ColumnsAll selects every column a resource declares.
const ColumnsAll = "ALL"

// SelectColumns resolves a user supplied column list against the declared
// columns of a resource, preserving the requested order. The single sentinel
// value ALL selects everything. An unknown name is an error.
func SelectColumns(all []Column, requested []string) ([]Column, error) {
	if len(requested) == 1 && requested[0] == ColumnsAll {
		return all, nil
	}
	byName := make(map[string]Column, len(all))
	for _, col := range all {
		byName[col.Name] = col
	}
	selected := make([]Column, 0, len(requested))
	for _, name := range requested {
		col, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidArgument, name)
		}
		selected = append(selected, col)
	}
	return selected, nil
}

// ListOptions control one rendering of a resource list.
type ListOptions struct {
	Format  Format
	Columns []Column
	Query   string
}

// RenderList writes exactly one rendering of records to w. The input slice is
// never modified. With a query, the expression is evaluated against the raw
// records first and its result replaces them; column selection then applies
// to any surviving records.
func RenderList(w io.Writer, records []map[string]any, opts ListOptions) error {
	var buf bytes.Buffer

	data := rawList(records)
	if opts.Query != "" {
		compiled, err := query.Compile(opts.Query)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		result := compiled.Eval(data)
		if err := renderQueried(&buf, result, opts); err != nil {
			return err
		}
		_, err = w.Write(buf.Bytes())
		return err
	}

	switch opts.Format {
	case FormatTable:
		renderTable(&buf, records, opts.Columns, true)
	case FormatText:
		renderTable(&buf, records, opts.Columns, false)
	case FormatJSON:
		if err := encodeJSON(&buf, projectRecords(records, opts.Columns), false); err != nil {
			return err
		}
	case FormatJSONPretty:
		if err := encodeJSON(&buf, projectRecords(records, opts.Columns), true); err != nil {
			return err
		}
	case FormatYAML:
		out, err := yaml.Marshal(projectRecords(records, opts.Columns))
		if err != nil {
			return err
		}
		buf.Write(out)
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidArgument, string(opts.Format))
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// RenderRecord writes a single record, defaulting to YAML in the CLI.
func RenderRecord(w io.Writer, record map[string]any, format Format) error {
	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		if err := encodeJSON(&buf, record, false); err != nil {
			return err
		}
	case FormatJSONPretty:
		if err := encodeJSON(&buf, record, true); err != nil {
			return err
		}
	case FormatYAML:
		out, err := yaml.Marshal(record)
		if err != nil {
			return err
		}
		buf.Write(out)
	default:
		return fmt.Errorf("%w: unknown output format %q for a single resource", ErrInvalidArgument, string(format))
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// renderQueried renders the result of a query expression, which may be a
// list of records, a list of scalars, or a single scalar.
func renderQueried(buf *bytes.Buffer, result any, opts ListOptions) error {
	if records, ok := asRecords(result); ok {
		columns := queriedColumns(records, opts.Columns)
		records = projectQueried(records, opts.Columns)
		switch opts.Format {
		case FormatTable:
			renderTable(buf, records, columns, true)
			return nil
		case FormatText:
			renderTable(buf, records, columns, false)
			return nil
		case FormatJSON:
			return encodeJSON(buf, records, false)
		case FormatJSONPretty:
			return encodeJSON(buf, records, true)
		case FormatYAML:
			out, err := yaml.Marshal(records)
			if err != nil {
				return err
			}
			buf.Write(out)
			return nil
		}
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidArgument, string(opts.Format))
	}

	switch opts.Format {
	case FormatTable, FormatText:
		writeTextValue(buf, result)
		return nil
	case FormatJSON:
		return encodeJSON(buf, result, false)
	case FormatJSONPretty:
		return encodeJSON(buf, result, true)
	case FormatYAML:
		out, err := yaml.Marshal(result)
		if err != nil {
			return err
		}
		buf.Write(out)
		return nil
	}
	return fmt.Errorf("%w: unknown output format %q", ErrInvalidArgument, string(opts.Format))
}

// asRecords reports whether a query result is still a list of records.
func asRecords(result any) ([]map[string]any, bool) {
	arr, ok := result.([]any)
	if !ok {
		return nil, false
	}
	records := make([]map[string]any, 0, len(arr))
	for _, elem := range arr {
		m, ok := elem.(map[string]any)
		if !ok {
			return nil, false
		}
		records = append(records, m)
	}
	return records, true
}

// projectQueried restricts queried records to the selected columns. Records
// surviving a pure filter still have the raw shape, so each column resolves
// through its dotted path; a query that reshaped the records keys them by
// plain column name instead, which is the fallback.
func projectQueried(records []map[string]any, columns []Column) []map[string]any {
	if len(columns) == 0 {
		return records
	}
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		projected := make(map[string]any, len(columns))
		for _, col := range columns {
			v := Lookup(rec, col.Path)
			if v == nil && col.Path != col.Name {
				v = Lookup(rec, col.Name)
			}
			projected[col.Name] = v
		}
		out = append(out, projected)
	}
	return out
}

// queriedColumns derives table columns for queried records: the selected
// names if given, otherwise the union of keys in encounter-then-sorted order.
func queriedColumns(records []map[string]any, columns []Column) []Column {
	if len(columns) > 0 {
		cols := make([]Column, len(columns))
		for i, col := range columns {
			cols[i] = Column{Name: col.Name, Path: col.Name}
		}
		return cols
	}
	seen := map[string]bool{}
	var names []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	// Map iteration order is random; sort for a stable header.
	sort.Strings(names)
	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = Column{Name: name, Path: name}
	}
	return cols
}

func renderTable(buf *bytes.Buffer, records []map[string]any, columns []Column, header bool) {
	tw := tabwriter.NewWriter(buf, 0, 0, 2, ' ', 0)
	if header {
		names := make([]string, len(columns))
		for i, col := range columns {
			names[i] = strings.ToUpper(col.Name)
		}
		fmt.Fprintln(tw, strings.Join(names, "\t"))
	}
	for _, rec := range records {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = cellValue(Lookup(rec, col.Path))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

// cellValue formats one table cell. Nested structures render as compact JSON
// so rows stay on one line.
func cellValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return fmt.Sprintf("%t", v)
	case float64:
		return trimFloat(v)
	default:
		out, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(out)
	}
}

// writeTextValue renders a scalar or list-of-scalars query result for the
// text format: one value per line, tab-joined rows for nested lists.
func writeTextValue(buf *bytes.Buffer, v any) {
	arr, ok := v.([]any)
	if !ok {
		if v != nil {
			fmt.Fprintln(buf, cellValue(v))
		}
		return
	}
	for _, elem := range arr {
		if row, ok := elem.([]any); ok {
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = cellValue(c)
			}
			fmt.Fprintln(buf, strings.Join(cells, "\t"))
			continue
		}
		fmt.Fprintln(buf, cellValue(elem))
	}
}

// projectRecords applies column selection for the JSON and YAML formats,
// producing records whose field sets equal exactly the selected columns.
func projectRecords(records []map[string]any, columns []Column) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		projected := make(map[string]any, len(columns))
		for _, col := range columns {
			projected[col.Name] = Lookup(rec, col.Path)
		}
		out = append(out, projected)
	}
	return out
}

// Lookup resolves a dotted path inside a decoded JSON record. A missing
// segment yields nil.
func Lookup(record map[string]any, path string) any {
	var current any = record
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}

func encodeJSON(buf *bytes.Buffer, v any, pretty bool) error {
	enc := json.NewEncoder(buf)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func rawList(records []map[string]any) []any {
	out := make([]any, len(records))
	for i, rec := range records {
		out[i] = rec
	}
	return out
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
