package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clusterColumns = []Column{
	{Name: "id", Path: "_links.self.href"},
	{Name: "name", Path: "label.name"},
	{Name: "description", Path: "label.description"},
	{Name: "k8s_version", Path: "k8s_version"},
	{Name: "status", Path: "status"},
}

func clusterRecords() []map[string]any {
	return []map[string]any{
		{
			"_links":      map[string]any{"self": map[string]any{"href": "/api/v2/k8scluster/1"}},
			"label":       map[string]any{"name": "dev", "description": "dev cluster"},
			"k8s_version": "1.18.6",
			"status":      "ready",
		},
		{
			"_links":      map[string]any{"self": map[string]any{"href": "/api/v2/k8scluster/2"}},
			"label":       map[string]any{"name": "prod", "description": "prod cluster"},
			"k8s_version": "1.17.0",
			"status":      "creating",
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"table", "text", "json", "json-pp", "yaml"} {
		_, err := ParseFormat(valid)
		assert.NoError(t, err, valid)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSelectColumns(t *testing.T) {
	t.Run("subset preserves requested order", func(t *testing.T) {
		cols, err := SelectColumns(clusterColumns, []string{"status", "name"})
		require.NoError(t, err)
		require.Len(t, cols, 2)
		assert.Equal(t, "status", cols[0].Name)
		assert.Equal(t, "name", cols[1].Name)
	})

	t.Run("ALL selects every column", func(t *testing.T) {
		cols, err := SelectColumns(clusterColumns, []string{ColumnsAll})
		require.NoError(t, err)
		assert.Equal(t, clusterColumns, cols)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := SelectColumns(clusterColumns, []string{"name", "nosuch"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Contains(t, err.Error(), "nosuch")
	})
}

func TestRenderListTable(t *testing.T) {
	var buf bytes.Buffer
	cols, err := SelectColumns(clusterColumns, []string{"name", "status"})
	require.NoError(t, err)

	err = RenderList(&buf, clusterRecords(), ListOptions{Format: FormatTable, Columns: cols})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[0], "STATUS")
	assert.Contains(t, lines[1], "dev")
	assert.Contains(t, lines[1], "ready")
	assert.Contains(t, lines[2], "prod")
	assert.Contains(t, lines[2], "creating")
}

func TestRenderListText(t *testing.T) {
	var buf bytes.Buffer
	cols, err := SelectColumns(clusterColumns, []string{"name", "status"})
	require.NoError(t, err)

	err = RenderList(&buf, clusterRecords(), ListOptions{Format: FormatText, Columns: cols})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.NotContains(t, lines[0], "NAME")
	assert.Contains(t, lines[0], "dev")
}

// Selecting columns then rendering as JSON must round-trip to records whose
// field sets equal exactly the selected columns.
func TestRenderListJSONProjectionRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	cols, err := SelectColumns(clusterColumns, []string{"name", "status"})
	require.NoError(t, err)

	err = RenderList(&buf, clusterRecords(), ListOptions{Format: FormatJSON, Columns: cols})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"), "compact JSON is a single line")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	for _, rec := range decoded {
		assert.Len(t, rec, 2)
		assert.Contains(t, rec, "name")
		assert.Contains(t, rec, "status")
	}
	assert.Equal(t, "dev", decoded[0]["name"])
}

func TestRenderListEmpty(t *testing.T) {
	cols := clusterColumns

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderList(&buf, nil, ListOptions{Format: FormatJSON, Columns: cols}))
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("json-pp", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderList(&buf, nil, ListOptions{Format: FormatJSONPretty, Columns: cols}))
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("table has header only", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderList(&buf, nil, ListOptions{Format: FormatTable, Columns: cols}))
		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		assert.Len(t, lines, 1)
	})

	t.Run("text renders nothing", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderList(&buf, nil, ListOptions{Format: FormatText, Columns: cols}))
		assert.Empty(t, buf.String())
	})
}

func TestRenderListDoesNotMutateInput(t *testing.T) {
	records := clusterRecords()
	var buf bytes.Buffer

	err := RenderList(&buf, records, ListOptions{
		Format:  FormatJSON,
		Columns: clusterColumns[:2],
		Query:   "[?status == 'ready']",
	})
	require.NoError(t, err)

	assert.Equal(t, clusterRecords(), records)
}

func TestRenderListQuery(t *testing.T) {
	t.Run("filter selects a subset", func(t *testing.T) {
		var buf bytes.Buffer
		err := RenderList(&buf, clusterRecords(), ListOptions{
			Format: FormatJSON,
			Query:  "[?status == 'ready'].label.name",
		})
		require.NoError(t, err)
		assert.JSONEq(t, `["dev"]`, buf.String())
	})

	t.Run("query matching nothing renders empty list", func(t *testing.T) {
		var buf bytes.Buffer
		err := RenderList(&buf, clusterRecords(), ListOptions{
			Format: FormatJSON,
			Query:  "[?status == 'nosuch']",
		})
		require.NoError(t, err)
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("query on missing field renders empty list", func(t *testing.T) {
		var buf bytes.Buffer
		err := RenderList(&buf, clusterRecords(), ListOptions{
			Format: FormatJSON,
			Query:  "[?nosuch == 'x']",
		})
		require.NoError(t, err)
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("scalar result in text mode", func(t *testing.T) {
		var buf bytes.Buffer
		err := RenderList(&buf, clusterRecords(), ListOptions{
			Format: FormatText,
			Query:  "[0].label.name",
		})
		require.NoError(t, err)
		assert.Equal(t, "dev\n", buf.String())
	})

	t.Run("malformed query produces no output", func(t *testing.T) {
		var buf bytes.Buffer
		err := RenderList(&buf, clusterRecords(), ListOptions{
			Format: FormatJSON,
			Query:  "[?status == 'ready'",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidQuery)
		assert.Empty(t, buf.String(), "no partial output on a bad query")
	})

	// Records surviving a pure filter keep the raw API shape, so selected
	// columns must still resolve through their dotted paths.
	t.Run("filter keeps dotted column paths resolvable", func(t *testing.T) {
		cols, err := SelectColumns(clusterColumns, []string{"name"})
		require.NoError(t, err)

		var buf bytes.Buffer
		err = RenderList(&buf, clusterRecords(), ListOptions{
			Format:  FormatText,
			Columns: cols,
			Query:   "[?status == 'ready']",
		})
		require.NoError(t, err)
		assert.Equal(t, "dev\n", buf.String())
	})

	t.Run("filter with columns in json mode", func(t *testing.T) {
		cols, err := SelectColumns(clusterColumns, []string{"id", "name"})
		require.NoError(t, err)

		var buf bytes.Buffer
		err = RenderList(&buf, clusterRecords(), ListOptions{
			Format:  FormatJSON,
			Columns: cols,
			Query:   "[?status == 'ready']",
		})
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id": "/api/v2/k8scluster/1", "name": "dev"}]`, buf.String())
	})

	t.Run("filter with columns in table mode", func(t *testing.T) {
		cols, err := SelectColumns(clusterColumns, []string{"name", "status"})
		require.NoError(t, err)

		var buf bytes.Buffer
		err = RenderList(&buf, clusterRecords(), ListOptions{
			Format:  FormatTable,
			Columns: cols,
			Query:   "[?status == 'creating']",
		})
		require.NoError(t, err)
		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "NAME")
		assert.Contains(t, lines[1], "prod")
	})

	// A multiselect reshapes the records, so columns fall back to the new
	// top-level keys.
	t.Run("columns after a reshaping query", func(t *testing.T) {
		cols, err := SelectColumns(clusterColumns, []string{"name"})
		require.NoError(t, err)

		var buf bytes.Buffer
		err = RenderList(&buf, clusterRecords(), ListOptions{
			Format:  FormatText,
			Columns: cols,
			Query:   "[?status == 'ready'].{name: label.name}",
		})
		require.NoError(t, err)
		assert.Equal(t, "dev\n", buf.String())
	})

	t.Run("queried records in table mode", func(t *testing.T) {
		var buf bytes.Buffer
		err := RenderList(&buf, clusterRecords(), ListOptions{
			Format: FormatTable,
			Query:  "[*].{name: label.name, status: status}",
		})
		require.NoError(t, err)
		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[0], "NAME")
	})
}

func TestRenderListUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := RenderList(&buf, clusterRecords(), ListOptions{Format: Format("xml"), Columns: clusterColumns})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, buf.String())
}

func TestRenderRecord(t *testing.T) {
	record := clusterRecords()[0]

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderRecord(&buf, record, FormatYAML))
		assert.Contains(t, buf.String(), "k8s_version: 1.18.6")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderRecord(&buf, record, FormatJSON))
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "ready", decoded["status"])
	})

	t.Run("table is not valid for a single record", func(t *testing.T) {
		var buf bytes.Buffer
		err := RenderRecord(&buf, record, FormatTable)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestLookup(t *testing.T) {
	rec := clusterRecords()[0]

	assert.Equal(t, "dev", Lookup(rec, "label.name"))
	assert.Equal(t, "/api/v2/k8scluster/1", Lookup(rec, "_links.self.href"))
	assert.Nil(t, Lookup(rec, "label.nosuch"))
	assert.Nil(t, Lookup(rec, "k8s_version.deeper"))
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, "", cellValue(nil))
	assert.Equal(t, "ready", cellValue("ready"))
	assert.Equal(t, "true", cellValue(true))
	assert.Equal(t, "3", cellValue(float64(3)))
	assert.Equal(t, "1.5", cellValue(1.5))
	assert.Equal(t, `["a","b"]`, cellValue([]any{"a", "b"}))
}
