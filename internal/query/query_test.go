package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestSearch(t *testing.T) {
	clusters := `{
		"_embedded": {
			"k8sclusters": [
				{"label": {"name": "dev"}, "status": "ready", "k8s_version": "1.18.6", "size": 3},
				{"label": {"name": "prod"}, "status": "creating", "k8s_version": "1.17.0", "size": 10},
				{"label": {"name": "old"}, "status": "error", "k8s_version": "1.16.0", "size": 2}
			]
		}
	}`

	tests := []struct {
		name string
		expr string
		data string
		want any
	}{
		{
			name: "simple field access",
			expr: "status",
			data: `{"status": "ready"}`,
			want: "ready",
		},
		{
			name: "nested field access",
			expr: "label.name",
			data: `{"label": {"name": "dev"}}`,
			want: "dev",
		},
		{
			name: "quoted identifier",
			expr: `"status message"`,
			data: `{"status message": "ok"}`,
			want: "ok",
		},
		{
			name: "index",
			expr: "hosts[1]",
			data: `{"hosts": ["a", "b", "c"]}`,
			want: "b",
		},
		{
			name: "negative index",
			expr: "hosts[-1]",
			data: `{"hosts": ["a", "b", "c"]}`,
			want: "c",
		},
		{
			name: "index out of range yields null",
			expr: "hosts[9]",
			data: `{"hosts": ["a"]}`,
			want: nil,
		},
		{
			name: "wildcard projection",
			expr: "_embedded.k8sclusters[*].label.name",
			data: clusters,
			want: []any{"dev", "prod", "old"},
		},
		{
			name: "projection drops missing fields",
			expr: "items[*].missing",
			data: `{"items": [{"a": 1}, {"a": 2}]}`,
			want: []any{},
		},
		{
			name: "filter on string equality",
			expr: "_embedded.k8sclusters[?status == 'ready'].label.name",
			data: clusters,
			want: []any{"dev"},
		},
		{
			name: "filter with numeric comparison",
			expr: "_embedded.k8sclusters[?size > 2].label.name",
			data: clusters,
			want: []any{"dev", "prod"},
		},
		{
			name: "filter with and",
			expr: "_embedded.k8sclusters[?size > 2 && status == 'creating'].label.name",
			data: clusters,
			want: []any{"prod"},
		},
		{
			name: "filter with or",
			expr: "_embedded.k8sclusters[?status == 'error' || status == 'creating'].label.name",
			data: clusters,
			want: []any{"prod", "old"},
		},
		{
			name: "filter with not",
			expr: "_embedded.k8sclusters[?!(status == 'ready')].label.name",
			data: clusters,
			want: []any{"prod", "old"},
		},
		{
			name: "filter matching nothing yields empty list",
			expr: "_embedded.k8sclusters[?status == 'nosuch']",
			data: clusters,
			want: []any{},
		},
		{
			name: "filter on missing field yields empty list",
			expr: "_embedded.k8sclusters[?nosuch == 'x']",
			data: clusters,
			want: []any{},
		},
		{
			name: "missing field yields null not error",
			expr: "nosuch.nested.path",
			data: clusters,
			want: nil,
		},
		{
			name: "pipe stops projection",
			expr: "_embedded.k8sclusters[*].label.name | [0]",
			data: clusters,
			want: "dev",
		},
		{
			name: "flatten",
			expr: "groups[].members[]",
			data: `{"groups": [{"members": ["a"]}, {"members": ["b", "c"]}]}`,
			want: []any{"a", "b", "c"},
		},
		{
			name: "multiselect list",
			expr: "_embedded.k8sclusters[*].[label.name, status]",
			data: clusters,
			want: []any{
				[]any{"dev", "ready"},
				[]any{"prod", "creating"},
				[]any{"old", "error"},
			},
		},
		{
			name: "multiselect hash",
			expr: "_embedded.k8sclusters[0].{name: label.name, version: k8s_version}",
			data: clusters,
			want: map[string]any{"name": "dev", "version": "1.18.6"},
		},
		{
			name: "object wildcard",
			expr: "*.name",
			data: `{"b": {"name": "beta"}, "a": {"name": "alpha"}}`,
			want: []any{"alpha", "beta"},
		},
		{
			name: "backtick JSON literal",
			expr: "items[?count == `2`]",
			data: `{"items": [{"count": 1}, {"count": 2}]}`,
			want: []any{map[string]any{"count": float64(2)}},
		},
		{
			name: "bare number literal",
			expr: "items[?count >= 2].count",
			data: `{"items": [{"count": 1}, {"count": 2}, {"count": 3}]}`,
			want: []any{float64(2), float64(3)},
		},
		{
			name: "ordering comparison on non-number is falsy",
			expr: "items[?name > 2]",
			data: `{"items": [{"name": "a"}]}`,
			want: []any{},
		},
		{
			name: "current node in filter",
			expr: "tags[?@ == 'blue']",
			data: `{"tags": ["red", "blue"]}`,
			want: []any{"blue"},
		},
		{
			name: "projection over non-array yields null",
			expr: "status[*]",
			data: `{"status": "ready"}`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Search(tt.expr, decode(t, tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty expression", ""},
		{"dangling dot", "foo."},
		{"unterminated raw string", "status == 'ready"},
		{"unterminated filter", "items[?status == 'x'"},
		{"single equals", "status = 'ready'"},
		{"single ampersand", "a & b"},
		{"unterminated quoted identifier", `"foo`},
		{"trailing garbage", "foo bar"},
		{"bad JSON literal", "items[?a == `{]`]"},
		{"unclosed paren", "(a == 'b'"},
		{"hash without colon", "{name label.name}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.expr)
			require.Error(t, err)
			var syntaxErr *SyntaxError
			assert.ErrorAs(t, err, &syntaxErr)
		})
	}
}

func TestExpressionReuse(t *testing.T) {
	compiled, err := Compile("items[?ok].id")
	require.NoError(t, err)

	first := compiled.Eval(decode(t, `{"items": [{"id": "a", "ok": true}]}`))
	second := compiled.Eval(decode(t, `{"items": [{"id": "b", "ok": false}]}`))

	assert.Equal(t, []any{"a"}, first)
	assert.Equal(t, []any{}, second)
}
