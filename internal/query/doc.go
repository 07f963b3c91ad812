// Package query implements the small expression language used to filter and
// project API responses before they are rendered.
//
// The language is a deliberately scoped subset of JMESPath:
//
//   - dotted field access: foo.bar, "quoted field".baz
//   - indexing: items[0], items[-1]
//   - wildcard projections: items[*].name, *.name
//   - flattening: items[].hosts[]
//   - filters: items[?status == 'ready' && size > 2]
//   - pipes: items[*].name | [0]
//   - multiselect lists and hashes: items[*].[name, status],
//     items[*].{n: name, s: status}
//   - literals: raw strings 'x', backtick JSON `{"a": 1}`, bare numbers
//
// Expressions are compiled to an AST and evaluated statelessly against values
// decoded from JSON (map[string]any, []any, string, float64, bool, nil).
//
// Referencing a field that does not exist yields null, and null elements are
// dropped from projections. An expression that matches nothing therefore
// produces an empty result rather than an error. This forgiving behavior is
// intentional and relied upon by scripts that probe optional fields.
package query
