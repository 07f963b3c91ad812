// Package output renders API resource records to the terminal.
//
// It is the single formatting path for every list and get command: a list of
// raw records (as decoded from the controller's JSON responses) goes in, and
// exactly one rendering comes out. Supported formats are a fixed-width table,
// header-less tab-separated text for shell pipelines, compact JSON, indented
// JSON, and YAML for single records.
//
// An optional query expression (see the query package) is applied against the
// raw record shape before column selection, so filters can reference fields
// that are not part of the displayed columns.
//
// Rendering is all-or-nothing: output is buffered and flushed only on
// success, so a bad query or column never produces partial output.
package output
