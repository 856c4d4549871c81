// Package output renders values for the terminal.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: key/value and columnar tables
//   - json.go: JSON output formatting
//   - yaml.go: YAML output formatting
//
// Option trees are printed as sorted dotted-key tables, or as nested
// documents in the JSON and YAML formats.
package output
