// Package output renders command results for unionhub-cli.
//
//   - formatter.go: Format, Formatter and the Printer used by commands
//   - table.go: tabwriter tables built from tagged structs
//   - json.go, yaml.go: machine-readable output
//   - spinner.go, progress.go: terminal feedback while a request runs
//
// Struct fields choose their table column with a `table` tag:
// `table:"NAME"` names the header, `table:"NAME,wide"` shows the column
// only in wide mode and `table:"-"` hides it. Untagged fields use their
// json name in upper case.
package output
