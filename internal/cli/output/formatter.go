package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Format represents the output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a format name. The empty string is FormatTable.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
}

// Formatter formats data for output.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format, wide bool) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{Wide: wide}
	}
}

// Printer writes command results to Out and diagnostics to Err. Status
// lines go to Err when the format is machine-readable so that Out stays
// parseable.
type Printer struct {
	Out io.Writer
	Err io.Writer

	mu        sync.RWMutex
	format    Format
	formatter Formatter
}

// NewPrinter creates a Printer.
func NewPrinter(out, errOut io.Writer, format Format, wide bool) *Printer {
	p := &Printer{Out: out, Err: errOut}
	p.SetFormat(format, wide)
	return p
}

// SetFormat switches the output format.
func (p *Printer) SetFormat(format Format, wide bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.format = format
	p.formatter = NewFormatter(format, wide)
}

// Format returns the current output format.
func (p *Printer) Format() Format {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.format
}

// Print renders data in the current format.
func (p *Printer) Print(data any) error {
	p.mu.RLock()
	f := p.formatter
	p.mu.RUnlock()
	return f.Format(p.Out, data)
}

// Message prints a status line.
func (p *Printer) Message(msg string) {
	w := p.Out
	if p.Format() != FormatTable {
		w = p.Err
	}
	fmt.Fprintln(w, msg)
}

// Error prints err to Err.
func (p *Printer) Error(err error) {
	fmt.Fprintf(p.Err, "error: %v\n", err)
}
