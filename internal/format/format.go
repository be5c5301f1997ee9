package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Formatter abstracts output formatting.
type Formatter interface {
	Write(w io.Writer, payload any) error
}

// JSONFormatter writes JSON output.
type JSONFormatter struct {
	Indent bool
}

// Write writes JSON payload to a writer.
func (f JSONFormatter) Write(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(payload)
}

// Table is a header plus rows of cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// TableFormatter writes Table payloads as aligned columns and falls back to
// JSON for anything else.
type TableFormatter struct{}

// Write writes payload to a writer.
func (f TableFormatter) Write(w io.Writer, payload any) error {
	table, ok := payload.(Table)
	if !ok {
		return JSONFormatter{Indent: true}.Write(w, payload)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(table.Header) > 0 {
		if _, err := fmt.Fprintln(tw, strings.Join(table.Header, "\t")); err != nil {
			return err
		}
	}
	for _, row := range table.Rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}
