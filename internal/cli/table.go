package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table writes aligned columns with a styled header row.
type Table struct {
	w       *tabwriter.Writer
	columns int
}

// NewTable starts a table on out with the given column headers.
func NewTable(out io.Writer, headers ...string) *Table {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	styled := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = TableHeaderStyle.Render(h)
	}
	_, _ = fmt.Fprintln(w, strings.Join(styled, "\t"))

	return &Table{w: w, columns: len(headers)}
}

// Row appends one row. Missing cells are left blank and extra cells are
// dropped.
func (t *Table) Row(cells ...string) {
	row := make([]string, t.columns)
	copy(row, cells)
	_, _ = fmt.Fprintln(t.w, strings.Join(row, "\t"))
}

// Flush writes the buffered table.
func (t *Table) Flush() error {
	return t.w.Flush()
}
