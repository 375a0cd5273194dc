// Package export renders generated report tables into their delivery
// formats: CSV text, markdown tables for chat replies, and XLSX workbooks.
// All value formatting happens here, at the edge; upstream tables stay raw.
package export

import (
	"github.com/playsift/levelscope/internal/format"
	"github.com/playsift/levelscope/internal/report"
	"github.com/playsift/levelscope/internal/table"
)

// view is a table projected through the presentation settings: columns
// hidden, reordered and renamed, cells formatted for display.
type view struct {
	header  []string // display names, post-rename
	columns []string // underlying row keys, same order as header
	rows    []table.Row
	missing string
}

func newView(t *table.Table, s report.Settings, missing string) *view {
	cols := t.UnionHeader()
	if len(s.ColumnOrder) > 0 {
		cols = orderColumns(cols, s.ColumnOrder)
	}
	hidden := make(map[string]bool, len(s.HideColumns))
	for _, h := range s.HideColumns {
		hidden[h] = true
	}
	v := &view{rows: t.Rows, missing: missing}
	for _, c := range cols {
		if hidden[c] {
			continue
		}
		name := c
		if renamed, ok := s.RenameColumns[c]; ok {
			name = renamed
		}
		v.columns = append(v.columns, c)
		v.header = append(v.header, name)
	}
	return v
}

// cell formats one cell for display. Explicitly missing values render as
// the view's missing placeholder.
func (v *view) cell(row table.Row, col string) string {
	return format.FormatWith(row[col], col, format.Options{Missing: v.missing})
}

// orderColumns puts the requested columns first (those actually present),
// then the remainder in their existing order.
func orderColumns(cols, requested []string) []string {
	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[c] = true
	}
	out := make([]string, 0, len(cols))
	taken := make(map[string]bool, len(requested))
	for _, r := range requested {
		if present[r] && !taken[r] {
			out = append(out, r)
			taken[r] = true
		}
	}
	for _, c := range cols {
		if !taken[c] {
			out = append(out, c)
		}
	}
	return out
}
