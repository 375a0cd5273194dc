package export

import (
	"strings"

	"github.com/playsift/levelscope/internal/report"
	"github.com/playsift/levelscope/internal/table"
)

// Markdown renders a report table as a GitHub-style markdown table, the
// shape chat replies use. Missing cells render as "-" so gaps are visible
// inline.
func Markdown(t *table.Table, s report.Settings) string {
	v := newView(t, s, "-")
	if len(v.columns) == 0 {
		return "(no data)\n"
	}
	var b strings.Builder
	b.WriteString("| ")
	for i, h := range v.header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(mdSafe(h))
	}
	b.WriteString(" |\n| ")
	for i := range v.header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	if len(v.rows) == 0 {
		return b.String() + "\n(no data)\n"
	}
	for _, row := range v.rows {
		b.WriteString("| ")
		for i, col := range v.columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(mdSafe(v.cell(row, col)))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

func mdSafe(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
