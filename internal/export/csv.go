package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/playsift/levelscope/internal/report"
	"github.com/playsift/levelscope/internal/table"
)

// WriteCSV renders a report table as CSV, applying the settings' column
// presentation and the display formatter. Missing cells stay empty; CSV
// output feeds other tools, not eyes.
func WriteCSV(w io.Writer, t *table.Table, s report.Settings) error {
	v := newView(t, s, "")
	cw := csv.NewWriter(w)
	if err := cw.Write(v.header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(v.columns))
	for i, row := range v.rows {
		for j, col := range v.columns {
			rec[j] = v.cell(row, col)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
