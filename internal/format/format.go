// Package format renders raw cell values for display. Exports disagree on
// whether a percentage column holds a 0-1 ratio or an already-multiplied
// percentage, so the formatter supports both without per-game configuration.
package format

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/playsift/levelscope/internal/table"
)

// Columns whose values pass through untouched even when they look numeric.
var dateColumns = []string{"date", "installdate", "reportdate", "createdat", "updatedat"}

// Substrings marking a column as percentage-style.
var percentColumns = []string{"churn", "rate", "ratio", "percent", "retention", "%"}

// Date-shaped values like 3/7/2024, 03-07-24 or 2024-07-03.
var datePattern = regexp.MustCompile(`^\d{1,4}[/-]\d{1,2}[/-]\d{1,4}`)

// Options overrides the column-name heuristics per call site.
type Options struct {
	// PercentColumns extends the built-in percentage column list.
	PercentColumns []string
	// DateColumns extends the built-in date column list.
	DateColumns []string
	// Missing is returned for empty values; renderers that want a visible
	// placeholder set "-".
	Missing string
}

// Format renders a value for the named column using default options.
func Format(value, column string) string {
	return FormatWith(value, column, Options{})
}

// FormatWith renders a value for the named column.
//
// Priority: date columns and date-shaped values pass through; percentage
// columns render to two decimals with a % suffix, multiplying by 100 when
// the value is a 0-1 ratio; other numerics render bare integers or two
// decimals; everything else passes through as a string.
func FormatWith(value, column string, opt Options) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return opt.Missing
	}
	if isDateColumn(column, opt.DateColumns) || datePattern.MatchString(v) {
		return v
	}
	f, ok := table.ParseNumber(v)
	if !ok {
		return v
	}
	if isPercentColumn(column, opt.PercentColumns) {
		p := f
		if math.Abs(f) <= 1 {
			p = f * 100
		}
		return strconv.FormatFloat(p, 'f', 2, 64) + "%"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func isDateColumn(column string, extra []string) bool {
	n := table.NormalizeKey(column)
	for _, d := range append(extra, dateColumns...) {
		if n == table.NormalizeKey(d) {
			return true
		}
	}
	return false
}

func isPercentColumn(column string, extra []string) bool {
	n := strings.ToLower(column)
	nn := table.NormalizeKey(column)
	for _, p := range append(extra, percentColumns...) {
		if strings.Contains(n, strings.ToLower(p)) {
			return true
		}
		// patterns like "%" normalize to "", which would match every column
		if np := table.NormalizeKey(p); np != "" && strings.Contains(nn, np) {
			return true
		}
	}
	return false
}
