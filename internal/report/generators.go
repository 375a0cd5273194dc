// Package report holds the report generators: pure functions from a raw or
// wide-format table (plus settings) to a derived output table. Generators
// are total: malformed input degrades to sentinel values or empty output,
// never to an error.
package report

import (
	"math"
	"sort"
	"strconv"

	"github.com/playsift/levelscope/internal/buckets"
	"github.com/playsift/levelscope/internal/metric"
	"github.com/playsift/levelscope/internal/table"
	"github.com/playsift/levelscope/internal/transform"
)

// Report identifiers, as used on the command line and in settings files.
const (
	TopUnsuccessful      = "top-unsuccessful"
	TopSuccessful        = "top-successful"
	ChurnTopUnsuccessful = "churn-top-unsuccessful"
	ChurnTopSuccessful   = "churn-top-successful"
	Regional             = "regional"
	ABDiff               = "ab-diff"
	ABSignificant        = "ab-significant"
)

// DiffSuffix marks the computed variant-minus-baseline columns.
const DiffSuffix = " Diff"

// Generator derives an output table from input rows.
type Generator func(t *table.Table, s Settings) *table.Table

var registry = map[string]Generator{
	TopUnsuccessful:      func(t *table.Table, s Settings) *table.Table { return topByScore(t, s, true) },
	TopSuccessful:        func(t *table.Table, s Settings) *table.Table { return topByScore(t, s, false) },
	ChurnTopUnsuccessful: func(t *table.Table, s Settings) *table.Table { return topByChurn(t, s, true) },
	ChurnTopSuccessful:   func(t *table.Table, s Settings) *table.Table { return topByChurn(t, s, false) },
	Regional:             regional,
	ABDiff:               abDiff,
	ABSignificant:        abSignificant,
}

// Get looks a generator up by report name.
func Get(name string) (Generator, bool) {
	g, ok := registry[name]
	return g, ok
}

// Names lists the registered report names in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// topByScore sorts all rows by the resolved Score. No filtering: rows with
// a missing or garbled Score keep flowing and sort after every finite one.
func topByScore(t *table.Table, s Settings, ascending bool) *table.Table {
	wide := transform.ToWide(t)
	out := shallowCopy(wide)
	sortCol := s.SortColumn
	if sortCol == "" {
		sortCol = "Score"
	}
	sortRows(out.Rows, candidatesFor(sortCol), direction(s, ascending))
	return applyView(out, s)
}

// topByChurn keeps rows whose 3-day churn is a positive number, then sorts
// by it.
func topByChurn(t *table.Table, s Settings, ascending bool) *table.Table {
	wide := transform.ToWide(t)
	out := shallowCopy(wide)
	churn, _ := metric.ByName("3 Days Churn")
	kept := out.Rows[:0:0]
	for _, row := range out.Rows {
		if v, ok := churn.Number(row); ok && v > 0 {
			kept = append(kept, row)
		}
	}
	out.Rows = kept
	sortCol := s.SortColumn
	if sortCol == "" {
		sortCol = churn.Name
	}
	sortRows(out.Rows, candidatesFor(sortCol), direction(s, ascending))
	return applyView(out, s)
}

// regional pivots to wide format and aggregates into level-range buckets.
func regional(t *table.Table, s Settings) *table.Table {
	wide := transform.ToWide(t)
	out := buckets.Aggregate(wide, transform.LevelKey(wide), "", metric.Tracked)
	return applyView(out, s)
}

// abDiff computes variant-minus-baseline for every tracked metric. A level
// missing either arm keeps its row; the diff columns stay absent and render
// as missing downstream.
func abDiff(t *table.Table, s Settings) *table.Table {
	wide := transform.ToWide(t)
	header := append([]string(nil), wide.Header...)
	for _, m := range metric.Tracked {
		header = append(header, m.Name+DiffSuffix)
	}
	out := &table.Table{Header: header}
	for _, row := range wide.Rows {
		nr := make(table.Row, len(row)+len(metric.Tracked))
		for k, v := range row {
			nr[k] = v
		}
		for _, m := range metric.Tracked {
			// exact keys only: fuzzy matching here would let a plain
			// "Score" column satisfy "Score Baseline" and fake a 0 diff
			base, okB := table.ParseNumber(row[m.Name+transform.BaselineSuffix])
			variant, okV := table.ParseNumber(row[m.Name+transform.VariantSuffix])
			if okB && okV {
				nr[m.Name+DiffSuffix] = strconv.FormatFloat(variant-base, 'f', -1, 64)
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return applyView(out, s)
}

// abSignificant keeps the diff rows whose target metric moved by more than
// its significance threshold and orders them by diff magnitude.
func abSignificant(t *table.Table, s Settings) *table.Table {
	diffed := abDiff(t, Settings{})
	target := s.FilterColumn
	if target == "" {
		target = "Score"
	}
	threshold := s.FilterThreshold
	if m, ok := metric.ByName(target); ok && threshold <= 0 {
		threshold = m.DiffThreshold
	}
	diffCol := target + DiffSuffix

	kept := diffed.Rows[:0:0]
	for _, row := range diffed.Rows {
		if d, ok := table.ParseNumber(row[diffCol]); ok && math.Abs(d) > threshold {
			kept = append(kept, row)
		}
	}
	diffed.Rows = kept
	sort.SliceStable(diffed.Rows, func(i, j int) bool {
		di, _ := table.ParseNumber(diffed.Rows[i][diffCol])
		dj, _ := table.ParseNumber(diffed.Rows[j][diffCol])
		return math.Abs(di) > math.Abs(dj)
	})
	return applyView(diffed, s)
}

// direction resolves the effective sort order: the generator default unless
// settings name one explicitly.
func direction(s Settings, ascending bool) bool {
	switch s.SortOrder {
	case "asc":
		return true
	case "desc":
		return false
	}
	return ascending
}

// sortRows orders rows by a numeric column. Rows whose value is missing or
// unparseable sort after every finite value regardless of direction, and
// the sort is stable, so the placement is deterministic.
func sortRows(rows []table.Row, candidates []string, ascending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		vi, okI := table.ResolveNumber(rows[i], candidates...)
		vj, okJ := table.ResolveNumber(rows[j], candidates...)
		switch {
		case okI && okJ:
			if ascending {
				return vi < vj
			}
			return vi > vj
		case okI:
			return true
		default:
			return false
		}
	})
}

// candidatesFor expands a sort column into metric aliases when it names a
// tracked metric.
func candidatesFor(column string) []string {
	if m, ok := metric.ByName(column); ok {
		return m.Candidates()
	}
	return []string{column}
}

// applyView applies the settings shared by every generator: minimum user
// cutoff and top-N truncation. Column rename/hide/order are left to the
// renderers.
func applyView(t *table.Table, s Settings) *table.Table {
	if s.MinUsers > 0 {
		users, _ := metric.ByName("TotalUser")
		kept := t.Rows[:0:0]
		for _, row := range t.Rows {
			if v, ok := users.Number(row); ok && v >= float64(s.MinUsers) {
				kept = append(kept, row)
			}
		}
		t.Rows = kept
	}
	if s.Limit > 0 && len(t.Rows) > s.Limit {
		t.Rows = t.Rows[:s.Limit]
	}
	return t
}

// shallowCopy shares row maps but owns the slice, so sorting and filtering
// never disturb the caller's table.
func shallowCopy(t *table.Table) *table.Table {
	return &table.Table{
		Header: append([]string(nil), t.Header...),
		Rows:   append([]table.Row(nil), t.Rows...),
	}
}
