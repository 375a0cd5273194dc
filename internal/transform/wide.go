// Package transform normalizes raw export tables into wide format: one row
// per level, one column per metric (or per metric and A/B arm).
package transform

import (
	"strings"

	"github.com/playsift/levelscope/internal/metric"
	"github.com/playsift/levelscope/internal/table"
)

// Column suffixes emitted by the baseline/variant pivot.
const (
	BaselineSuffix = " Baseline"
	VariantSuffix  = " Variant A"
)

// variantSampleRows bounds how deep detection scans for an A/B indicator.
const variantSampleRows = 20

// ToWide detects the layout of a raw export and pivots it into wide format.
// Long-format tables (metric-name + value columns) become one row per
// level; baseline/variant tables become one row per level with per-arm
// metric columns. Tables already in wide format are returned unchanged.
func ToWide(t *table.Table) *table.Table {
	if t == nil || len(t.Rows) == 0 {
		return t
	}
	first := t.Rows[0]
	if metricCol, valueCol, ok := detectLong(first); ok {
		return pivotLong(t, metricCol, valueCol)
	}
	if variantCol, ok := detectVariantColumn(t.Rows); ok {
		return pivotVariants(t, variantCol)
	}
	return t
}

// detectLong reports the metric-name and value columns of a long-format
// table. Both must be present; matching is one-directional (the header must
// contain the needle) so a wide table with a "Metric" column is not
// mistaken for long format.
func detectLong(row table.Row) (metricCol, valueCol string, ok bool) {
	metricCol, ok = findKeyContaining(row, "metricname", "metricresult")
	if !ok {
		return "", "", false
	}
	valueCol, ok = findKeyContaining(row, "measurevalues", "value")
	if !ok {
		return "", "", false
	}
	return metricCol, valueCol, true
}

// detectVariantColumn scans sampled rows for a column whose value carries a
// baseline/variant indicator.
func detectVariantColumn(rows []table.Row) (string, bool) {
	limit := len(rows)
	if limit > variantSampleRows {
		limit = variantSampleRows
	}
	for i := 0; i < limit; i++ {
		for _, k := range sortedRowKeys(rows[i]) {
			v := strings.ToLower(rows[i][k])
			if strings.Contains(v, "baseline") || strings.Contains(v, "variant") {
				return k, true
			}
		}
	}
	return "", false
}

func pivotLong(t *table.Table, metricCol, valueCol string) *table.Table {
	levelKey := detectLevelKey(t)

	var levelOrder []string
	accs := make(map[string]table.Row)
	var metricOrder []string
	seenMetric := make(map[string]bool)

	for _, row := range t.Rows {
		lv := row[levelKey]
		acc, ok := accs[lv]
		if !ok {
			acc = table.Row{levelKey: lv}
			accs[lv] = acc
			levelOrder = append(levelOrder, lv)
		}
		name := strings.TrimSpace(row[metricCol])
		if name == "" {
			continue
		}
		if n := table.NormalizeKey(name); n == "totaluser" || n == "totalusers" {
			name = "TotalUser"
		}
		acc[name] = row[valueCol]
		if !seenMetric[name] {
			seenMetric[name] = true
			metricOrder = append(metricOrder, name)
		}
	}

	out := &table.Table{Header: append([]string{levelKey}, metricOrder...)}
	for _, lv := range levelOrder {
		out.Rows = append(out.Rows, accs[lv])
	}
	return out
}

func pivotVariants(t *table.Table, variantCol string) *table.Table {
	levelKey := detectLevelKey(t)

	var levelOrder []string
	groups := make(map[string][]table.Row)
	for _, row := range t.Rows {
		lv := row[levelKey]
		if _, ok := groups[lv]; !ok {
			levelOrder = append(levelOrder, lv)
		}
		groups[lv] = append(groups[lv], row)
	}

	header := []string{levelKey, "Cluster ID", "Revision"}
	for _, m := range metric.Tracked {
		header = append(header, m.Name+BaselineSuffix, m.Name+VariantSuffix)
	}

	out := &table.Table{Header: header}
	for _, lv := range levelOrder {
		var baseRow, varRow table.Row
		for _, r := range groups[lv] {
			ind := strings.ToLower(r[variantCol])
			switch {
			case baseRow == nil && strings.Contains(ind, "baseline"):
				baseRow = r
			case varRow == nil && strings.Contains(ind, "variant"):
				varRow = r
			}
		}

		row := table.Row{levelKey: lv}
		if v, ok := resolveEither(baseRow, varRow, "cluster id", "cluster"); ok {
			row["Cluster ID"] = v
		}
		if v, ok := resolveEither(baseRow, varRow, "revision", "rev no"); ok {
			row["Revision"] = v
		}
		for _, m := range metric.Tracked {
			if baseRow != nil {
				if v, ok := m.Resolve(baseRow); ok {
					row[m.Name+BaselineSuffix] = v
				}
			}
			if varRow != nil {
				if v, ok := m.Resolve(varRow); ok {
					row[m.Name+VariantSuffix] = v
				}
			}
		}
		// A level with only one arm still ships; the absent arm's columns
		// stay missing and diff downstream as NaN.
		out.Rows = append(out.Rows, row)
	}
	return out
}

// LevelKey reports which column a table is keyed by, defaulting to the
// first header when no level-like column exists.
func LevelKey(t *table.Table) string {
	if t == nil || len(t.Rows) == 0 {
		if t != nil && len(t.Header) > 0 {
			return t.Header[0]
		}
		return "Level"
	}
	return detectLevelKey(t)
}

// detectLevelKey picks the grouping column, defaulting to the first header
// when no level-like column exists.
func detectLevelKey(t *table.Table) string {
	if k, ok := table.ResolveKey(t.Rows[0], metric.LevelAliases...); ok {
		return k
	}
	if len(t.Header) > 0 {
		return t.Header[0]
	}
	return "Level"
}

func findKeyContaining(row table.Row, needles ...string) (string, bool) {
	for _, k := range sortedRowKeys(row) {
		nk := table.NormalizeKey(k)
		for _, needle := range needles {
			if strings.Contains(nk, needle) {
				return k, true
			}
		}
	}
	return "", false
}

func resolveEither(a, b table.Row, candidates ...string) (string, bool) {
	if a != nil {
		if v, ok := table.Resolve(a, candidates...); ok {
			return v, true
		}
	}
	if b != nil {
		if v, ok := table.Resolve(b, candidates...); ok {
			return v, true
		}
	}
	return "", false
}

func sortedRowKeys(row table.Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	// insertion sort keeps this allocation-light for small rows
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
