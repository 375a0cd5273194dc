package table

import (
	"sort"
	"strconv"
	"strings"
)

// Resolve finds the value for the first candidate column name that matches
// a key in the row. Matching is attempted in three passes, stopping at the
// first hit with a non-empty value:
//
//  1. exact key match
//  2. case-insensitive key match
//  3. normalized substring match (non-alphanumerics stripped from both
//     sides, containment in either direction)
//
// Export headers vary per game and per export configuration, so the same
// metric arrives as "3 Days Churn (%)", "3DaysChurn" or "churn_3d"; this is
// the single place that absorbs that variance. Resolve never fails: the
// second return value reports whether anything matched.
func Resolve(row Row, candidates ...string) (string, bool) {
	for _, cand := range candidates {
		if v, ok := row[cand]; ok && v != "" {
			return v, true
		}
	}
	keys := sortedKeys(row)
	for _, cand := range candidates {
		for _, k := range keys {
			if strings.EqualFold(k, cand) && row[k] != "" {
				return row[k], true
			}
		}
	}
	for _, cand := range candidates {
		nc := NormalizeKey(cand)
		if nc == "" {
			continue
		}
		for _, k := range keys {
			nk := NormalizeKey(k)
			if nk == "" || row[k] == "" {
				continue
			}
			if strings.Contains(nk, nc) || strings.Contains(nc, nk) {
				return row[k], true
			}
		}
	}
	return "", false
}

// ResolveKey reports which key in the row a candidate list resolves to,
// using the same matching rules as Resolve but ignoring cell emptiness.
// Used for structural detection (which column is the level column) where
// the first row may legitimately hold an empty cell.
func ResolveKey(row Row, candidates ...string) (string, bool) {
	for _, cand := range candidates {
		if _, ok := row[cand]; ok {
			return cand, true
		}
	}
	keys := sortedKeys(row)
	for _, cand := range candidates {
		for _, k := range keys {
			if strings.EqualFold(k, cand) {
				return k, true
			}
		}
	}
	for _, cand := range candidates {
		nc := NormalizeKey(cand)
		if nc == "" {
			continue
		}
		for _, k := range keys {
			nk := NormalizeKey(k)
			if nk == "" {
				continue
			}
			if strings.Contains(nk, nc) || strings.Contains(nc, nk) {
				return k, true
			}
		}
	}
	return "", false
}

// ResolveNumber resolves a column and parses it as a number.
func ResolveNumber(row Row, candidates ...string) (float64, bool) {
	v, ok := Resolve(row, candidates...)
	if !ok {
		return 0, false
	}
	return ParseNumber(v)
}

// ParseNumber parses a cell as a float, tolerating percent signs and
// thousands separators ("1,234", "12.5%"). Empty or garbled cells report
// false rather than an error.
func ParseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseLevel parses a cell as an integer level number. Fractional or
// non-numeric values report false; such rows are excluded from aggregation.
func ParseLevel(s string) (int, bool) {
	f, ok := ParseNumber(s)
	if !ok {
		return 0, false
	}
	n := int(f)
	if float64(n) != f {
		return 0, false
	}
	return n, true
}

// NormalizeKey lowercases and strips everything but letters and digits.
func NormalizeKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

// sortedKeys keeps fuzzy matching deterministic across runs; map order
// would otherwise let two equally-fuzzy headers win at random.
func sortedKeys(row Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
