// Package buckets aggregates per-level rows into level-range buckets. The
// range schedule is a business rule, not derived from data: windows are
// fine at early levels where most players live and widen toward the long
// tail.
package buckets

import (
	"strconv"

	"github.com/playsift/levelscope/internal/metric"
	"github.com/playsift/levelscope/internal/table"
)

// schedule maps a range of start levels to a bucket width. Entries are
// ordered; the first entry whose limit is >= the bucket start decides the
// width.
var schedule = []struct {
	limit int
	step  int
}{
	{10, 10},
	{90, 20},
	{150, 30},
	{1000, 50},
	{2000, 100},
	{int(^uint(0) >> 1), 200},
}

// Output columns appended empty for manual annotation after export.
var annotationColumns = []string{"Notes", "Action", "Owner"}

// Bucket is one level range with its accumulators. Ranges are fixed at
// construction; only the accumulators change during aggregation.
type Bucket struct {
	Start      int
	End        int
	RowCount   int
	TotalUsers float64

	sums   map[string]float64
	counts map[string]int
}

// Build generates the bucket ranges covering [1, maxLevel]. Ranges are
// contiguous and non-overlapping, and the last range always ends exactly at
// maxLevel.
func Build(maxLevel int) []Bucket {
	if maxLevel < 1 {
		return nil
	}
	var out []Bucket
	start := 1
	for start <= maxLevel {
		end := start + stepFor(start) - 1
		out = append(out, Bucket{
			Start:  start,
			End:    end,
			sums:   make(map[string]float64),
			counts: make(map[string]int),
		})
		start = end + 1
	}
	out[len(out)-1].End = maxLevel
	return out
}

func stepFor(start int) int {
	for _, s := range schedule {
		if start <= s.limit {
			return s.step
		}
	}
	return schedule[len(schedule)-1].step
}

// Aggregate buckets the input rows by level and returns one output row per
// bucket with row counts, user totals and per-metric averages. Rows whose
// level does not parse as an integer are excluded entirely; metric values
// that do not parse are excluded from that metric's average only.
func Aggregate(t *table.Table, levelKey, userKey string, metrics []metric.Metric) *table.Table {
	userCandidates := metric.UserAliases
	if userKey != "" {
		userCandidates = append([]string{userKey}, metric.UserAliases...)
	}
	header := []string{"Range Start", "Range End", "Row Count", "Total Users"}
	for _, m := range metrics {
		header = append(header, m.Name)
	}
	header = append(header, annotationColumns...)
	out := &table.Table{Header: header}
	if t == nil || len(t.Rows) == 0 {
		return out
	}

	type parsed struct {
		level int
		row   table.Row
	}
	var rows []parsed
	maxLevel := 0
	for _, row := range t.Rows {
		v, ok := table.Resolve(row, levelKey)
		if !ok {
			continue
		}
		lvl, ok := table.ParseLevel(v)
		if !ok || lvl < 1 {
			continue
		}
		rows = append(rows, parsed{level: lvl, row: row})
		if lvl > maxLevel {
			maxLevel = lvl
		}
	}
	if maxLevel == 0 {
		return out
	}

	bs := Build(maxLevel)
	for _, p := range rows {
		b := find(bs, p.level)
		if b == nil {
			continue
		}
		b.RowCount++
		if users, ok := table.ResolveNumber(p.row, userCandidates...); ok {
			b.TotalUsers += users
		}
		for _, m := range metrics {
			if v, ok := m.Number(p.row); ok {
				b.sums[m.Name] += v
				b.counts[m.Name]++
			}
		}
	}

	for i := range bs {
		b := &bs[i]
		row := table.Row{
			"Range Start": strconv.Itoa(b.Start),
			"Range End":   strconv.Itoa(b.End),
			"Row Count":   strconv.Itoa(b.RowCount),
			"Total Users": strconv.FormatFloat(b.TotalUsers, 'f', -1, 64),
		}
		for _, m := range metrics {
			row[m.Name] = strconv.FormatFloat(b.Average(m.Name), 'f', -1, 64)
		}
		for _, c := range annotationColumns {
			row[c] = ""
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Average returns the mean of the parsed samples for a metric, or 0 when
// the bucket saw none.
func (b *Bucket) Average(name string) float64 {
	if b.counts[name] == 0 {
		return 0
	}
	return b.sums[name] / float64(b.counts[name])
}

// Contains reports whether a level falls inside the bucket range.
func (b *Bucket) Contains(level int) bool {
	return level >= b.Start && level <= b.End
}

func find(bs []Bucket, level int) *Bucket {
	// ranges never overlap, so the first hit is the only hit
	for i := range bs {
		if bs[i].Contains(level) {
			return &bs[i]
		}
	}
	return nil
}
