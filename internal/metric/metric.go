// Package metric declares the logical metrics the pipeline tracks and the
// header aliases under which each one arrives in raw exports. Keeping this
// as one table means report code asks for "3 Days Churn" and never has to
// know what the export called it.
package metric

import "github.com/playsift/levelscope/internal/table"

// Metric is a logical metric with its header aliases.
type Metric struct {
	// Name is the canonical column name used in wide-format output.
	Name string
	// Aliases are matched through table.Resolve, first hit wins.
	Aliases []string
	// DiffThreshold is the A/B significance cutoff for |variant-baseline|.
	DiffThreshold float64
	// Percent marks ratio-style metrics for display formatting.
	Percent bool
}

// Tracked lists the metrics carried through pivots and A/B diffs, in output
// column order.
var Tracked = []Metric{
	// "Level Score" headers still match through normalized containment of
	// "score"; an alias containing "level" would resolve the Level column
	// itself when the score cell is empty.
	{Name: "Score", Aliases: []string{"score"}, DiffThreshold: 2},
	{Name: "TotalUser", Aliases: []string{"total user", "total users", "users"}, DiffThreshold: 0},
	{Name: "Instant Churn", Aliases: []string{"instantchurn", "instant churn rate"}, DiffThreshold: 0.01, Percent: true},
	{Name: "3 Days Churn", Aliases: []string{"3dayschurn", "3 day churn", "churn 3d"}, DiffThreshold: 0.01, Percent: true},
	{Name: "7 Days Churn", Aliases: []string{"7dayschurn", "7 day churn", "churn 7d"}, DiffThreshold: 0.01, Percent: true},
}

// LevelAliases locate the level/entity column in a raw export.
var LevelAliases = []string{"Level", "level number", "level no", "levelid"}

// UserAliases locate the per-level user count column.
var UserAliases = []string{"TotalUser", "total user", "total users", "users"}

// ByName returns the tracked metric with the given canonical name.
func ByName(name string) (Metric, bool) {
	for _, m := range Tracked {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Candidates returns the canonical name followed by the aliases, the shape
// table.Resolve expects.
func (m Metric) Candidates() []string {
	return append([]string{m.Name}, m.Aliases...)
}

// Resolve looks the metric up in a row.
func (m Metric) Resolve(row table.Row) (string, bool) {
	return table.Resolve(row, m.Candidates()...)
}

// Number looks the metric up and parses it.
func (m Metric) Number(row table.Row) (float64, bool) {
	return table.ResolveNumber(row, m.Candidates()...)
}
