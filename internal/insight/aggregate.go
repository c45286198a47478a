package insight

import (
	"sort"

	"github.com/mtokuda/honeysift/internal/category"
)

// topCommandsPerCategory is how many distinct commands each category keeps in
// its frequency ranking.
const topCommandsPerCategory = 5

// Classified is a single classified command, the minimal input aggregation
// needs.
type Classified struct {
	Command  string
	Category category.Label
}

// Aggregate reduces a batch of classifications to a report. Only observed
// categories appear in the maps. Deterministic tie-breaks throughout: command
// rankings order by count descending then command ascending, and attack focus
// ties resolve to the alphabetically smallest category.
func Aggregate(classified []Classified) *Report {
	if len(classified) == 0 {
		return NoData()
	}

	counts := make(map[category.Label]int)
	perCategory := make(map[category.Label]map[string]int)
	for _, c := range classified {
		counts[c.Category]++
		m := perCategory[c.Category]
		if m == nil {
			m = make(map[string]int)
			perCategory[c.Category] = m
		}
		m[c.Command]++
	}

	total := len(classified)
	percentages := make(map[category.Label]float64, len(counts))
	for l, n := range counts {
		percentages[l] = 100 * float64(n) / float64(total)
	}

	top := make(map[category.Label]CommandCounts, len(perCategory))
	for l, m := range perCategory {
		top[l] = rankCommands(m, topCommandsPerCategory)
	}

	var focus category.Label
	best := -1.0
	for _, l := range category.All() {
		if pct, ok := percentages[l]; ok && pct > best {
			best = pct
			focus = l
		}
	}

	return &Report{
		TotalCommands:       total,
		CategoryCounts:      counts,
		CategoryPercentages: percentages,
		TopCommands:         top,
		AttackFocus:         focus,
	}
}

func rankCommands(freq map[string]int, n int) CommandCounts {
	out := make(CommandCounts, 0, len(freq))
	for cmd, count := range freq {
		out = append(out, CommandCount{Command: cmd, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Command < out[j].Command
		}
		return out[i].Count > out[j].Count
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
