package votes

import "sort"

// TallyVotes computes the per-button tally for a vote map. One entry per
// known button, zero counts included; percentage against max(total, 1) so an
// empty window never divides by zero. Sorted by count descending; the
// configured button order breaks ties, which keeps the sort stable across
// calls.
func TallyVotes(buttons []string, votes map[string]Vote) []Tally {
	counts := make(map[string]int, len(buttons))
	voters := make(map[string][]string, len(buttons))
	for _, v := range votes {
		counts[v.Button]++
		voters[v.Button] = append(voters[v.Button], v.DisplayName)
	}

	denom := len(votes)
	if denom == 0 {
		denom = 1
	}

	tallies := make([]Tally, 0, len(buttons))
	for _, b := range buttons {
		names := voters[b]
		sort.Strings(names)
		tallies = append(tallies, Tally{
			Button:     b,
			Count:      counts[b],
			Percentage: counts[b] * 100 / denom,
			Voters:     names,
		})
	}
	sort.SliceStable(tallies, func(i, j int) bool { return tallies[i].Count > tallies[j].Count })
	return tallies
}

// pickWinner selects the winning button from a tally: uniformly random among
// the buttons tied for the maximum count, provided that maximum is above
// zero. An empty window has no winner.
func pickWinner(tallies []Tally, rng Rand) string {
	max := 0
	for _, t := range tallies {
		if t.Count > max {
			max = t.Count
		}
	}
	if max == 0 {
		return ""
	}

	var top []string
	for _, t := range tallies {
		if t.Count == max {
			top = append(top, t.Button)
		}
	}
	if len(top) == 1 {
		return top[0]
	}
	return top[rng.Intn(len(top))]
}
