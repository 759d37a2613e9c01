package core

import (
	"sort"
	"strings"
)

// HighTemperature is the threshold above which a unit is flagged in tables.
const HighTemperature = 115.0

// DefaultLeaderboardSize is the number of units shown on the leaderboard.
const DefaultLeaderboardSize = 5

// Overheated reports whether the unit runs above HighTemperature.
func (r EquipmentRecord) Overheated() bool {
	return r.Temperature > HighTemperature
}

// Search returns the rows whose name contains q, ignoring case. An empty
// query returns every row.
func (v View) Search(q string) Dataset {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return v.Rows
	}

	out := Dataset{}
	for _, r := range v.Rows {
		if strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	return out
}

// Leaderboard ranks units by temperature per unit of pressure, lowest first,
// and returns the top n. Units at zero pressure have no ratio and are left
// out. Equal ratios keep dataset order.
func (v View) Leaderboard(n int) []EfficiencyEntry {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}

	ranked := make([]EfficiencyEntry, 0, len(v.Rows))
	for _, r := range v.Rows {
		if r.Pressure == 0 {
			continue
		}
		ranked = append(ranked, EfficiencyEntry{
			Name:  r.Name,
			Type:  r.Type,
			Ratio: r.Temperature / r.Pressure,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Ratio < ranked[j].Ratio
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
