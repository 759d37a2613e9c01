package core

import "sort"

// Aggregate computes the KPIs of a dataset. It is a pure function; an empty
// dataset yields a zero count with nil means and max.
//
// Categories are ordered by descending count. Equal counts keep the order in
// which the type first appeared in the dataset.
func Aggregate(ds Dataset) AggregateSummary {
	s := AggregateSummary{UnitCount: len(ds), Categories: []CategoryCount{}}
	if len(ds) == 0 {
		return s
	}

	var sumPressure, sumFlow float64
	maxTemp := ds[0].Temperature
	pos := make(map[string]int)

	for _, r := range ds {
		sumPressure += r.Pressure
		sumFlow += r.Flowrate
		if r.Temperature > maxTemp {
			maxTemp = r.Temperature
		}

		if i, ok := pos[r.Type]; ok {
			s.Categories[i].Count++
			continue
		}
		pos[r.Type] = len(s.Categories)
		s.Categories = append(s.Categories, CategoryCount{Category: r.Type, Count: 1})
	}

	n := float64(len(ds))
	avgPressure := sumPressure / n
	avgFlow := sumFlow / n
	s.AvgPressure = &avgPressure
	s.AvgFlowrate = &avgFlow
	s.MaxTemperature = &maxTemp

	sort.SliceStable(s.Categories, func(i, j int) bool {
		return s.Categories[i].Count > s.Categories[j].Count
	})
	return s
}
