// Package report derives load statistics from an ordered set of stations,
// including the most and least loaded stations relative to their capacity.
package report

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/cwire/core/station"
)

// Summary aggregates a set of stations.
type Summary struct {
	Stations      int     `json:"stations"`
	TotalCapacity int64   `json:"total_capacity"`
	TotalLoad     int64   `json:"total_load"`
	MeanLoad      float64 `json:"mean_load"`
	StdDevLoad    float64 `json:"stddev_load"`
	// Utilisation is TotalLoad / TotalCapacity, zero when no capacity is known.
	Utilisation float64 `json:"utilisation"`
}

// Summarize computes the Summary of stations.
func Summarize(stations []station.Station) Summary {
	sum := Summary{Stations: len(stations)}
	if len(stations) == 0 {
		return sum
	}
	loads := make([]float64, len(stations))
	for i, s := range stations {
		sum.TotalCapacity += s.Capacity
		sum.TotalLoad += s.Load
		loads[i] = float64(s.Load)
	}
	if len(loads) > 1 {
		sum.MeanLoad, sum.StdDevLoad = stat.MeanStdDev(loads, nil)
	} else {
		sum.MeanLoad = floats.Sum(loads)
	}
	if sum.TotalCapacity > 0 {
		sum.Utilisation = float64(sum.TotalLoad) / float64(sum.TotalCapacity)
	}
	return sum
}

// Margin is a station with its spare capacity (capacity minus load).
type Margin struct {
	station.Station
	Spare int64 `json:"spare"`
}

// MinMax returns up to n stations with the least spare capacity, most
// overloaded first, and up to n with the most spare capacity, largest
// first. Ties are broken by station ID. With fewer than 2n stations the two
// lists overlap.
func MinMax(stations []station.Station, n int) (least, most []Margin) {
	if n <= 0 || len(stations) == 0 {
		return nil, nil
	}
	margins := make([]Margin, len(stations))
	for i, s := range stations {
		margins[i] = Margin{Station: s, Spare: s.Capacity - s.Load}
	}
	slices.SortFunc(margins, func(a, b Margin) int {
		return cmp.Or(cmp.Compare(a.Spare, b.Spare), cmp.Compare(a.ID, b.ID))
	})
	k := min(n, len(margins))
	least = slices.Clone(margins[:k])
	most = slices.Clone(margins[len(margins)-k:])
	slices.Reverse(most)
	return least, most
}
