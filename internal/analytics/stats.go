package analytics

import (
	"math"
	"sort"

	"spendboard/internal/core"
)

// Quantile returns the q-quantile of values using linear interpolation
// between closest ranks. It returns NaN for an empty slice.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// MeanGrowth averages growth rates, skipping new entries which have no
// finite rate. Stopped entries count as -100%.
func MeanGrowth(gs []core.Growth) (float64, bool) {
	var vals []float64
	for _, g := range gs {
		if g.Kind == core.GrowthNew {
			continue
		}
		vals = append(vals, g.Percent)
	}
	return mean(vals)
}

// round1 rounds half away from zero to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
