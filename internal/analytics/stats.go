package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"trendpulse/pkg/contracts/domain"
)

// Describe computes descriptive statistics over the valid values only.
// Quantiles linearly interpolate between order statistics at rank (n-1)*p,
// the standard deviation is the sample (n-1) form. With no valid values it
// returns the zero-count sentinel; with a single value the deviation is
// reported missing.
func Describe(values []domain.NullFloat) domain.DescriptiveStats {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			xs = append(xs, v.Value)
		}
	}
	if len(xs) == 0 {
		return domain.DescriptiveStats{Count: 0}
	}
	sort.Float64s(xs)

	stats := domain.DescriptiveStats{
		Count:  len(xs),
		Mean:   domain.Float(stat.Mean(xs, nil)),
		Min:    domain.Float(xs[0]),
		Max:    domain.Float(xs[len(xs)-1]),
		P25:    domain.Float(Quantile(xs, 0.25)),
		Median: domain.Float(Quantile(xs, 0.5)),
		P75:    domain.Float(Quantile(xs, 0.75)),
	}
	if len(xs) > 1 {
		stats.Std = domain.Float(stat.StdDev(xs, nil))
	}
	return stats
}

// Quantile returns the p-quantile of a sorted, non-empty sample using linear
// interpolation at rank (n-1)*p, so p=0 is the minimum and p=1 the maximum.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
