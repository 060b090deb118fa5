package analytics

import (
	"math"

	"trendpulse/pkg/contracts/domain"
)

// BucketScheme partitions [0, +inf) into half-open intervals
// [edge[i], edge[i+1]). A value equal to a boundary falls into the upper
// bucket. UpperEdges holds the exclusive upper edge of each bucket except the
// last, which is unbounded; len(Labels) == len(UpperEdges)+1.
type BucketScheme struct {
	UpperEdges []float64
	Labels     []string
}

// PriceBuckets is the single shared price-band definition. Every consumer of
// price binning (histogram, modal bucket, exports) goes through this scheme
// so the bands cannot drift apart.
func PriceBuckets() BucketScheme {
	return BucketScheme{
		UpperEdges: []float64{50000, 100000, 150000, 200000, 300000},
		Labels:     []string{"~5만원", "5~10만원", "10~15만원", "15~20만원", "20~30만원", "30만원~"},
	}
}

// Histogram counts the valid prices per bucket. Missing prices are excluded;
// an all-missing input still yields the full zero-count table so charts keep
// their axis.
func (s BucketScheme) Histogram(prices []domain.NullFloat) []domain.BucketCount {
	counts := make([]domain.BucketCount, len(s.Labels))
	for i, label := range s.Labels {
		counts[i] = domain.BucketCount{Label: label}
	}
	for _, p := range prices {
		if !p.Valid {
			continue
		}
		counts[s.bucketIndex(p.Value)].Count++
	}
	return counts
}

func (s BucketScheme) bucketIndex(v float64) int {
	for i, edge := range s.UpperEdges {
		if v < edge {
			return i
		}
	}
	return len(s.UpperEdges)
}

// Cumulative converts per-bucket counts into a running total, preserving
// labels and order.
func Cumulative(counts []domain.BucketCount) []domain.BucketCount {
	out := make([]domain.BucketCount, len(counts))
	running := 0
	for i, c := range counts {
		running += c.Count
		out[i] = domain.BucketCount{Label: c.Label, Count: running}
	}
	return out
}

// ModalBucket returns the label of the most populated bucket. Earlier buckets
// win ties; an empty histogram has no mode.
func ModalBucket(counts []domain.BucketCount) (string, bool) {
	best := -1
	bestCount := math.MinInt
	for i, c := range counts {
		if c.Count > bestCount {
			best = i
			bestCount = c.Count
		}
	}
	if best < 0 || bestCount <= 0 {
		return "", false
	}
	return counts[best].Label, true
}
