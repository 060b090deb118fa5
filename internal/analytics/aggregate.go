// Package analytics holds the aggregation primitives the dashboard views are
// assembled from. Every function is pure: it takes parsed rows and returns a
// derived value, leaving missing-value policy explicit at each call site.
package analytics

import (
	"math"
	"sort"
	"strings"

	"trendpulse/pkg/contracts/domain"
)

// TopNByMean groups points by keyword, averages the valid ratios per keyword
// and returns the top n by mean in descending order. Keywords whose ratios
// are all missing are dropped. Ties keep first-occurrence order (the sort is
// stable over input order).
func TopNByMean(points []domain.TrendPoint, n int) []domain.KeywordMean {
	means := MeanByKeyword(points)
	if n >= 0 && len(means) > n {
		means = means[:n]
	}
	return means
}

// MeanByKeyword is the full (untruncated) mean-growth ranking.
func MeanByKeyword(points []domain.TrendPoint) []domain.KeywordMean {
	type acc struct {
		sum   float64
		count int
	}
	sums := make(map[string]*acc)
	var order []string
	for _, p := range points {
		if !p.Ratio.Valid {
			continue
		}
		a, ok := sums[p.Keyword]
		if !ok {
			a = &acc{}
			sums[p.Keyword] = a
			order = append(order, p.Keyword)
		}
		a.sum += p.Ratio.Value
		a.count++
	}

	means := make([]domain.KeywordMean, 0, len(order))
	for _, kw := range order {
		a := sums[kw]
		means = append(means, domain.KeywordMean{
			Keyword:   kw,
			MeanRatio: a.sum / float64(a.count),
			Count:     a.count,
		})
	}
	sort.SliceStable(means, func(i, j int) bool {
		return means[i].MeanRatio > means[j].MeanRatio
	})
	return means
}

// ShareOfTotal groups points by keyword, sums the valid ratios and expresses
// each keyword's sum as a percentage of the grand total, rounded to two
// decimals and sorted descending (stable). A zero or empty total yields an
// empty ranking.
func ShareOfTotal(points []domain.TrendPoint) []domain.KeywordShare {
	sums := make(map[string]float64)
	var order []string
	var total float64
	for _, p := range points {
		if !p.Ratio.Valid {
			continue
		}
		if _, ok := sums[p.Keyword]; !ok {
			order = append(order, p.Keyword)
		}
		sums[p.Keyword] += p.Ratio.Value
		total += p.Ratio.Value
	}
	if total == 0 {
		return nil
	}

	shares := make([]domain.KeywordShare, 0, len(order))
	for _, kw := range order {
		shares = append(shares, domain.KeywordShare{
			Keyword: kw,
			Percent: round2(sums[kw] / total * 100),
		})
	}
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Percent > shares[j].Percent
	})
	return shares
}

// FilterKeywordContains keeps points whose keyword contains any of the given
// substrings. Used to carve the category rows out of the comparison extract.
func FilterKeywordContains(points []domain.TrendPoint, terms []string) []domain.TrendPoint {
	var out []domain.TrendPoint
	for _, p := range points {
		for _, t := range terms {
			if t != "" && strings.Contains(p.Keyword, t) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// MeanRatio averages the valid ratios across all points. All-missing input
// yields the missing marker.
func MeanRatio(points []domain.TrendPoint) domain.NullFloat {
	var sum float64
	var n int
	for _, p := range points {
		if p.Ratio.Valid {
			sum += p.Ratio.Value
			n++
		}
	}
	if n == 0 {
		return domain.Missing()
	}
	return domain.Float(sum / float64(n))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
