package domain

import (
	"time"
)

// TrendPoint is one row of a search-trend extract: a keyword's relative
// search ratio for one period.
type TrendPoint struct {
	Keyword string    `json:"keyword"`
	Period  time.Time `json:"period"`
	Ratio   NullFloat `json:"ratio"`
}

// Listing is one row of the shopping-listing extract. Price carries the
// `lprice` column; the remaining columns are optional descriptive fields.
type Listing struct {
	Title string    `json:"title,omitempty"`
	Mall  string    `json:"mall,omitempty"`
	Brand string    `json:"brand,omitempty"`
	Price NullFloat `json:"price"`
}

// SegmentKey identifies which column the segment extract is keyed on.
// Detected once at load time, not re-checked per render.
type SegmentKey string

const (
	SegmentKeySegment SegmentKey = "segment"
	SegmentKeyKeyword SegmentKey = "keyword"
)
