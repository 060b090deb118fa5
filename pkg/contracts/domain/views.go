package domain

import (
	"time"
)

// KeywordMean is one entry of a mean-growth ranking.
type KeywordMean struct {
	Keyword   string  `json:"keyword"`
	MeanRatio float64 `json:"mean_ratio"`
	Count     int     `json:"count"`
}

// KeywordShare is one entry of a share-of-total ranking. Percent is rounded
// to two decimals; the full untruncated set sums to 100 up to rounding.
type KeywordShare struct {
	Keyword string  `json:"keyword"`
	Percent float64 `json:"percent"`
}

// DescriptiveStats summarizes a numeric sample. Count is the number of valid
// observations; every other field is invalid when Count is 0, and Std is
// additionally invalid when Count is 1 (sample standard deviation needs n>=2).
type DescriptiveStats struct {
	Count  int       `json:"count"`
	Mean   NullFloat `json:"mean"`
	Std    NullFloat `json:"std"`
	Min    NullFloat `json:"min"`
	P25    NullFloat `json:"p25"`
	Median NullFloat `json:"median"`
	P75    NullFloat `json:"p75"`
	Max    NullFloat `json:"max"`
}

// BucketCount is one bar of a price histogram.
type BucketCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PivotTable is a row-key x period cross tabulation with mean-valued cells.
// Columns are chronological; ColumnLabels carry the MM-DD axis form. Missing
// combinations stay explicit as invalid cells.
type PivotTable struct {
	RowKey       string        `json:"row_key"`
	Rows         []string      `json:"rows"`
	Columns      []time.Time   `json:"columns"`
	ColumnLabels []string      `json:"column_labels"`
	Cells        [][]NullFloat `json:"cells"`
	NoData       bool          `json:"no_data"`
}

// MarketView is the market-competitiveness dashboard payload.
type MarketView struct {
	TopKeywords   []KeywordMean `json:"top_keywords"`
	CategoryTerms []string      `json:"category_terms"`
	CategoryMean  NullFloat     `json:"category_mean"`
	MarketMean    NullFloat     `json:"market_mean"`
	AboveMarket   bool          `json:"above_market"`
	Insight       string        `json:"insight"`
}

// KeywordView is the keyword share-of-total payload: three truncations of a
// single ranked series.
type KeywordView struct {
	Bars          []KeywordShare `json:"bars"`
	Pie           []KeywordShare `json:"pie"`
	Table         []KeywordShare `json:"table"`
	TotalKeywords int            `json:"total_keywords"`
}

// PriceSuggestion is the derived pricing recommendation: the interquartile
// band, the median as the optimal point, and the most populated bucket.
type PriceSuggestion struct {
	BandLow     NullFloat `json:"band_low"`
	BandHigh    NullFloat `json:"band_high"`
	Optimal     NullFloat `json:"optimal"`
	ModalBucket string    `json:"modal_bucket,omitempty"`
}

// PriceView is the price-analysis payload.
type PriceView struct {
	Stats      DescriptiveStats `json:"stats"`
	Buckets    []BucketCount    `json:"buckets"`
	Cumulative bool             `json:"cumulative"`
	Suggestion PriceSuggestion  `json:"suggestion"`
}

// TrendSeries is one keyword's points within the requested window.
type TrendSeries struct {
	Keyword string       `json:"keyword"`
	Points  []TrendPoint `json:"points"`
}

// GoldenWindowSummary describes the post-anchor demand window and the
// campaign lead date derived from it.
type GoldenWindowSummary struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	CampaignStart time.Time `json:"campaign_start"`
	MeanRatio     NullFloat `json:"mean_ratio"`
}

// TrendView is the trend-dashboard payload. SelectionRequired is set, and the
// series left empty, when the caller explicitly selected zero keywords.
type TrendView struct {
	From              time.Time           `json:"from"`
	To                time.Time           `json:"to"`
	Anchor            time.Time           `json:"anchor"`
	AvailableKeywords []string            `json:"available_keywords"`
	SelectedKeywords  []string            `json:"selected_keywords"`
	SelectionRequired bool                `json:"selection_required,omitempty"`
	Series            []TrendSeries       `json:"series"`
	GoldenWindow      GoldenWindowSummary `json:"golden_window"`
	Segments          PivotTable          `json:"segments"`
}

// SpecShare is one static product-spec policy line (share of demand observed
// for an attribute value in the upstream study).
type SpecShare struct {
	Attribute string  `json:"attribute"`
	Option    string  `json:"option"`
	Percent   float64 `json:"percent"`
}

// TimingPlan carries the launch-timing recommendation.
type TimingPlan struct {
	Anchor        time.Time `json:"anchor"`
	CampaignStart time.Time `json:"campaign_start"`
	GoldenStart   time.Time `json:"golden_start"`
	GoldenEnd     time.Time `json:"golden_end"`
	PushWeeks     int       `json:"push_weeks"`
}

// StrategyView recombines the other views into a launch-strategy summary.
type StrategyView struct {
	Market          MarketView     `json:"market"`
	MedianPrice     NullFloat      `json:"median_price"`
	ModalBucket     string         `json:"modal_bucket,omitempty"`
	TopKeywords     []KeywordShare `json:"top_keywords"`
	SpecSuggestions []SpecShare    `json:"spec_suggestions"`
	ColorPriority   []string       `json:"color_priority"`
	Timing          TimingPlan     `json:"timing"`
	ReportAvailable bool           `json:"report_available"`
}

// ReloadStatus reports the outcome of a manual data reload.
type ReloadStatus struct {
	LoadedAt       time.Time `json:"loaded_at"`
	TrendRows      int       `json:"trend_rows"`
	ExpansionRows  int       `json:"expansion_rows"`
	ComparisonRows int       `json:"comparison_rows"`
	SegmentRows    int       `json:"segment_rows"`
	Listings       int       `json:"listings"`
}
