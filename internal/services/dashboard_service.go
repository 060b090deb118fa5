// Package services assembles dashboard view payloads from the loaded
// dataset. Each view is a pure function of the snapshot and the request
// parameters; every one fails closed when the snapshot cannot be loaded.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"trendpulse/internal/analytics"
	"trendpulse/internal/config"
	"trendpulse/internal/dataset"
	"trendpulse/pkg/contracts/domain"
)

// specSuggestions is the fixed product-spec guidance from the upstream
// category study. Static policy content, not derived from the extracts.
var specSuggestions = []domain.SpecShare{
	{Attribute: "기장", Option: "Short", Percent: 26.35},
	{Attribute: "기장", Option: "Long", Percent: 17.21},
	{Attribute: "핏", Option: "Loose", Percent: 7.37},
}

// colorPriority is the recommended color rollout order, highest demand first.
var colorPriority = []string{"Black", "Navy", "Khaki", "Beige"}

// DashboardService renders the five dashboard views and the report download.
type DashboardService struct {
	store      *dataset.Store
	analytics  config.AnalyticsConfig
	calendar   analytics.LaunchCalendar
	reportPath string
	logger     *slog.Logger
}

// NewDashboardService creates a dashboard service backed by the given store.
func NewDashboardService(store *dataset.Store, cfg *config.Config, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		store:     store,
		analytics: cfg.Analytics,
		calendar: analytics.LaunchCalendar{
			Anchor:     cfg.Analytics.Anchor(),
			WindowDays: cfg.Analytics.GoldenWindowDays,
			LeadDays:   cfg.Analytics.CampaignLeadDays,
		},
		reportPath: filepath.Join(cfg.Data.Dir, cfg.Data.ReportFile),
		logger:     logger.With(slog.String("service", "dashboard")),
	}
}

// snapshot loads the memoized dataset, translating load failures into the
// service sentinel so handlers can map them to 503.
func (s *DashboardService) snapshot(ctx context.Context) (*dataset.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}
	return snap, nil
}

// MarketView renders the market-competitiveness view: the top keywords by
// mean growth and the category mean against the whole-market mean.
func (s *DashboardService) MarketView(ctx context.Context) (*domain.MarketView, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	category := analytics.FilterKeywordContains(snap.Comparison, s.analytics.CategoryTerms)
	categoryMean := analytics.MeanRatio(category)
	marketMean := analytics.MeanRatio(snap.Comparison)

	view := &domain.MarketView{
		TopKeywords:   analytics.TopNByMean(snap.Comparison, 15),
		CategoryTerms: s.analytics.CategoryTerms,
		CategoryMean:  categoryMean,
		MarketMean:    marketMean,
	}
	if categoryMean.Valid && marketMean.Valid {
		view.AboveMarket = categoryMean.Value > marketMean.Value
		if view.AboveMarket {
			view.Insight = fmt.Sprintf("트렌치코트 성장률(%.2f)이 전체 시장 평균(%.2f)을 상회합니다",
				categoryMean.Value, marketMean.Value)
		} else {
			view.Insight = fmt.Sprintf("트렌치코트 성장률(%.2f)이 전체 시장 평균(%.2f)을 하회합니다",
				categoryMean.Value, marketMean.Value)
		}
	}
	return view, nil
}

// KeywordView renders the keyword demand-share view: three truncations (bar,
// pie, table) of one ranked share-of-total series over the expansion extract.
func (s *DashboardService) KeywordView(ctx context.Context) (*domain.KeywordView, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	shares := analytics.ShareOfTotal(snap.Expansion)
	return &domain.KeywordView{
		Bars:          truncateShares(shares, 15),
		Pie:           truncateShares(shares, 10),
		Table:         truncateShares(shares, 20),
		TotalKeywords: len(shares),
	}, nil
}

// PriceView renders price statistics, the bucket histogram (optionally
// cumulative) and the derived pricing suggestion.
func (s *DashboardService) PriceView(ctx context.Context, cumulative bool) (*domain.PriceView, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	prices := make([]domain.NullFloat, 0, len(snap.Listings))
	for _, item := range snap.Listings {
		prices = append(prices, item.Price)
	}

	stats := analytics.Describe(prices)
	buckets := analytics.PriceBuckets().Histogram(prices)

	suggestion := domain.PriceSuggestion{
		BandLow:  stats.P25,
		BandHigh: stats.P75,
		Optimal:  stats.Median,
	}
	if modal, ok := analytics.ModalBucket(buckets); ok {
		suggestion.ModalBucket = modal
	}

	if cumulative {
		buckets = analytics.Cumulative(buckets)
	}

	return &domain.PriceView{
		Stats:      stats,
		Buckets:    buckets,
		Cumulative: cumulative,
		Suggestion: suggestion,
	}, nil
}

// TrendParams are the trend view request parameters. Nil From/To default to
// the full extract range. A nil Keywords slice means "no explicit selection",
// which defaults to the first keywords of the filtered window; an empty
// non-nil slice is an explicit empty selection.
type TrendParams struct {
	From     *time.Time
	To       *time.Time
	Keywords []string
}

// TrendView renders the core-trend view: per-keyword series in the requested
// window, the golden-window metrics and the segment pivot.
func (s *DashboardService) TrendView(ctx context.Context, params TrendParams) (*domain.TrendView, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	from, to, hasRange := analytics.PeriodRange(snap.CoreTrend)
	if params.From != nil {
		from = *params.From
	}
	if params.To != nil {
		to = *params.To
	}

	var filtered []domain.TrendPoint
	if hasRange || params.From != nil || params.To != nil {
		filtered = analytics.FilterPeriod(snap.CoreTrend, from, to)
	}

	available := keywordOrder(filtered)

	view := &domain.TrendView{
		From:              from,
		To:                to,
		Anchor:            s.calendar.Anchor,
		AvailableKeywords: available,
		GoldenWindow: domain.GoldenWindowSummary{
			Start:         s.calendar.GoldenStart(),
			End:           s.calendar.GoldenEnd(),
			CampaignStart: s.calendar.CampaignStart(),
			MeanRatio:     s.calendar.GoldenWindowMean(filtered),
		},
		Segments: analytics.CrossTab(snap.Segments, string(snap.SegmentKey)),
	}

	selected := params.Keywords
	if selected == nil {
		// default selection: first keywords in occurrence order
		n := s.analytics.DefaultKeywords
		if n > len(available) {
			n = len(available)
		}
		selected = available[:n]
	}
	view.SelectedKeywords = selected

	if len(selected) == 0 {
		// explicit empty selection: prompt, no series computation
		view.SelectionRequired = true
		return view, nil
	}

	view.Series = make([]domain.TrendSeries, 0, len(selected))
	for _, kw := range selected {
		series := domain.TrendSeries{Keyword: kw, Points: []domain.TrendPoint{}}
		for _, p := range filtered {
			if p.Keyword == kw {
				series.Points = append(series.Points, p)
			}
		}
		view.Series = append(view.Series, series)
	}
	return view, nil
}

// StrategyView recombines the other views into the launch-strategy summary.
func (s *DashboardService) StrategyView(ctx context.Context) (*domain.StrategyView, error) {
	market, err := s.MarketView(ctx)
	if err != nil {
		return nil, err
	}
	price, err := s.PriceView(ctx, false)
	if err != nil {
		return nil, err
	}
	keywords, err := s.KeywordView(ctx)
	if err != nil {
		return nil, err
	}

	_, statErr := os.Stat(s.reportPath)

	return &domain.StrategyView{
		Market:          *market,
		MedianPrice:     price.Stats.Median,
		ModalBucket:     price.Suggestion.ModalBucket,
		TopKeywords:     keywords.Pie,
		SpecSuggestions: specSuggestions,
		ColorPriority:   colorPriority,
		Timing: domain.TimingPlan{
			Anchor:        s.calendar.Anchor,
			CampaignStart: s.calendar.CampaignStart(),
			GoldenStart:   s.calendar.GoldenStart(),
			GoldenEnd:     s.calendar.GoldenEnd(),
			PushWeeks:     s.analytics.GoldenWindowDays / 7,
		},
		ReportAvailable: statErr == nil,
	}, nil
}

// ReportFile returns the companion markdown report verbatim. A missing file
// yields ErrReportNotFound; the caller logs a warning and returns 404.
func (s *DashboardService) ReportFile(ctx context.Context) (string, []byte, error) {
	content, err := os.ReadFile(s.reportPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WarnContext(ctx, "analysis report missing",
				slog.String("path", s.reportPath))
			return "", nil, ErrReportNotFound
		}
		return "", nil, fmt.Errorf("read report: %w", err)
	}
	return filepath.Base(s.reportPath), content, nil
}

// ReloadData drops the cached snapshot and loads a fresh one.
func (s *DashboardService) ReloadData(ctx context.Context) (*domain.ReloadStatus, error) {
	snap, err := s.store.Reload(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}

	return &domain.ReloadStatus{
		LoadedAt:       snap.LoadedAt,
		TrendRows:      len(snap.CoreTrend),
		ExpansionRows:  len(snap.Expansion),
		ComparisonRows: len(snap.Comparison),
		SegmentRows:    len(snap.Segments),
		Listings:       len(snap.Listings),
	}, nil
}

// truncateShares keeps the top n entries of an already-ranked share series.
func truncateShares(shares []domain.KeywordShare, n int) []domain.KeywordShare {
	if len(shares) > n {
		return shares[:n]
	}
	return shares
}

// keywordOrder lists distinct keywords in first-occurrence order.
func keywordOrder(points []domain.TrendPoint) []string {
	seen := make(map[string]bool)
	var order []string
	for _, p := range points {
		if !seen[p.Keyword] {
			seen[p.Keyword] = true
			order = append(order, p.Keyword)
		}
	}
	return order
}
