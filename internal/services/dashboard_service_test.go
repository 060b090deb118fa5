package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/config"
	"trendpulse/internal/dataset"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// newService builds a service over a fixture data directory. Category rows
// (트렌치코트) grow well above the rest of the market.
func newService(t *testing.T) (*DashboardService, string) {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, dataset.FileComparison,
		"keyword,period,ratio\n"+
			"트렌치코트,2025-02-03,80\n"+
			"트렌치코트,2025-02-10,60\n"+
			"봄자켓,2025-02-03,20\n"+
			"가디건,2025-02-03,10\n")
	writeFile(t, dir, dataset.FileListings,
		"title,lprice,mallName,brand\n"+
			"클래식 트렌치,30000,몰A,브랜드A\n"+
			"싱글 트렌치,70000,몰B,브랜드B\n"+
			"프리미엄 트렌치,120000,몰C,브랜드C\n")
	writeFile(t, dir, dataset.FileExpansion,
		"keyword,period,ratio\n"+
			"트렌치코트,2025-02-03,50\n"+
			"버버리코트,2025-02-03,30\n"+
			"스프링코트,2025-02-03,20\n")
	writeFile(t, dir, dataset.FileCoreTrend,
		"keyword,period,ratio\n"+
			"kw1,2025-01-27,5\n"+
			"kw2,2025-01-27,6\n"+
			"kw3,2025-02-03,7\n"+
			"kw4,2025-02-10,8\n"+
			"kw5,2025-02-17,9\n"+
			"kw6,2025-02-24,10\n")
	writeFile(t, dir, dataset.FileSegments,
		"segment,period,ratio\n여성,2025-02-03,30\n남성,2025-02-03,10\n")

	cfg := config.Default()
	cfg.Data.Dir = dir
	store := dataset.NewStore(dataset.NewLoader(dir, testLogger()), testLogger())
	return NewDashboardService(store, cfg, testLogger()), dir
}

func TestMarketViewAboveMarket(t *testing.T) {
	svc, _ := newService(t)

	view, err := svc.MarketView(context.Background())
	require.NoError(t, err)

	// category mean (80,60) = 70; market mean (80,60,20,10) = 42.5
	require.True(t, view.CategoryMean.Valid)
	assert.InDelta(t, 70, view.CategoryMean.Value, 1e-9)
	require.True(t, view.MarketMean.Valid)
	assert.InDelta(t, 42.5, view.MarketMean.Value, 1e-9)
	assert.True(t, view.AboveMarket)
	assert.Contains(t, view.Insight, "상회")

	require.NotEmpty(t, view.TopKeywords)
	assert.Equal(t, "트렌치코트", view.TopKeywords[0].Keyword)
}

func TestMarketViewFailsClosedWhenDatasetBroken(t *testing.T) {
	svc, dir := newService(t)
	require.NoError(t, os.Remove(filepath.Join(dir, dataset.FileComparison)))

	_, err := svc.MarketView(context.Background())
	require.ErrorIs(t, err, ErrDatasetUnavailable)

	// every view fails the same way, no partial rendering
	_, err = svc.KeywordView(context.Background())
	require.ErrorIs(t, err, ErrDatasetUnavailable)
	_, err = svc.PriceView(context.Background(), false)
	require.ErrorIs(t, err, ErrDatasetUnavailable)
	_, err = svc.TrendView(context.Background(), TrendParams{})
	require.ErrorIs(t, err, ErrDatasetUnavailable)
	_, err = svc.StrategyView(context.Background())
	require.ErrorIs(t, err, ErrDatasetUnavailable)
}

func TestKeywordView(t *testing.T) {
	svc, _ := newService(t)

	view, err := svc.KeywordView(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, view.TotalKeywords)
	require.Len(t, view.Bars, 3)
	assert.Equal(t, "트렌치코트", view.Bars[0].Keyword)
	assert.InDelta(t, 50, view.Bars[0].Percent, 1e-9)

	// same ranking, three truncations
	assert.Equal(t, view.Bars, view.Pie)
	assert.Equal(t, view.Bars, view.Table)
}

func TestPriceView(t *testing.T) {
	svc, _ := newService(t)

	view, err := svc.PriceView(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 3, view.Stats.Count)
	require.True(t, view.Stats.Median.Valid)
	assert.InDelta(t, 70000, view.Stats.Median.Value, 1e-9)

	require.Len(t, view.Buckets, 6)
	assert.Equal(t, 1, view.Buckets[0].Count)
	assert.Equal(t, 1, view.Buckets[1].Count)
	assert.Equal(t, 1, view.Buckets[2].Count)
	assert.Equal(t, 0, view.Buckets[3].Count)

	require.True(t, view.Suggestion.Optimal.Valid)
	assert.InDelta(t, 70000, view.Suggestion.Optimal.Value, 1e-9)
	assert.InDelta(t, 50000, view.Suggestion.BandLow.Value, 1e-9)
	assert.InDelta(t, 95000, view.Suggestion.BandHigh.Value, 1e-9)
	assert.Equal(t, "~5만원", view.Suggestion.ModalBucket)
}

func TestPriceViewCumulative(t *testing.T) {
	svc, _ := newService(t)

	view, err := svc.PriceView(context.Background(), true)
	require.NoError(t, err)

	assert.True(t, view.Cumulative)
	counts := make([]int, len(view.Buckets))
	for i, b := range view.Buckets {
		counts[i] = b.Count
	}
	assert.Equal(t, []int{1, 2, 3, 3, 3, 3}, counts)
	// the suggestion still reflects per-bucket counts
	assert.Equal(t, "~5만원", view.Suggestion.ModalBucket)
}

func TestTrendViewDefaults(t *testing.T) {
	svc, _ := newService(t)

	view, err := svc.TrendView(context.Background(), TrendParams{})
	require.NoError(t, err)

	// full range by default
	assert.Equal(t, "2025-01-27", view.From.Format("2006-01-02"))
	assert.Equal(t, "2025-02-24", view.To.Format("2006-01-02"))

	assert.Equal(t, []string{"kw1", "kw2", "kw3", "kw4", "kw5", "kw6"}, view.AvailableKeywords)
	// default selection is the first five
	assert.Equal(t, []string{"kw1", "kw2", "kw3", "kw4", "kw5"}, view.SelectedKeywords)
	assert.False(t, view.SelectionRequired)
	require.Len(t, view.Series, 5)
	assert.Equal(t, "kw1", view.Series[0].Keyword)
	require.Len(t, view.Series[0].Points, 1)
}

func TestTrendViewWindow(t *testing.T) {
	svc, _ := newService(t)

	from := day("2025-02-03")
	to := day("2025-02-17")
	view, err := svc.TrendView(context.Background(), TrendParams{From: &from, To: &to})
	require.NoError(t, err)

	// boundaries inclusive: kw3 (02-03) and kw5 (02-17) stay in
	assert.Equal(t, []string{"kw3", "kw4", "kw5"}, view.AvailableKeywords)
	assert.Equal(t, []string{"kw3", "kw4", "kw5"}, view.SelectedKeywords)
}

func TestTrendViewExplicitEmptySelection(t *testing.T) {
	svc, _ := newService(t)

	view, err := svc.TrendView(context.Background(), TrendParams{Keywords: []string{}})
	require.NoError(t, err)

	assert.True(t, view.SelectionRequired)
	assert.Empty(t, view.Series)
	// the rest of the payload is still rendered
	assert.NotEmpty(t, view.AvailableKeywords)
	assert.False(t, view.GoldenWindow.Start.IsZero())
}

func TestTrendViewGoldenWindow(t *testing.T) {
	svc, _ := newService(t)

	view, err := svc.TrendView(context.Background(), TrendParams{})
	require.NoError(t, err)

	assert.Equal(t, "2025-02-03", view.GoldenWindow.Start.Format("2006-01-02"))
	assert.Equal(t, "2025-02-17", view.GoldenWindow.End.Format("2006-01-02"))
	assert.Equal(t, "2025-01-27", view.GoldenWindow.CampaignStart.Format("2006-01-02"))

	// points inside [02-03, 02-17]: 7, 8, 9
	require.True(t, view.GoldenWindow.MeanRatio.Valid)
	assert.InDelta(t, 8, view.GoldenWindow.MeanRatio.Value, 1e-9)
}

func TestTrendViewSegmentPivot(t *testing.T) {
	svc, _ := newService(t)

	view, err := svc.TrendView(context.Background(), TrendParams{})
	require.NoError(t, err)

	assert.False(t, view.Segments.NoData)
	assert.Equal(t, "segment", view.Segments.RowKey)
	assert.Equal(t, []string{"남성", "여성"}, view.Segments.Rows)
	assert.Equal(t, []string{"02-03"}, view.Segments.ColumnLabels)
}

func TestTrendViewEmptySegmentsNoData(t *testing.T) {
	svc, dir := newService(t)
	writeFile(t, dir, dataset.FileSegments, "segment,period,ratio\n")

	view, err := svc.TrendView(context.Background(), TrendParams{})
	require.NoError(t, err)
	assert.True(t, view.Segments.NoData)
}

func TestStrategyView(t *testing.T) {
	svc, _ := newService(t)

	view, err := svc.StrategyView(context.Background())
	require.NoError(t, err)

	assert.True(t, view.Market.AboveMarket)
	require.True(t, view.MedianPrice.Valid)
	assert.InDelta(t, 70000, view.MedianPrice.Value, 1e-9)
	assert.Equal(t, "~5만원", view.ModalBucket)
	require.Len(t, view.TopKeywords, 3)
	assert.Equal(t, "트렌치코트", view.TopKeywords[0].Keyword)

	require.Len(t, view.SpecSuggestions, 3)
	assert.Equal(t, "Short", view.SpecSuggestions[0].Option)
	assert.InDelta(t, 26.35, view.SpecSuggestions[0].Percent, 1e-9)
	assert.Equal(t, []string{"Black", "Navy", "Khaki", "Beige"}, view.ColorPriority)

	assert.Equal(t, "2025-01-27", view.Timing.CampaignStart.Format("2006-01-02"))
	assert.Equal(t, "2025-02-17", view.Timing.GoldenEnd.Format("2006-01-02"))
	assert.Equal(t, 2, view.Timing.PushWeeks)
	assert.False(t, view.ReportAvailable)
}

func TestReportFile(t *testing.T) {
	svc, dir := newService(t)

	_, _, err := svc.ReportFile(context.Background())
	require.ErrorIs(t, err, ErrReportNotFound)

	writeFile(t, dir, "TRENCH_ANALYSIS_REPORT.md", "# 트렌치코트 분석 리포트\n")
	name, content, err := svc.ReportFile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TRENCH_ANALYSIS_REPORT.md", name)
	assert.Contains(t, string(content), "분석 리포트")
}

func TestReloadData(t *testing.T) {
	svc, dir := newService(t)
	ctx := context.Background()

	_, err := svc.MarketView(ctx)
	require.NoError(t, err)

	writeFile(t, dir, dataset.FileCoreTrend, "keyword,period,ratio\n신상,2025-02-03,99\n")
	status, err := svc.ReloadData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.TrendRows)
	assert.Equal(t, 3, status.Listings)
	assert.False(t, status.LoadedAt.IsZero())

	view, err := svc.TrendView(ctx, TrendParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"신상"}, view.AvailableKeywords)
}

func TestReloadDataFailure(t *testing.T) {
	svc, dir := newService(t)
	require.NoError(t, os.Remove(filepath.Join(dir, dataset.FileListings)))

	_, err := svc.ReloadData(context.Background())
	require.ErrorIs(t, err, ErrDatasetUnavailable)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
