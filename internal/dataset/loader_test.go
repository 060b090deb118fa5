package dataset

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// writeFixtures lays down a minimal valid five-file data directory.
func writeFixtures(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, FileComparison, "keyword,period,ratio\n트렌치코트,2025-02-03,55.5\n봄자켓,2025-02-03,20\n")
	writeFile(t, dir, FileListings, "title,lprice,mallName,brand\n클래식 트렌치,89000,스토어A,브랜드X\n오버핏 트렌치,,스토어B,\n")
	writeFile(t, dir, FileExpansion, "keyword,period,ratio\n트렌치코트,2025-02-03,70\n버버리코트,2025-02-03,30\n")
	writeFile(t, dir, FileCoreTrend, "keyword,period,ratio\n트렌치코트,2025-01-27,10\n트렌치코트,2025-02-03,40\n")
	writeFile(t, dir, FileSegments, "segment,period,ratio\n여성,2025-02-03,30\n남성,2025-02-03,10\n")
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)

	loader := NewLoader(dir, testLogger())
	snap, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Comparison, 2)
	assert.Equal(t, "트렌치코트", snap.Comparison[0].Keyword)
	assert.Equal(t, 2025, snap.Comparison[0].Period.Year())
	require.True(t, snap.Comparison[0].Ratio.Valid)
	assert.InDelta(t, 55.5, snap.Comparison[0].Ratio.Value, 1e-9)

	require.Len(t, snap.Listings, 2)
	assert.Equal(t, "클래식 트렌치", snap.Listings[0].Title)
	assert.Equal(t, "스토어A", snap.Listings[0].Mall)
	require.True(t, snap.Listings[0].Price.Valid)
	assert.InDelta(t, 89000, snap.Listings[0].Price.Value, 1e-9)
	// empty price cell coerced to missing, row kept
	assert.False(t, snap.Listings[1].Price.Valid)

	assert.Len(t, snap.Expansion, 2)
	assert.Len(t, snap.CoreTrend, 2)
	assert.Len(t, snap.Segments, 2)
	assert.Equal(t, domain.SegmentKeySegment, snap.SegmentKey)
	assert.False(t, snap.LoadedAt.IsZero())
}

func TestLoaderCoercesBadRatio(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	writeFile(t, dir, FileCoreTrend, "keyword,period,ratio\n트렌치코트,2025-02-03,not-a-number\n")

	snap, err := NewLoader(dir, testLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.CoreTrend, 1)
	assert.False(t, snap.CoreTrend[0].Ratio.Valid)
}

func TestLoaderMissingFileFailsWholeLoad(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, FileExpansion)))

	snap, err := NewLoader(dir, testLogger()).Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, snap)
	assert.Contains(t, err.Error(), FileExpansion)
}

func TestLoaderAggregatesAllFileErrors(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, FileExpansion)))
	require.NoError(t, os.Remove(filepath.Join(dir, FileSegments)))

	_, err := NewLoader(dir, testLogger()).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), FileExpansion)
	assert.Contains(t, err.Error(), FileSegments)
}

func TestLoaderBadPeriodFailsFile(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	writeFile(t, dir, FileCoreTrend, "keyword,period,ratio\n트렌치코트,whenever,40\n")

	snap, err := NewLoader(dir, testLogger()).Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, snap)
	assert.Contains(t, err.Error(), FileCoreTrend)
}

func TestLoaderMissingColumnFailsFile(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	writeFile(t, dir, FileComparison, "keyword,period\n트렌치코트,2025-02-03\n")

	_, err := NewLoader(dir, testLogger()).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ratio")
}

func TestLoaderSegmentKeyFallsBackToKeyword(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	writeFile(t, dir, FileSegments, "keyword,period,ratio\n20대,2025-02-03,15\n")

	snap, err := NewLoader(dir, testLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.SegmentKeyKeyword, snap.SegmentKey)
	require.Len(t, snap.Segments, 1)
	assert.Equal(t, "20대", snap.Segments[0].Keyword)
}

func TestLoaderSegmentKeyNeitherColumn(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	writeFile(t, dir, FileSegments, "group,period,ratio\n여성,2025-02-03,15\n")

	_, err := NewLoader(dir, testLogger()).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), FileSegments)
}

func TestLoaderListingsWithoutPriceColumn(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	writeFile(t, dir, FileListings, "title,mallName\n클래식 트렌치,스토어A\n")

	snap, err := NewLoader(dir, testLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Listings, 1)
	assert.False(t, snap.Listings[0].Price.Valid)
}

func TestLoaderDateLayouts(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	writeFile(t, dir, FileCoreTrend,
		"keyword,period,ratio\na,2025-02-03,1\nb,2025-02-03 00:00:00,2\nc,2025/02/03,3\n")

	snap, err := NewLoader(dir, testLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.CoreTrend, 3)
	for _, p := range snap.CoreTrend {
		assert.Equal(t, "2025-02-03", p.Period.Format("2006-01-02"))
	}
}
