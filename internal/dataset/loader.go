// Package dataset loads the pre-computed CSV extracts the dashboard is built
// on and memoizes them for the lifetime of the process.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"trendpulse/pkg/contracts/domain"
)

// Fixed extract file names inside the configured data directory.
const (
	FileComparison = "ipchun_full_comparison.csv"
	FileListings   = "trench_shopping_items.csv"
	FileExpansion  = "ipchun_trench_v2_expansion.csv"
	FileCoreTrend  = "ipchun_core_trend.csv"
	FileSegments   = "ipchun_trench_segments.csv"
)

// Snapshot is the immutable bundle of all five extracts. It is published only
// when every file loaded successfully; consumers never see a partial bundle.
type Snapshot struct {
	Comparison []domain.TrendPoint
	Listings   []domain.Listing
	Expansion  []domain.TrendPoint
	CoreTrend  []domain.TrendPoint
	Segments   []domain.TrendPoint
	SegmentKey domain.SegmentKey
	LoadedAt   time.Time
}

// Loader reads the five extracts from a directory.
type Loader struct {
	dir    string
	logger *slog.Logger
}

func NewLoader(dir string, logger *slog.Logger) *Loader {
	return &Loader{dir: dir, logger: logger}
}

// Load reads all five files concurrently. Any file failure fails the whole
// load: the returned error aggregates every per-file error and no snapshot is
// returned. Numeric cells that fail to parse become missing markers without
// failing their row; an unparseable period fails the file.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	errs := make([]error, 5)

	var g errgroup.Group
	g.Go(func() error {
		rows, err := l.loadTrendFile(ctx, FileComparison, "keyword")
		if err != nil {
			errs[0] = fmt.Errorf("%s: %w", FileComparison, err)
			return errs[0]
		}
		snap.Comparison = rows
		return nil
	})
	g.Go(func() error {
		listings, err := l.loadListings(ctx, FileListings)
		if err != nil {
			errs[1] = fmt.Errorf("%s: %w", FileListings, err)
			return errs[1]
		}
		snap.Listings = listings
		return nil
	})
	g.Go(func() error {
		rows, err := l.loadTrendFile(ctx, FileExpansion, "keyword")
		if err != nil {
			errs[2] = fmt.Errorf("%s: %w", FileExpansion, err)
			return errs[2]
		}
		snap.Expansion = rows
		return nil
	})
	g.Go(func() error {
		rows, err := l.loadTrendFile(ctx, FileCoreTrend, "keyword")
		if err != nil {
			errs[3] = fmt.Errorf("%s: %w", FileCoreTrend, err)
			return errs[3]
		}
		snap.CoreTrend = rows
		return nil
	})
	g.Go(func() error {
		rows, key, err := l.loadSegments(ctx, FileSegments)
		if err != nil {
			errs[4] = fmt.Errorf("%s: %w", FileSegments, err)
			return errs[4]
		}
		snap.Segments = rows
		snap.SegmentKey = key
		return nil
	})
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("dataset load failed: %w", err)
	}

	snap.LoadedAt = time.Now()
	l.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("comparison_rows", len(snap.Comparison)),
		slog.Int("listings", len(snap.Listings)),
		slog.Int("expansion_rows", len(snap.Expansion)),
		slog.Int("core_trend_rows", len(snap.CoreTrend)),
		slog.Int("segment_rows", len(snap.Segments)),
		slog.String("segment_key", string(snap.SegmentKey)))
	return snap, nil
}

// loadTrendFile reads a (keyword, period, ratio) extract. keyCol names the
// grouping column to read keywords from.
func (l *Loader) loadTrendFile(ctx context.Context, name, keyCol string) ([]domain.TrendPoint, error) {
	header, records, err := l.readCSV(name)
	if err != nil {
		return nil, err
	}

	keyIdx, ok := header[keyCol]
	if !ok {
		return nil, fmt.Errorf("missing %q column", keyCol)
	}
	periodIdx, ok := header["period"]
	if !ok {
		return nil, errors.New("missing \"period\" column")
	}
	ratioIdx, ok := header["ratio"]
	if !ok {
		return nil, errors.New("missing \"ratio\" column")
	}

	points := make([]domain.TrendPoint, 0, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		period, err := parseDate(rec[periodIdx])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+2, err)
		}
		points = append(points, domain.TrendPoint{
			Keyword: strings.TrimSpace(rec[keyIdx]),
			Period:  period,
			Ratio:   domain.ParseNullFloat(rec[ratioIdx]),
		})
	}
	return points, nil
}

// loadListings reads the shopping extract. The price column is optional: when
// absent every listing carries a missing price and price analytics degrade to
// their empty form.
func (l *Loader) loadListings(ctx context.Context, name string) ([]domain.Listing, error) {
	header, records, err := l.readCSV(name)
	if err != nil {
		return nil, err
	}

	priceIdx, hasPrice := header["lprice"]
	if !hasPrice {
		l.logger.Warn("listing extract has no lprice column, price analytics disabled",
			slog.String("file", name))
	}
	titleIdx, hasTitle := header["title"]
	mallIdx, hasMall := header["mallname"]
	if !hasMall {
		mallIdx, hasMall = header["mall"]
	}
	brandIdx, hasBrand := header["brand"]

	listings := make([]domain.Listing, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var item domain.Listing
		if hasTitle {
			item.Title = strings.TrimSpace(rec[titleIdx])
		}
		if hasMall {
			item.Mall = strings.TrimSpace(rec[mallIdx])
		}
		if hasBrand {
			item.Brand = strings.TrimSpace(rec[brandIdx])
		}
		if hasPrice {
			item.Price = domain.ParseNullFloat(rec[priceIdx])
		}
		listings = append(listings, item)
	}
	return listings, nil
}

// loadSegments reads the segment extract, detecting whether rows are keyed on
// a dedicated segment column or fall back to the keyword column. Detection
// happens once here; renders trust the Snapshot.
func (l *Loader) loadSegments(ctx context.Context, name string) ([]domain.TrendPoint, domain.SegmentKey, error) {
	header, _, err := l.readCSV(name)
	if err != nil {
		return nil, "", err
	}

	key := domain.SegmentKeyKeyword
	col := "keyword"
	if _, ok := header["segment"]; ok {
		key = domain.SegmentKeySegment
		col = "segment"
	} else if _, ok := header["keyword"]; !ok {
		return nil, "", errors.New("neither \"segment\" nor \"keyword\" column present")
	}

	rows, err := l.loadTrendFile(ctx, name, col)
	if err != nil {
		return nil, "", err
	}
	return rows, key, nil
}

// readCSV reads a whole extract, returning a lower-cased header index and the
// data records. Record length is validated by encoding/csv against the header.
func (l *Loader) readCSV(name string) (map[string]int, [][]string, error) {
	path := filepath.Join(l.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	headerRec, err := reader.Read()
	if err == io.EOF {
		return nil, nil, errors.New("empty file")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	header := make(map[string]int, len(headerRec))
	for i, col := range headerRec {
		header[strings.ToLower(strings.TrimSpace(stripBOM(col)))] = i
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read records: %w", err)
	}
	return header, records, nil
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}

// parseDate accepts the period formats the upstream exporters emit.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006/01/02",
		"01/02/2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable period %q", s)
}
