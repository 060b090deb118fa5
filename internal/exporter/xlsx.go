// Package exporter writes dashboard payloads to Excel workbooks.
package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"trendpulse/pkg/contracts/domain"
)

// Sheet names of the strategy workbook.
const (
	SheetStrategy = "Strategy"
	SheetKeywords = "Keywords"
	SheetPricing  = "Pricing"
)

// WriteStrategyWorkbook writes the launch-strategy summary, the keyword
// ranking and the price analysis as a three-sheet xlsx workbook.
func WriteStrategyWorkbook(path string, strategy *domain.StrategyView, keywords *domain.KeywordView, price *domain.PriceView) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeStrategySheet(f, strategy); err != nil {
		return fmt.Errorf("strategy sheet: %w", err)
	}
	if err := writeKeywordSheet(f, keywords); err != nil {
		return fmt.Errorf("keyword sheet: %w", err)
	}
	if err := writePricingSheet(f, price); err != nil {
		return fmt.Errorf("pricing sheet: %w", err)
	}

	// the default sheet is replaced by the strategy sheet
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(SheetStrategy)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeStrategySheet(f *excelize.File, view *domain.StrategyView) error {
	if _, err := f.NewSheet(SheetStrategy); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Market"},
		{"Category mean growth", nullFloatCell(view.Market.CategoryMean)},
		{"Market mean growth", nullFloatCell(view.Market.MarketMean)},
		{"Above market", view.Market.AboveMarket},
		{"Insight", view.Market.Insight},
		{},
		{"Pricing"},
		{"Median price", nullFloatCell(view.MedianPrice)},
		{"Modal bucket", view.ModalBucket},
		{},
		{"Timing"},
		{"Anchor", view.Timing.Anchor.Format("2006-01-02")},
		{"Campaign start", view.Timing.CampaignStart.Format("2006-01-02")},
		{"Golden window", view.Timing.GoldenStart.Format("2006-01-02") + " ~ " + view.Timing.GoldenEnd.Format("2006-01-02")},
		{"Push weeks", view.Timing.PushWeeks},
		{},
		{"Product spec"},
	}
	for _, s := range view.SpecSuggestions {
		rows = append(rows, []interface{}{s.Attribute, s.Option, s.Percent})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Color priority"})
	for i, c := range view.ColorPriority {
		rows = append(rows, []interface{}{i + 1, c})
	}

	return writeRows(f, SheetStrategy, rows)
}

func writeKeywordSheet(f *excelize.File, view *domain.KeywordView) error {
	if _, err := f.NewSheet(SheetKeywords); err != nil {
		return err
	}

	rows := [][]interface{}{{"Keyword", "Share %"}}
	for _, s := range view.Table {
		rows = append(rows, []interface{}{s.Keyword, s.Percent})
	}
	return writeRows(f, SheetKeywords, rows)
}

func writePricingSheet(f *excelize.File, view *domain.PriceView) error {
	if _, err := f.NewSheet(SheetPricing); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Statistic", "Value"},
		{"Count", view.Stats.Count},
		{"Mean", nullFloatCell(view.Stats.Mean)},
		{"Median", nullFloatCell(view.Stats.Median)},
		{"Std", nullFloatCell(view.Stats.Std)},
		{"Min", nullFloatCell(view.Stats.Min)},
		{"P25", nullFloatCell(view.Stats.P25)},
		{"P75", nullFloatCell(view.Stats.P75)},
		{"Max", nullFloatCell(view.Stats.Max)},
		{},
		{"Bucket", "Count"},
	}
	for _, b := range view.Buckets {
		rows = append(rows, []interface{}{b.Label, b.Count})
	}
	return writeRows(f, SheetPricing, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// nullFloatCell renders missing values as empty cells.
func nullFloatCell(v domain.NullFloat) interface{} {
	if !v.Valid {
		return ""
	}
	return v.Value
}
