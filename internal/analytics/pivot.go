package analytics

import (
	"sort"
	"time"

	"trendpulse/pkg/contracts/domain"
)

// CrossTab pivots (keyword, period, ratio) rows into a keyword x period table
// of mean ratios. Rows are sorted lexically, columns chronologically and
// labelled MM-DD for axis display. Combinations without any valid observation
// stay missing. Empty input yields a NoData table, not an error.
func CrossTab(points []domain.TrendPoint, rowKey string) domain.PivotTable {
	type cellAcc struct {
		sum   float64
		count int
	}

	var rows []string
	var cols []time.Time
	colIdx := make(map[time.Time]bool)
	cells := make(map[string]map[time.Time]*cellAcc)

	for _, p := range points {
		if _, ok := cells[p.Keyword]; !ok {
			rows = append(rows, p.Keyword)
			cells[p.Keyword] = make(map[time.Time]*cellAcc)
		}
		if !colIdx[p.Period] {
			colIdx[p.Period] = true
			cols = append(cols, p.Period)
		}
		if !p.Ratio.Valid {
			continue
		}
		a, ok := cells[p.Keyword][p.Period]
		if !ok {
			a = &cellAcc{}
			cells[p.Keyword][p.Period] = a
		}
		a.sum += p.Ratio.Value
		a.count++
	}

	if len(rows) == 0 || len(cols) == 0 {
		return domain.PivotTable{RowKey: rowKey, NoData: true}
	}
	sort.Strings(rows)
	sort.Slice(cols, func(i, j int) bool { return cols[i].Before(cols[j]) })

	labels := make([]string, len(cols))
	for i, c := range cols {
		labels[i] = c.Format("01-02")
	}

	table := domain.PivotTable{
		RowKey:       rowKey,
		Rows:         rows,
		Columns:      cols,
		ColumnLabels: labels,
		Cells:        make([][]domain.NullFloat, len(rows)),
	}
	for ri, row := range rows {
		table.Cells[ri] = make([]domain.NullFloat, len(cols))
		for ci, col := range cols {
			if a, ok := cells[row][col]; ok {
				table.Cells[ri][ci] = domain.Float(a.sum / float64(a.count))
			}
		}
	}
	return table
}
