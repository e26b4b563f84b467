package models

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// PriceTable holds adjusted closing prices, one row per date and one column per symbol
type PriceTable struct {
	Symbols []string    `json:"symbols"`
	Dates   []time.Time `json:"dates"`
	Prices  [][]float64 `json:"prices"`
}

// ReturnTable holds period-over-period fractional changes derived from a PriceTable
type ReturnTable struct {
	Symbols []string    `json:"symbols"`
	Dates   []time.Time `json:"dates"`
	Returns [][]float64 `json:"returns"`
}

// NewPriceTable builds a price table from per-symbol series that share the same dates
func NewPriceTable(symbols []string, dates []time.Time, series map[string][]float64) (*PriceTable, error) {
	if len(symbols) == 0 {
		return nil, ErrEmptySymbols
	}
	rows := make([][]float64, len(dates))
	for i := range rows {
		rows[i] = make([]float64, len(symbols))
	}
	for j, symbol := range symbols {
		values, ok := series[symbol]
		if !ok {
			return nil, fmt.Errorf("%w: no series for %s", ErrDataUnavailable, symbol)
		}
		if len(values) != len(dates) {
			return nil, fmt.Errorf("%w: %s has %d prices for %d dates", ErrShapeMismatch, symbol, len(values), len(dates))
		}
		for i, v := range values {
			rows[i][j] = v
		}
	}
	return &PriceTable{Symbols: append([]string{}, symbols...), Dates: append([]time.Time{}, dates...), Prices: rows}, nil
}

// Rows returns the number of dated rows
func (p *PriceTable) Rows() int {
	return len(p.Prices)
}

// Column returns the chronological price series of one symbol
func (p *PriceTable) Column(symbol string) ([]float64, bool) {
	idx := p.index(symbol)
	if idx < 0 {
		return nil, false
	}
	col := make([]float64, len(p.Prices))
	for i, row := range p.Prices {
		col[i] = row[idx]
	}
	return col, true
}

// LastPrices returns the latest observed price of every symbol, in column order
func (p *PriceTable) LastPrices() []float64 {
	if len(p.Prices) == 0 {
		return nil
	}
	return append([]float64{}, p.Prices[len(p.Prices)-1]...)
}

// DropIncomplete removes rows that have a missing (NaN) or non-positive price in any column
func (p *PriceTable) DropIncomplete() *PriceTable {
	out := &PriceTable{Symbols: append([]string{}, p.Symbols...)}
	for i, row := range p.Prices {
		if !completeRow(row, len(p.Symbols)) {
			continue
		}
		out.Prices = append(out.Prices, append([]float64{}, row...))
		if i < len(p.Dates) {
			out.Dates = append(out.Dates, p.Dates[i])
		}
	}
	return out
}

// Returns converts the table into fractional changes; the leading row has no prior period and is dropped
func (p *PriceTable) Returns() (*ReturnTable, error) {
	if len(p.Prices) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 price rows, got %d", ErrInsufficientData, len(p.Prices))
	}
	out := &ReturnTable{
		Symbols: append([]string{}, p.Symbols...),
		Returns: make([][]float64, len(p.Prices)-1),
	}
	if len(p.Dates) == len(p.Prices) {
		out.Dates = append([]time.Time{}, p.Dates[1:]...)
	}
	for t := 1; t < len(p.Prices); t++ {
		prev, cur := p.Prices[t-1], p.Prices[t]
		row := make([]float64, len(cur))
		for j := range cur {
			row[j] = (cur[j] - prev[j]) / prev[j]
		}
		out.Returns[t-1] = row
	}
	return out, nil
}

func (p *PriceTable) index(symbol string) int {
	for i, s := range p.Symbols {
		if s == symbol {
			return i
		}
	}
	return -1
}

func completeRow(row []float64, width int) bool {
	if len(row) != width {
		return false
	}
	for _, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return false
		}
	}
	return true
}

// Rows returns the number of return periods
func (r *ReturnTable) Rows() int {
	return len(r.Returns)
}

// Columns returns the number of assets
func (r *ReturnTable) Columns() int {
	return len(r.Symbols)
}

// Column returns the return series of the asset at position idx
func (r *ReturnTable) Column(idx int) []float64 {
	col := make([]float64, len(r.Returns))
	for i, row := range r.Returns {
		col[i] = row[idx]
	}
	return col
}

// Means returns the sample mean return of every column
func (r *ReturnTable) Means() []float64 {
	means := make([]float64, r.Columns())
	if r.Rows() == 0 {
		return means
	}
	for j := range means {
		means[j] = stat.Mean(r.Column(j), nil)
	}
	return means
}

// RowMeans returns the cross-sectional mean return of every period
func (r *ReturnTable) RowMeans() []float64 {
	out := make([]float64, r.Rows())
	for i, row := range r.Returns {
		out[i] = stat.Mean(row, nil)
	}
	return out
}
