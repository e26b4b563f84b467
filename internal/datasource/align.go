package datasource

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/yourusername/risk-tracker/internal/models"
)

// NormalizeSymbols trims, uppercases and de-duplicates tickers, dropping blanks.
// Input order is preserved.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// ParseSymbols splits a comma-separated ticker list and normalizes it
func ParseSymbols(raw string) []string {
	return NormalizeSymbols(strings.Split(raw, ","))
}

func dayKey(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AlignSeries joins per-symbol series on date, keeping only dates on which every
// symbol has a usable price. The result is sorted by date with columns in symbols order.
func AlignSeries(source string, symbols []string, series []Series) (*models.PriceTable, error) {
	bySymbol := make(map[string]Series, len(series))
	for _, s := range series {
		bySymbol[s.Symbol] = s
	}

	lookup := make([]map[time.Time]float64, len(symbols))
	for j, symbol := range symbols {
		s, ok := bySymbol[symbol]
		if !ok || len(s.Prices) == 0 {
			return nil, NewDataSourceError(source, ErrCodeNotFound, fmt.Sprintf("no prices for %s", symbol), ErrNotFound)
		}
		m := make(map[time.Time]float64, len(s.Prices))
		for i, p := range s.Prices {
			if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
				continue
			}
			m[dayKey(s.Dates[i])] = p
		}
		lookup[j] = m
	}

	var dates []time.Time
	for d := range lookup[0] {
		complete := true
		for _, m := range lookup[1:] {
			if _, ok := m[d]; !ok {
				complete = false
				break
			}
		}
		if complete {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return nil, NewDataSourceError(source, ErrCodeNotFound, "no overlapping price rows for requested symbols", ErrNotFound)
	}
	sort.Slice(dates, func(a, b int) bool { return dates[a].Before(dates[b]) })

	columns := make(map[string][]float64, len(symbols))
	for j, symbol := range symbols {
		col := make([]float64, len(dates))
		for i, d := range dates {
			col[i] = lookup[j][d]
		}
		columns[symbol] = col
	}
	return models.NewPriceTable(symbols, dates, columns)
}
