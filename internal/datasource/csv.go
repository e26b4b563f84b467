package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/risk-tracker/internal/models"
)

const csvSourceName = "csv"

// CSVSource reads <dir>/<SYMBOL>.csv files with a Date column and an
// "Adj Close" (or "Close") column, the layout of Yahoo's download export.
type CSVSource struct {
	dir string
}

// NewCSVSource creates a CSV price source rooted at dir
func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{dir: dir}
}

// Name returns the provider name
func (s *CSVSource) Name() string {
	return csvSourceName
}

// FetchPrices reads each symbol's file and aligns the series on date
func (s *CSVSource) FetchPrices(ctx context.Context, symbols []string, start, end time.Time) (*models.PriceTable, error) {
	if len(symbols) == 0 {
		return nil, models.ErrEmptySymbols
	}
	series := make([]Series, 0, len(symbols))
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ser, err := s.readSeries(symbol, start, end)
		if err != nil {
			return nil, err
		}
		series = append(series, *ser)
	}
	return AlignSeries(csvSourceName, symbols, series)
}

func (s *CSVSource) readSeries(symbol string, start, end time.Time) (*Series, error) {
	path := filepath.Join(s.dir, symbol+".csv")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewDataSourceError(csvSourceName, ErrCodeNotFound, fmt.Sprintf("no price file for %s", symbol), ErrNotFound)
		}
		return nil, NewDataSourceError(csvSourceName, ErrCodeUnknown, "failed to open price file", err)
	}
	defer f.Close()

	ser, err := ParseCSVSeries(symbol, f)
	if err != nil {
		return nil, err
	}
	return ser.Between(start, end), nil
}

// ParseCSVSeries parses a Date/Adj Close CSV export. Blank or "null" prices become NaN.
func ParseCSVSeries(symbol string, r io.Reader) (*Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, fmt.Sprintf("%s: missing header", symbol), err)
	}
	dateCol, priceCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date":
			dateCol = i
		case "adj close", "adj_close", "adjclose":
			priceCol = i
		case "close":
			if priceCol < 0 {
				priceCol = i
			}
		}
	}
	if dateCol < 0 || priceCol < 0 {
		return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData,
			fmt.Sprintf("%s: header needs Date and Adj Close columns", symbol), ErrInvalidData)
	}

	ser := &Series{Symbol: symbol}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, fmt.Sprintf("%s: line %d", symbol, line), err)
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(record[dateCol]))
		if err != nil {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, fmt.Sprintf("%s: bad date on line %d", symbol, line), err)
		}
		price := math.NaN()
		if raw := strings.TrimSpace(record[priceCol]); raw != "" && !strings.EqualFold(raw, "null") {
			price, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, fmt.Sprintf("%s: bad price on line %d", symbol, line), err)
			}
		}
		ser.Dates = append(ser.Dates, date)
		ser.Prices = append(ser.Prices, price)
	}
	return ser, nil
}

// Between returns the observations with start <= date < end
func (s *Series) Between(start, end time.Time) *Series {
	out := &Series{Symbol: s.Symbol}
	lo, hi := dayKey(start), dayKey(end)
	for i, d := range s.Dates {
		d = dayKey(d)
		if d.Before(lo) || !d.Before(hi) {
			continue
		}
		out.Dates = append(out.Dates, d)
		out.Prices = append(out.Prices, s.Prices[i])
	}
	return out
}
