package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportCSV = `Date,Open,High,Low,Close,Adj Close,Volume
2024-01-02,100,101,99,100.5,100.25,1000
2024-01-03,100,101,99,100.5,null,1000
2024-01-04,100,101,99,100.5,0,1000
2024-01-05,100,101,99,100.5,101.75,1000
`

func TestReadPriceRowsSkipsMissingAndNonPositive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SPY.csv")
	require.NoError(t, os.WriteFile(path, []byte(exportCSV), 0o644))

	rows, skipped, err := readPriceRows(path, "SPY")
	require.NoError(t, err)

	assert.Equal(t, 2, skipped)
	require.Len(t, rows, 2)
	assert.Equal(t, "SPY", rows[0].Symbol)
	assert.Equal(t, 100.25, rows[0].AdjClose)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), rows[1].TradeDate)
}

func TestReadPriceRowsMissingFile(t *testing.T) {
	_, _, err := readPriceRows(filepath.Join(t.TempDir(), "NOPE.csv"), "NOPE")
	assert.Error(t, err)
}

func TestCSVSymbols(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"spy.csv", "QQQ.CSV", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(exportCSV), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	symbols, err := csvSymbols(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"SPY", "QQQ"}, symbols)
}

func TestParseDateFlag(t *testing.T) {
	got, err := parseDateFlag("start", "2023-06-30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC), got)

	got, err = parseDateFlag("start", "")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = parseDateFlag("end", "06/30/2023")
	assert.ErrorContains(t, err, "--end")
}
