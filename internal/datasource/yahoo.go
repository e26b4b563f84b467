package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/risk-tracker/internal/models"
)

const (
	yahooSourceName     = "yahoo"
	defaultYahooBaseURL = "https://query1.finance.yahoo.com"
	yahooConcurrency    = 4
)

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// YahooClient implements PriceSource over the Yahoo Finance v8 chart API
type YahooClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	logger     *logrus.Entry
}

// NewYahooClient creates a new Yahoo Finance client
func NewYahooClient(httpClient *RateLimitedHTTPClient, baseURL string, logger *logrus.Logger) *YahooClient {
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &YahooClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.WithField("provider", yahooSourceName),
	}
}

// Name returns the provider name
func (c *YahooClient) Name() string {
	return yahooSourceName
}

// FetchPrices downloads daily adjusted closes for every symbol and aligns them on date
func (c *YahooClient) FetchPrices(ctx context.Context, symbols []string, start, end time.Time) (*models.PriceTable, error) {
	if len(symbols) == 0 {
		return nil, models.ErrEmptySymbols
	}

	series := make([]Series, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(yahooConcurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			s, err := c.FetchSeries(gctx, symbol, start, end)
			if err != nil {
				return err
			}
			series[i] = *s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return AlignSeries(yahooSourceName, symbols, series)
}

// FetchSeries downloads the daily adjusted close series of one symbol
func (c *YahooClient) FetchSeries(ctx context.Context, symbol string, start, end time.Time) (*Series, error) {
	q := url.Values{}
	q.Set("period1", fmt.Sprintf("%d", start.Unix()))
	q.Set("period2", fmt.Sprintf("%d", end.Unix()))
	q.Set("interval", "1d")
	q.Set("events", "div,splits")
	q.Set("includeAdjustedClose", "true")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewDataSourceError(yahooSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "risk-tracker/1.0")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(yahooSourceName, ErrCodeNetworkError, fmt.Sprintf("failed to fetch %s", symbol), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewDataSourceError(yahooSourceName, ErrCodeNotFound, fmt.Sprintf("unknown symbol %s", symbol), ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewDataSourceError(yahooSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewDataSourceError(yahooSourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var chart yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, NewDataSourceError(yahooSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return parseYahooChart(symbol, &chart)
}

func parseYahooChart(symbol string, chart *yahooChartResponse) (*Series, error) {
	if chart.Chart.Error != nil {
		return nil, NewDataSourceError(yahooSourceName, ErrCodeNotFound,
			fmt.Sprintf("%s: %s", symbol, chart.Chart.Error.Description), ErrNotFound)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, NewDataSourceError(yahooSourceName, ErrCodeNotFound, fmt.Sprintf("no chart data for %s", symbol), ErrNotFound)
	}
	result := chart.Chart.Result[0]

	// adjclose is preferred; quote close is the fallback when the split/dividend
	// adjusted series is absent
	var closes []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) > 0 {
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}
	if len(result.Timestamp) == 0 || len(closes) == 0 {
		return nil, NewDataSourceError(yahooSourceName, ErrCodeNotFound, fmt.Sprintf("no price rows for %s in range", symbol), ErrNotFound)
	}
	if len(closes) != len(result.Timestamp) {
		return nil, NewDataSourceError(yahooSourceName, ErrCodeInvalidData,
			fmt.Sprintf("%s: %d prices for %d timestamps", symbol, len(closes), len(result.Timestamp)), ErrInvalidData)
	}

	s := &Series{
		Symbol: symbol,
		Dates:  make([]time.Time, len(closes)),
		Prices: make([]float64, len(closes)),
	}
	for i, ts := range result.Timestamp {
		s.Dates[i] = dayKey(time.Unix(ts+result.Meta.GMTOffset, 0).UTC())
		if closes[i] == nil {
			s.Prices[i] = math.NaN()
			continue
		}
		s.Prices[i] = *closes[i]
	}
	return s, nil
}
