package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"StockLens/internal/model"
)

// DefaultYahooBaseURL is the public Yahoo Finance query host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance v8 chart API.
type YahooFetcher struct {
	client    *resty.Client
	limiter   *rate.Limiter
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(o SourceOptions) *YahooFetcher {
	if o.BaseURL == "" {
		o.BaseURL = DefaultYahooBaseURL
	}
	f := &YahooFetcher{
		client: newRestyClient(o),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
	if o.RateLimit > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(o.RateLimit), 1)
	}
	return f
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				Currency  string `json:"currency"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) FetchDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]RawBar, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, model.SourceUnreachable(symbol, fmt.Errorf("rate limit wait: %w", err))
		}
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("symbol", f.yahooSymbol(symbol)).
		SetQueryParams(map[string]string{
			"period1":  strconv.FormatInt(start.Unix(), 10),
			"period2":  strconv.FormatInt(end.Unix(), 10),
			"interval": "1d",
			"events":   "history",
		}).
		Get("/v8/finance/chart/{symbol}")
	if err != nil {
		return nil, model.SourceUnreachable(symbol, fmt.Errorf("yahoo fetch: %w", err))
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(resp.Body(), &chart)

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, model.DataUnavailable(symbol, errors.New("yahoo: symbol not found"))
	case resp.StatusCode() != http.StatusOK:
		return nil, model.SourceUnreachable(symbol, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), resp.String()))
	case decodeErr != nil:
		return nil, model.SourceUnreachable(symbol, fmt.Errorf("yahoo decode: %w", decodeErr))
	}
	if e := chart.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, model.DataUnavailable(symbol, fmt.Errorf("yahoo: %s", e.Description))
		}
		return nil, model.SourceUnreachable(symbol, fmt.Errorf("yahoo api error: %s", e.Description))
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, model.DataUnavailable(symbol, errors.New("yahoo: no data returned"))
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, model.DataUnavailable(symbol, errors.New("yahoo: no quote series"))
	}
	closes := result.Indicators.Quote[0].Close
	bars := make([]RawBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bar := RawBar{Date: exchangeDate(ts, result.Meta.GMTOffset)}
		// null closes (holidays, halted sessions) stay invalid and are dropped by Normalize
		if i < len(closes) && closes[i] != nil {
			bar.Close = decimal.NullDecimal{Decimal: decimal.NewFromFloat(*closes[i]).Round(4), Valid: true}
		}
		bars = append(bars, bar)
	}
	return bars, nil
}
