package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"StockLens/internal/model"
)

// RESTFetcher implements Fetcher against a generic JSON bar API:
// GET {base}/api/v1/bars/daily?symbol=&from=YYYY-MM-DD&to=YYYY-MM-DD.
type RESTFetcher struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// NewRESTFetcher creates a fetcher; a non-empty APIKey is sent as a bearer token.
func NewRESTFetcher(o SourceOptions) *RESTFetcher {
	client := newRestyClient(o)
	if o.APIKey != "" {
		client.SetAuthToken(o.APIKey)
	}
	f := &RESTFetcher{client: client}
	if o.RateLimit > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(o.RateLimit), 1)
	}
	return f
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bar API.
type restBar struct {
	Timestamp int64    `json:"timestamp"`
	Date      string   `json:"date"`
	Close     *float64 `json:"close"`
}

func (f *RESTFetcher) FetchDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]RawBar, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, model.SourceUnreachable(symbol, fmt.Errorf("rate limit wait: %w", err))
		}
	}
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"from":   start.Format("2006-01-02"),
			"to":     end.Format("2006-01-02"),
		}).
		Get("/api/v1/bars/daily")
	if err != nil {
		return nil, model.SourceUnreachable(symbol, fmt.Errorf("fetch bars: %w", err))
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, model.DataUnavailable(symbol, errors.New("bar api: symbol not found"))
	default:
		return nil, model.SourceUnreachable(symbol, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode(), resp.String()))
	}

	var rows []restBar
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, model.SourceUnreachable(symbol, fmt.Errorf("decode bars: %w", err))
	}
	if len(rows) == 0 {
		return nil, model.DataUnavailable(symbol, errors.New("bar api: no rows"))
	}

	bars := make([]RawBar, 0, len(rows))
	for _, r := range rows {
		var bar RawBar
		if r.Date != "" {
			d, err := time.Parse("2006-01-02", r.Date)
			if err != nil {
				return nil, model.SourceUnreachable(symbol, fmt.Errorf("decode bar date %q: %w", r.Date, err))
			}
			bar.Date = d
		} else {
			bar.Date = calendarDate(time.Unix(r.Timestamp, 0).UTC())
		}
		if r.Close != nil {
			bar.Close = decimal.NullDecimal{Decimal: decimal.NewFromFloat(*r.Close), Valid: true}
		}
		bars = append(bars, bar)
	}
	return bars, nil
}
