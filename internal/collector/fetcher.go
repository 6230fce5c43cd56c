package collector

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// RawBar is one daily row as returned by a market-data source, before cleaning.
// Date is already mapped to the exchange's calendar date at midnight UTC.
type RawBar struct {
	Date  time.Time
	Close decimal.NullDecimal
}

// Fetcher defines the interface for fetching daily closes from a market-data source.
// Implementations return *model.Error values: DataUnavailable for a reachable source with
// no rows, SourceUnreachable for transport failures.
type Fetcher interface {
	FetchDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]RawBar, error)
	Name() string
}

// SourceOptions configures the HTTP-backed fetchers.
type SourceOptions struct {
	BaseURL   string
	APIKey    string
	Proxy     string
	Timeout   time.Duration
	Retries   int
	RateLimit float64 // requests per second, 0 disables limiting
}

func newRestyClient(o SourceOptions) *resty.Client {
	client := resty.New().
		SetBaseURL(o.BaseURL).
		SetHeader("User-Agent", "Mozilla/5.0").
		SetRetryCount(o.Retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(transientResponse)
	if o.Timeout > 0 {
		client.SetTimeout(o.Timeout)
	}
	if o.Proxy != "" {
		client.SetProxy(o.Proxy)
	}
	return client
}

// transientResponse retries transport errors, throttling and server errors, never 4xx.
func transientResponse(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	code := resp.StatusCode()
	return code == 429 || code >= 500
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
