package collector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"StockLens/internal/model"
	"StockLens/internal/retry"
)

// FinanceGoFetcher implements Fetcher on top of the piquette/finance-go chart client.
// The library has no context support, so the per-call timeout is applied through its
// process-wide HTTP client.
type FinanceGoFetcher struct {
	policy retry.Policy
}

// NewFinanceGoFetcher creates the fetcher and installs the timeout-bounded HTTP client.
func NewFinanceGoFetcher(o SourceOptions) *FinanceGoFetcher {
	transport := &http.Transport{}
	if o.Proxy != "" {
		if u, err := url.Parse(o.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	finance.SetHTTPClient(&http.Client{Timeout: o.Timeout, Transport: transport})
	return &FinanceGoFetcher{
		policy: retry.Policy{
			Retries:     o.Retries,
			BaseDelay:   500 * time.Millisecond,
			MaxDelay:    2 * time.Second,
			ShouldRetry: model.Retryable,
		},
	}
}

func (f *FinanceGoFetcher) Name() string { return "financego" }

func (f *FinanceGoFetcher) FetchDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]RawBar, error) {
	var bars []RawBar
	err := retry.Do(ctx, f.policy, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return model.SourceUnreachable(symbol, err)
		}
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}
		iter := chart.Get(params)

		bars = bars[:0]
		for iter.Next() {
			bar := iter.Bar()
			bars = append(bars, RawBar{
				Date:  exchangeDate(int64(bar.Timestamp), gmtOffset(iter)),
				Close: decimal.NullDecimal{Decimal: bar.Close.Round(4), Valid: true},
			})
		}
		if err := iter.Err(); err != nil {
			return classifyFinanceGoError(symbol, err)
		}
		if len(bars) == 0 {
			return model.DataUnavailable(symbol, errors.New("finance-go: no bars returned"))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bars, nil
}

// gmtOffset is the exchange's UTC offset in seconds, or 0 when the response carried no meta.
func gmtOffset(it *chart.Iter) int64 {
	meta, ok := it.Iter.Meta().(finance.ChartMeta)
	if !ok {
		return 0
	}
	return int64(meta.Gmtoffset)
}

// exchangeDate maps a bar timestamp to the exchange's calendar date.
func exchangeDate(ts, offset int64) time.Time {
	return calendarDate(time.Unix(ts+offset, 0).UTC())
}

// classifyFinanceGoError separates "no such symbol" answers from transport failures.
func classifyFinanceGoError(symbol string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return model.SourceUnreachable(symbol, fmt.Errorf("finance-go: %w", err))
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "not found") || strings.Contains(msg, "no data") || strings.Contains(msg, "delisted") {
		return model.DataUnavailable(symbol, fmt.Errorf("finance-go: %w", err))
	}
	return model.SourceUnreachable(symbol, fmt.Errorf("finance-go: %w", err))
}
