package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"StockLens/internal/model"
)

// DefaultBaseURL is where the bundled analysis service listens by default.
const DefaultBaseURL = "http://127.0.0.1:8000"

// HTTPOptions configures an HTTPProvider.
type HTTPOptions struct {
	BaseURL string
	Timeout time.Duration
	Retries int
	Proxy   string
	Now     func() time.Time
}

// HTTPProvider queries a remote text-analysis service at GET {base}/analyze/{symbol}.
type HTTPProvider struct {
	client *resty.Client
	loc    *time.Location
	now    func() time.Time
}

// NewHTTPProvider creates a client for the analysis service.
func NewHTTPProvider(o HTTPOptions) *HTTPProvider {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(o.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetRetryCount(o.Retries).
		SetRetryWaitTime(300 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= 500
		})
	if o.Timeout > 0 {
		client.SetTimeout(o.Timeout)
	}
	if o.Proxy != "" {
		client.SetProxy(o.Proxy)
	}
	return &HTTPProvider{client: client, loc: time.Local, now: o.Now}
}

func (p *HTTPProvider) Name() string { return "http" }

func (p *HTTPProvider) Lookup(ctx context.Context, symbol string) (model.SentimentReport, error) {
	symbol, err := model.NormalizeSymbol(symbol)
	if err != nil {
		return model.SentimentReport{}, err
	}
	report, err := p.lookup(ctx, symbol)
	observe(p.Name(), err)
	return report, err
}

func (p *HTTPProvider) lookup(ctx context.Context, symbol string) (model.SentimentReport, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		Get("/analyze/{symbol}")
	if err != nil {
		return model.SentimentReport{}, model.ProviderUnreachable(symbol, fmt.Errorf("analysis request: %w", err))
	}
	if resp.StatusCode() != http.StatusOK {
		return model.SentimentReport{}, model.ProviderUnreachable(symbol, fmt.Errorf("analysis request: status %d", resp.StatusCode()))
	}

	var body Response
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return model.SentimentReport{}, model.ProviderUnreachable(symbol, fmt.Errorf("decode analysis: %w", err))
	}
	if body.Emotion == "" {
		return model.SentimentReport{}, model.ProviderUnreachable(symbol, errors.New("decode analysis: missing emotion"))
	}
	at, err := p.parseTimestamp(body.Timestamp)
	if err != nil {
		return model.SentimentReport{}, model.ProviderUnreachable(symbol, fmt.Errorf("decode analysis: %w", err))
	}
	return fromAnalysis(symbol, Analysis{
		Emotion:      body.Emotion,
		Conclusion:   body.Conclusion,
		PositiveNews: body.PositiveNews,
		NegativeNews: body.NegativeNews,
	}, at), nil
}

// parseTimestamp accepts the service's local "2006-01-02 15:04:05" form or RFC 3339.
// An absent timestamp means "now".
func (p *HTTPProvider) parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return p.now(), nil
	}
	if t, err := time.ParseInLocation(TimestampLayout, s, p.loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return t, nil
}
