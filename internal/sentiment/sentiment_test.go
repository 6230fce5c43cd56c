package sentiment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/model"
)

var fixedNow = time.Date(2025, 6, 13, 14, 0, 0, 0, time.UTC)

type mapStore struct {
	entries map[string]Analysis
	err     error
}

func (s mapStore) Get(_ context.Context, symbol string) (Analysis, bool, error) {
	if s.err != nil {
		return Analysis{}, false, s.err
	}
	a, ok := s.entries[symbol]
	return a, ok, nil
}

func TestNeutral(t *testing.T) {
	r := Neutral("9999.XX", fixedNow)
	assert.Equal(t, "9999.XX", r.Symbol)
	assert.Equal(t, NeutralEmotion, r.Emotion)
	assert.Contains(t, r.Conclusion, "9999.XX")
	assert.NotNil(t, r.PositivePoints)
	assert.Empty(t, r.PositivePoints)
	assert.NotNil(t, r.NegativePoints)
	assert.Empty(t, r.NegativePoints)
	assert.False(t, r.Unavailable)
	assert.Equal(t, fixedNow, r.FetchedAt)
}

func TestUnavailable(t *testing.T) {
	r := Unavailable("2330.TW", fixedNow)
	assert.True(t, r.Unavailable)
	assert.Equal(t, NeutralEmotion, r.Emotion)
	assert.Contains(t, r.Conclusion, "無法連線")
	assert.Empty(t, r.PositivePoints)
}

func TestStaticProvider(t *testing.T) {
	store := mapStore{entries: map[string]Analysis{
		"2330.TW": {Emotion: "強烈看漲", Conclusion: "AI 需求爆發", PositiveNews: []string{"a", "b"}, NegativeNews: []string{"c"}},
	}}
	p := NewStaticProvider(store, func() time.Time { return fixedNow })

	r, err := p.Lookup(context.Background(), "2330.tw")
	require.NoError(t, err)
	assert.Equal(t, "2330.TW", r.Symbol)
	assert.Equal(t, "強烈看漲", r.Emotion)
	assert.Equal(t, []string{"a", "b"}, r.PositivePoints)
	assert.Equal(t, []string{"c"}, r.NegativePoints)

	// callers cannot reach into the store through the report
	r.PositivePoints[0] = "mutated"
	assert.Equal(t, "a", store.entries["2330.TW"].PositiveNews[0])

	r, err = p.Lookup(context.Background(), "9999.xx")
	require.NoError(t, err)
	assert.Equal(t, Neutral("9999.XX", fixedNow), r)

	_, err = p.Lookup(context.Background(), "  ")
	assert.ErrorIs(t, err, model.ErrInvalidSymbol)
}

func TestStaticProvider_StoreFailure(t *testing.T) {
	p := NewStaticProvider(mapStore{err: errors.New("database is locked")}, nil)
	_, err := p.Lookup(context.Background(), "2330.TW")
	assert.ErrorIs(t, err, model.ErrProviderUnreachable)
	assert.Equal(t, model.StageSentiment, model.StageOf(err))
}

func TestHTTPProvider_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze/2330.TW", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"2330.TW","timestamp":"2025-06-13 22:00:00","emotion":"強烈看漲",
"conclusion":"AI 需求爆發，法說會展望樂觀。","positive_news":["Q3 財報超預期"],"negative_news":["短期漲多"]}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(HTTPOptions{BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
	p.loc = time.UTC
	r, err := p.Lookup(context.Background(), "2330.tw")
	require.NoError(t, err)
	assert.Equal(t, "2330.TW", r.Symbol)
	assert.Equal(t, "強烈看漲", r.Emotion)
	assert.Equal(t, []string{"Q3 財報超預期"}, r.PositivePoints)
	assert.Equal(t, []string{"短期漲多"}, r.NegativePoints)
	assert.Equal(t, time.Date(2025, 6, 13, 22, 0, 0, 0, time.UTC), r.FetchedAt)
	assert.False(t, r.Unavailable)
}

func TestHTTPProvider_NeutralPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// older deployments send ticker and null lists
		_, _ = w.Write([]byte(`{"ticker":"9999.XX","timestamp":"2025-06-13T14:00:00Z","emotion":"中性",
"conclusion":"AI 分析庫暫無 9999.XX 的文本數據，僅提供量化分析。","positive_news":null,"negative_news":[]}`))
	}))
	defer srv.Close()

	r, err := NewHTTPProvider(HTTPOptions{BaseURL: srv.URL}).Lookup(context.Background(), "9999.XX")
	require.NoError(t, err)
	assert.Equal(t, Neutral("9999.XX", fixedNow), r)
}

func TestHTTPProvider_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"detail":"boom"}`},
		{"not found", http.StatusNotFound, `{"detail":"Not Found"}`},
		{"malformed json", http.StatusOK, `{"emotion":`},
		{"missing emotion", http.StatusOK, `{"symbol":"2330.TW"}`},
		{"bad timestamp", http.StatusOK, `{"emotion":"中性","timestamp":"yesterday"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPProvider(HTTPOptions{BaseURL: srv.URL}).Lookup(context.Background(), "2330.TW")
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrProviderUnreachable)
			assert.True(t, model.Retryable(err))
		})
	}
}

func TestHTTPProvider_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPProvider(HTTPOptions{BaseURL: url, Timeout: time.Second}).Lookup(context.Background(), "2330.TW")
	assert.ErrorIs(t, err, model.ErrProviderUnreachable)
}

func TestHTTPProvider_TimeoutAndRetry(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"emotion":"中性"}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(HTTPOptions{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, Retries: 1})
	_, err := p.Lookup(context.Background(), "2330.TW")
	assert.ErrorIs(t, err, model.ErrProviderUnreachable)
	assert.Equal(t, int64(2), hits.Load())
}
