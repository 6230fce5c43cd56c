package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/model"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "data_unavailable", Outcome(model.DataUnavailable("X", errors.New("empty"))))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}

func TestServeRegistersMetrics(t *testing.T) {
	srv := Serve("127.0.0.1:0")
	defer srv.Close()

	before := testutil.ToFloat64(Reports.WithLabelValues("ok"))
	Reports.WithLabelValues("ok").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Reports.WithLabelValues("ok")))

	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "stocklens_reports_total" {
			found = true
			break
		}
	}
	assert.True(t, found, "stocklens_reports_total metric not found")
}
