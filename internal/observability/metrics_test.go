package observability

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordRun(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.RecordRun("", time.Second)
	m.RecordRun("SIGNING_REJECTED", time.Second)
	m.RecordRun("SIGNING_REJECTED", time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CreationFailures.WithLabelValues("SIGNING_REJECTED")))
}

func TestMetrics_RecordMint(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.RecordMint(200_000_000)
	m.RecordMint(100_000_000)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CoinsCreated))
	assert.Equal(t, 300_000_000.0, testutil.ToFloat64(m.FeeLamports))
}

func TestMetrics_ObserveRPC(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.ObserveRPC("getBalance", time.Millisecond, nil)
	m.ObserveRPC("getBalance", time.Millisecond, errors.New("429"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RPCCallErrors.WithLabelValues("getBalance")))
}

func TestHandlerFor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)
	m.RecordMetadata("VALID")
	m.RecordPersist(nil)

	rec := httptest.NewRecorder()
	HandlerFor(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `test_metadata_outcomes_total{outcome="VALID"} 1`), body)
	assert.True(t, strings.Contains(body, `test_storage_records_persisted_total{status="ok"} 1`), body)
}
