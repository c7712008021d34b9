package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsolatedRegistries(t *testing.T) {
	a := New()
	b := New()

	a.ViewsRecordedTotal.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(a.ViewsRecordedTotal))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.ViewsRecordedTotal))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ReadingSamplesTotal.WithLabelValues("recorded").Add(2)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `analytics_reading_samples_total{outcome="recorded"} 2`)
}
