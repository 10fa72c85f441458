package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(w.Result().Body)
	require.NoError(t, err)
	return w.Code, string(body)
}

// ワーカーのメトリクスポートは登録状態と掃除の系列を公開する。
func TestSetupMetricsRoute_ServesRegistrationAndCleanupSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordRegistrationFailure("designer")
	c.RecordRegistrationFailure("designer")
	c.RecordRegistrationFailure("customer")
	c.RecordStaleDiscard()
	c.RecordSessionsPurged(3)

	code, body := scrape(t, SetupMetricsRoute(reg), "/metrics")
	require.Equal(t, http.StatusOK, code)

	for _, line := range []string{
		`interiorly_registration_lookup_fail_total{kind="designer"} 2`,
		`interiorly_registration_lookup_fail_total{kind="customer"} 1`,
		`interiorly_registration_stale_discard_total 1`,
		`interiorly_sessions_purged_total 3`,
	} {
		assert.Contains(t, body, line)
	}
}

func TestSetupMetricsRoute_OtherPathsNotFound(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	code, _ := scrape(t, SetupMetricsRoute(reg), "/debug")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHandler_ServesHTTPStatusSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPStatus(http.StatusTooManyRequests)

	code, body := scrape(t, Handler(reg), "/")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `interiorly_http_status_total{status_code="429"} 1`)
	assert.NotContains(t, body, "interiorly_auth_outcome_total{")
}
