package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(backendRequests.WithLabelValues("GET", "/api/cinema/studios", "200"))
	ObserveRequest("GET", "/api/cinema/studios", 200, 20*time.Millisecond)
	after := testutil.ToFloat64(backendRequests.WithLabelValues("GET", "/api/cinema/studios", "200"))
	assert.Equal(t, before+1, after)

	ObserveRequest("POST", "/api/booking/online", 0, time.Second)
	assert.Equal(t, float64(1), testutil.ToFloat64(backendRequests.WithLabelValues("POST", "/api/booking/online", "error")))

	assert.NotPanics(t, func() {
		IncValidation("ok")
		IncValidation("rejected")
	})

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "cinema_cli_ticket_validations_total"))
}
