package metrics

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, ResultOK, Outcome(nil))
	assert.Equal(t, ResultError, Outcome(errors.New("boom")))
}

func TestHandler_Metrics(t *testing.T) {
	before := testutil.ToFloat64(ParseTotal.WithLabelValues(ResultOK))
	ParseTotal.WithLabelValues(ResultOK).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ParseTotal.WithLabelValues(ResultOK)))

	srv := httptest.NewServer(NewServer("", nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "cxxnav_parse_total")
}

func TestHandler_Health(t *testing.T) {
	h := NewServer("", func() map[string]any { return map[string]any{"units": 3} })
	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "up", body["status"])
	assert.EqualValues(t, 3, body["units"])
}
