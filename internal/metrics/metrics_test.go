package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemesGeneratedCounter(t *testing.T) {
	before := testutil.ToFloat64(ThemesGenerated.WithLabelValues("elegant"))
	ThemesGenerated.WithLabelValues("elegant").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ThemesGenerated.WithLabelValues("elegant")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	TrackOutcomes.WithLabelValues("success").Inc()

	ts := httptest.NewServer(Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "tracker_track_requests_total")
}
