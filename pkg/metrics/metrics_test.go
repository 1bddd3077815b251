package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()

	a.CorrectedBitsTotal.Add(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(a.CorrectedBitsTotal))
	assert.Zero(t, testutil.ToFloat64(b.CorrectedBitsTotal))
}

func TestHandler(t *testing.T) {
	m := New()
	m.FramesTotal.WithLabelValues("hamming", "success", "").Inc()
	m.ProcessingSeconds.WithLabelValues("hamming").Observe(0.0001)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `linklab_receiver_frames_total{algorithm="hamming",error_kind="",outcome="success"} 1`)
	assert.Contains(t, string(body), "linklab_receiver_processing_seconds_bucket")

	n, err := testutil.GatherAndCount(m.Registry(), "linklab_receiver_frames_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
