package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder()

	r.ObserveGeneration("thought", false, 200*time.Millisecond)
	r.ObserveGeneration("thought", true, 100*time.Millisecond)
	r.ObservePublished("thought", time.Unix(1700000000, 0))
	r.ObserveFailure("publish")
	r.ObserveFailure("publish")
	r.ObserveHistoryAppend()

	assert.Equal(t, 1.0, testutil.ToFloat64(r.postsGenerated.WithLabelValues("thought", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.postsGenerated.WithLabelValues("thought", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.postsPublished.WithLabelValues("thought")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.failures.WithLabelValues("publish")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.historyAppendOK))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(r.lastPublished))
}

func TestRecorder_NextRun(t *testing.T) {
	r := NewRecorder()

	r.SetNextRun(time.Unix(1700003600, 0))
	assert.Equal(t, 1700003600.0, testutil.ToFloat64(r.nextScheduled))

	r.SetNextRun(time.Time{})
	assert.Equal(t, 0.0, testutil.ToFloat64(r.nextScheduled))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObservePublished("tip", time.Now())

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `ghostwriter_posts_published_total{context_type="tip"} 1`)
}

func TestRecorder_IndependentRegistries(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.ObserveFailure("generation")

	assert.Equal(t, 0.0, testutil.ToFloat64(b.failures.WithLabelValues("generation")))
}
