package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderExposition(t *testing.T) {
	recorder := NewPrometheusRecorder()

	recorder.IncTasksSubmitted()
	recorder.IncTasksSubmitted()
	recorder.IncTasksCompleted()
	recorder.IncTasksFailed("lock_timeout")
	recorder.IncTasksActive()
	recorder.DecTasksActive()
	recorder.IncCacheHit()
	recorder.IncCacheHit()
	recorder.IncCacheHit()
	recorder.IncCacheMiss()
	recorder.ObserveEnsureDuration(0.25)
	recorder.SetCacheWatermark(100)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	exposition := string(body)
	assert.Contains(t, exposition, "prime_api_tasks_submitted_total 2")
	assert.Contains(t, exposition, "prime_api_tasks_completed_total 1")
	assert.Contains(t, exposition, `prime_api_tasks_failed_total{reason="lock_timeout"} 1`)
	assert.Contains(t, exposition, "prime_api_tasks_active 0")
	assert.Contains(t, exposition, "prime_api_cache_hits_total 3")
	assert.Contains(t, exposition, "prime_api_cache_misses_total 1")
	assert.Contains(t, exposition, "prime_api_cache_watermark 100")
	assert.Contains(t, exposition, "prime_api_ensure_duration_seconds_count 1")
}

func TestSeparateRecordersDoNotCollide(t *testing.T) {
	// Each recorder owns its registry, so constructing two (as tests do)
	// must not panic on duplicate registration.
	assert.NotPanics(t, func() {
		_ = NewPrometheusRecorder()
		_ = NewPrometheusRecorder()
	})
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = NopRecorder{}

	assert.NotPanics(t, func() {
		r.IncTasksSubmitted()
		r.IncTasksCompleted()
		r.IncTasksFailed("storage")
		r.IncTasksActive()
		r.DecTasksActive()
		r.IncCacheHit()
		r.IncCacheMiss()
		r.ObserveEnsureDuration(1.5)
		r.SetCacheWatermark(42)
	})
}
