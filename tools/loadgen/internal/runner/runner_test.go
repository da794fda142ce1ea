package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emedico/backend/tools/loadgen/internal/config"
	"github.com/emedico/backend/tools/loadgen/internal/metrics"
)

func catalogServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []map[string]string{{"id": "med001"}}})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{
		Name:        "test",
		Target:      config.TargetConfig{BaseURL: baseURL},
		Duration:    300 * time.Millisecond,
		QPS:         50,
		Burst:       5,
		Concurrency: 4,
		Journeys:    map[string]int{config.JourneyBrowse: 1},
		Seed:        7,
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestRunner_Run(t *testing.T) {
	var hits atomic.Int64
	srv := catalogServer(t, &hits)

	collector := metrics.NewCollector()
	var out bytes.Buffer
	r, err := New(testConfig(srv.URL), collector, &out)
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, r.Run(context.Background()))
	assert.Less(t, time.Since(start), 2*time.Second)

	s := collector.Snapshot()
	assert.Positive(t, s.Journeys)
	assert.Zero(t, s.FailedRequests)
	assert.Equal(t, hits.Load(), s.Requests)
	assert.Contains(t, out.String(), `Running "test"`)
}

func TestRunner_RejectsConcurrentRun(t *testing.T) {
	var hits atomic.Int64
	srv := catalogServer(t, &hits)

	r, err := New(testConfig(srv.URL), metrics.NewCollector(), &bytes.Buffer{})
	require.NoError(t, err)

	r.running.Store(true)
	assert.ErrorIs(t, r.Run(context.Background()), ErrAlreadyRunning)
}

func TestRunner_PickHonoursWeights(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.Journeys = map[string]int{config.JourneyBrowse: 9, config.JourneyAccount: 1}

	r, err := New(cfg, metrics.NewCollector(), &bytes.Buffer{})
	require.NoError(t, err)

	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		name, _ := r.pick()
		counts[name]++
	}
	assert.InDelta(t, 1800, counts[config.JourneyBrowse], 120)
	assert.InDelta(t, 200, counts[config.JourneyAccount], 120)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(&config.Config{}, metrics.NewCollector(), &bytes.Buffer{})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
