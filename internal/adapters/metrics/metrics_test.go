package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/reload/internal/adapters/metrics"
	"go.trai.ch/reload/internal/core/domain"
)

func TestPrometheus_Records(t *testing.T) {
	m := metrics.New()

	m.RunFinished(domain.RunCompleted, time.Second)
	m.RunFinished(domain.RunFailed, time.Second)
	m.RunFinished(domain.RunCompleted, 2*time.Second)
	m.TaskFinished(domain.OpLoad, domain.TaskCompleted, time.Millisecond)
	m.TaskFinished(domain.OpLoad, domain.TaskCancelled, 0)
	m.TaskFinished(domain.OpUnload, domain.TaskCompleted, time.Millisecond)
	m.LoadedUnits(7)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			switch f.GetName() {
			case "reload_task_total":
				values["tasks"]++
			case "reload_runs_total":
				values["runs/"+metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
			case "reload_loaded_units":
				values["loaded"] = metric.GetGauge().GetValue()
			case "reload_task_duration_seconds":
				values["duration/"+metric.GetLabel()[0].GetValue()] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}

	assert.InDelta(t, 2, values["runs/Completed"], 0)
	assert.InDelta(t, 1, values["runs/Failed"], 0)
	assert.InDelta(t, 3, values["tasks"], 0)
	assert.InDelta(t, 7, values["loaded"], 0)
	assert.InDelta(t, 1, values["duration/load"], 0)
	assert.InDelta(t, 1, values["duration/unload"], 0)
}

func TestPrometheus_Handler(t *testing.T) {
	m := metrics.New()
	m.LoadedUnits(3)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "reload_loaded_units 3")
	assert.Contains(t, string(body), "go_goroutines")
}
