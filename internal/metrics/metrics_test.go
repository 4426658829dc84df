package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
		{"DerivationsTotal", DerivationsTotal},
		{"DerivationDuration", DerivationDuration},
		{"StageDuration", StageDuration},
		{"OutputBytes", OutputBytes},
		{"DecodeHandlesOpen", DecodeHandlesOpen},
		{"JobsActive", JobsActive},
		{"JobsWaiting", JobsWaiting},
		{"JobsCapacity", JobsCapacity},
		{"JobsRejectedTotal", JobsRejectedTotal},
		{"JobWaitDuration", JobWaitDuration},
		{"MemoryUsageRatio", MemoryUsageRatio},
		{"MemoryPaused", MemoryPaused},
		{"MemoryGCPauses", MemoryGCPauses},
		{"GoMemLimitBytes", GoMemLimitBytes},
		{"FilesystemStaleErrors", FilesystemStaleErrors},
		{"FilesystemRetryOutcomes", FilesystemRetryOutcomes},
		{"AppInfo", AppInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestInitializeMetricsPrepopulatesLabels(t *testing.T) {
	InitializeMetrics()

	// kinds x statuses
	assert.GreaterOrEqual(t, testutil.CollectAndCount(DerivationsTotal), 12)
	// image: 2 stages, video: 4 stages
	assert.GreaterOrEqual(t, testutil.CollectAndCount(StageDuration), 6)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(DecodeHandlesOpen), 2)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(JobsRejectedTotal), 2)
}

func TestPipelineObserver(t *testing.T) {
	obs := NewPipelineObserver()

	before := testutil.ToFloat64(DerivationsTotal.WithLabelValues("image", "success"))
	obs.ObserveDerivation("image", "success", 20*time.Millisecond, 4096)
	assert.Equal(t, before+1, testutil.ToFloat64(DerivationsTotal.WithLabelValues("image", "success")))

	failedBefore := testutil.ToFloat64(DerivationsTotal.WithLabelValues("video", "error_load"))
	obs.ObserveDerivation("video", "error_load", time.Second, 0)
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(DerivationsTotal.WithLabelValues("video", "error_load")))

	obs.ObserveStage("video", "capture", 150*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(StageDuration), 1)
}

func TestPipelineObserverHandleGaugeReturnsToZero(t *testing.T) {
	obs := NewPipelineObserver()
	gauge := DecodeHandlesOpen.WithLabelValues("video")
	start := testutil.ToFloat64(gauge)

	obs.HandleAcquired("video")
	obs.HandleAcquired("video")
	assert.Equal(t, start+2, testutil.ToFloat64(gauge))

	obs.HandleReleased("video")
	obs.HandleReleased("video")
	assert.Equal(t, start, testutil.ToFloat64(gauge))
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.2.3", "abc123", "go1.25.0")

	expected := `
# HELP media_derivatives_app_info Application information
# TYPE media_derivatives_app_info gauge
media_derivatives_app_info{commit="abc123",go_version="go1.25.0",version="1.2.3"} 1
`
	err := testutil.CollectAndCompare(AppInfo, strings.NewReader(expected))
	assert.NoError(t, err)
}

func TestMetricNamesArePrefixed(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	assert.NoError(t, err)

	for _, mf := range families {
		name := mf.GetName()
		if strings.HasPrefix(name, "go_") || strings.HasPrefix(name, "process_") || strings.HasPrefix(name, "promhttp_") {
			continue
		}
		assert.True(t, strings.HasPrefix(name, "media_derivatives_"), "metric %q lacks the service prefix", name)
	}
}
