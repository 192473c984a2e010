package prometheus_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/absmach/fedsim/pkg/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeMetrics(t *testing.T) {
	counter, latency := prometheus.MakeMetrics("fedsim_test", "api")
	counter.With("method", "simulate").Add(1)
	counter.With("method", "simulate").Add(1)
	latency.With("method", "simulate").Observe(0.25)

	dir := t.TempDir()
	require.NoError(t, prometheus.WriteTextfile(dir))

	data, err := os.ReadFile(filepath.Join(dir, prometheus.ServiceTextfile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `fedsim_test_api_request_count{method="simulate"} 2`)
	assert.Contains(t, string(data), `fedsim_test_api_request_latency_seconds_count{method="simulate"} 1`)
}
