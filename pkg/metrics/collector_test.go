package metrics_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/connkit/pkg/lifecycle"
	"github.com/dmitrymomot/connkit/pkg/metrics"
)

type fakeSource struct {
	status lifecycle.Status
	counts map[lifecycle.Signal]uint64
}

func (f fakeSource) Status() lifecycle.Status            { return f.status }
func (f fakeSource) IsConnected() bool                   { return f.status == lifecycle.StatusConnected }
func (f fakeSource) Counts() map[lifecycle.Signal]uint64 { return f.counts }

func TestCollector(t *testing.T) {
	t.Parallel()

	c := metrics.NewCollector(fakeSource{
		status: lifecycle.StatusConnected,
		counts: map[lifecycle.Signal]uint64{
			lifecycle.SignalConnecting:   1,
			lifecycle.SignalOpen:         1,
			lifecycle.SignalDisconnected: 2,
			lifecycle.SignalReconnected:  2,
		},
	}, prometheus.Labels{"transport": "memory"})

	expected := `
# HELP connkit_connection_up Whether the connection is currently connected.
# TYPE connkit_connection_up gauge
connkit_connection_up{transport="memory"} 1
# HELP connkit_connection_signals_total Lifecycle signals processed, by signal.
# TYPE connkit_connection_signals_total counter
connkit_connection_signals_total{signal="close",transport="memory"} 0
connkit_connection_signals_total{signal="connecting",transport="memory"} 1
connkit_connection_signals_total{signal="disconnected",transport="memory"} 2
connkit_connection_signals_total{signal="error",transport="memory"} 0
connkit_connection_signals_total{signal="open",transport="memory"} 1
connkit_connection_signals_total{signal="reconnected",transport="memory"} 2
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"connkit_connection_up", "connkit_connection_signals_total"))
}

func TestCollector_Status(t *testing.T) {
	t.Parallel()

	c := metrics.NewCollector(fakeSource{status: lifecycle.StatusClosed}, nil)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	families, err := reg.Gather()
	require.NoError(t, err)

	active := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "connkit_connection_status" {
			continue
		}
		for _, m := range mf.GetMetric() {
			active[m.GetLabel()[0].GetValue()] = m.GetGauge().GetValue()
		}
	}

	assert.Len(t, active, 5)
	assert.Equal(t, 1.0, active["closed"])
	assert.Equal(t, 0.0, active["connected"])
	assert.Equal(t, 1, testutil.CollectAndCount(c, "connkit_connection_up"))
}
