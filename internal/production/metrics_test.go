package production

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/hsmx"
)

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewMetricsObserver(reg)

	cfg := sampleConfig()
	j := &journal{}
	armed := true
	h, _, err := Compile(&cfg, j.bindings(&armed))
	require.NoError(t, err)
	m, err := hsmx.New(h, hsmx.WithObserver(obs), hsmx.WithName("m1"))
	require.NoError(t, err)

	for _, evt := range []hsmx.EventID{"Tick", "Event1", "Nope", "Event2"} {
		_, err := m.Dispatch(hsmx.NewEvent(evt, nil))
		require.NoError(t, err)
	}

	assert.Equal(t, 1.0, promtestutil.ToFloat64(obs.dispatch.WithLabelValues("m1", "handled")))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(obs.dispatch.WithLabelValues("m1", "transition")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(obs.dispatch.WithLabelValues("m1", "unhandled")))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(obs.transitions.WithLabelValues("m1")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(obs.entries.WithLabelValues("m1", "State12")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(obs.exits.WithLabelValues("m1", "State1")))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(obs.active.WithLabelValues("m1")))

	require.NoError(t, m.Shutdown())
	assert.Equal(t, 0.0, promtestutil.ToFloat64(obs.active.WithLabelValues("m1")))

	count, err := promtestutil.GatherAndCount(reg, "hsmx_state_entries_total")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestMetricsObserverSeparatesMachines(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewMetricsObserver(reg)

	cfg := sampleConfig()
	armed := false
	h, _, err := Compile(&cfg, (&journal{}).bindings(&armed))
	require.NoError(t, err)

	_, err = hsmx.New(h, hsmx.WithObserver(obs), hsmx.WithName("a"))
	require.NoError(t, err)
	b, err := hsmx.New(h, hsmx.WithObserver(obs), hsmx.WithName("b"))
	require.NoError(t, err)
	require.NoError(t, b.Shutdown())

	families, err := reg.Gather()
	require.NoError(t, err)

	active := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "hsmx_active_states" {
			continue
		}
		assert.Equal(t, dto.MetricType_GAUGE, mf.GetType())
		for _, metric := range mf.GetMetric() {
			active[machineLabel(metric)] = metric.GetGauge().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"a": 3, "b": 0}, active)
}

func machineLabel(m *dto.Metric) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == "machine" {
			return lp.GetValue()
		}
	}
	return ""
}
