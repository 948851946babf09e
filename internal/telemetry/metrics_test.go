package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/trySamm/realtime/internal/realtime"
)

func TestNewMetrics_RegistersAndCounts(t *testing.T) {
	registry := prometheus.NewRegistry()
	labels := map[string]string{"tenant": "test-tenant"}

	m := NewMetrics(registry, labels)

	var _ realtime.Metrics = m

	m.IncConnects()
	m.IncConnects()
	m.IncFrames()
	m.SetConnectionStatus(1)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	values := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch mf.GetName() {
			case "realtime_connection_status":
				values[mf.GetName()] = metric.GetGauge().GetValue()
			default:
				values[mf.GetName()] = metric.GetCounter().GetValue()
			}

			for _, l := range metric.GetLabel() {
				if l.GetName() == "tenant" && l.GetValue() != "test-tenant" {
					t.Errorf("tenant label = %s, want test-tenant", l.GetValue())
				}
			}
		}
	}

	if values["realtime_connects_total"] != 2 {
		t.Errorf("connects_total = %f, want 2", values["realtime_connects_total"])
	}
	if values["realtime_frames_total"] != 1 {
		t.Errorf("frames_total = %f, want 1", values["realtime_frames_total"])
	}
	if values["realtime_connection_status"] != 1 {
		t.Errorf("connection_status = %f, want 1", values["realtime_connection_status"])
	}

	if _, ok := values["realtime_handler_errors_total"]; !ok {
		t.Error("handler_errors_total not registered")
	}
}
