package metrics

import (
	coremetrics "github.com/kilianp07/cwire/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink exposes station tree activity as Prometheus metrics.
type PromSink struct {
	ops      *prometheus.CounterVec
	nodes    prometheus.Gauge
	height   prometheus.Gauge
	load     prometheus.Gauge
	capacity prometheus.Gauge
}

// NewPromSink registers the station metrics on the default registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// that are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ops, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "station_operations_total",
		Help: "Records applied to the station tree, by outcome",
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}
	s := &PromSink{ops: ops}
	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&s.nodes, "station_tree_nodes", "Stations held in the tree"},
		{&s.height, "station_tree_height", "Height of the station tree in edges"},
		{&s.load, "station_load_total", "Sum of the load of every station"},
		{&s.capacity, "station_capacity_total", "Sum of the capacity of every station"},
	}
	for _, g := range gauges {
		gauge, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: g.name, Help: g.help}))
		if err != nil {
			return nil, err
		}
		*g.dst = gauge
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordOperation increments the counter for the event's operation.
func (s *PromSink) RecordOperation(ev coremetrics.OperationEvent) error {
	s.ops.WithLabelValues(string(ev.Op)).Inc()
	return nil
}

// RecordSnapshot sets the tree gauges.
func (s *PromSink) RecordSnapshot(ev coremetrics.SnapshotEvent) error {
	var load, capacity int64
	for _, st := range ev.Stations {
		load += st.Load
		capacity += st.Capacity
	}
	s.nodes.Set(float64(len(ev.Stations)))
	s.height.Set(float64(ev.Height))
	s.load.Set(float64(load))
	s.capacity.Set(float64(capacity))
	return nil
}
