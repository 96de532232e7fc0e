package metrics

import (
	"time"

	"github.com/kilianp07/cwire/core/station"
)

// Operation names what happened to a station.
type Operation string

const (
	OpCreate     Operation = "create"
	OpMerge      Operation = "merge"
	OpReject     Operation = "reject"
	OpMalformed  Operation = "malformed"
	OpDelete     Operation = "delete"
	OpDeleteMiss Operation = "delete_miss"
)

// OperationEvent is emitted once per record applied to the tree.
type OperationEvent struct {
	Op        Operation
	StationID int32
	Capacity  int64
	Load      int64
	Component string
	Time      time.Time
}

// SnapshotEvent carries the ordered stations at the end of a run.
type SnapshotEvent struct {
	RunID    string
	Stations []station.Station
	Height   int
	Time     time.Time
}

// MetricsSink records station operations.
type MetricsSink interface {
	RecordOperation(ev OperationEvent) error
}

// SnapshotRecorder records whole-tree snapshots.
type SnapshotRecorder interface {
	RecordSnapshot(ev SnapshotEvent) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordOperation(OperationEvent) error { return nil }
func (NopSink) RecordSnapshot(SnapshotEvent) error   { return nil }

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordOperation forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordOperation(ev OperationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordOperation(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSnapshot forwards snapshots to the sinks that support them.
func (m *MultiSink) RecordSnapshot(ev SnapshotEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SnapshotRecorder); ok {
			if err := rec.RecordSnapshot(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
