// Package metrics defines how the station service reports what happens to
// the tree. Every insert, merge, rejection and delete is an OperationEvent;
// sinks that also implement SnapshotRecorder receive the full ordered
// station set after an ingestion run. NewMetricsSink builds the configured
// sinks from the registry and wraps several of them in a MultiSink.
package metrics
