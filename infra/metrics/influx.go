package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/cwire/core/metrics"
	"github.com/kilianp07/cwire/infra/logger"
)

// InfluxSink writes station events to an InfluxDB instance using the official client.
// Operation points go through the batching write API so ingestion never
// waits on the server; snapshots are written synchronously.
type InfluxSink struct {
	client   influxdb2.Client
	opsAPI   api.WriteAPI
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	s := &InfluxSink{
		client:   client,
		opsAPI:   client.WriteAPI(org, bucket),
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
	errs := s.opsAPI.Errors()
	go func() {
		for err := range errs {
			s.log.Errorf("influx write: %v", err)
		}
	}()
	return s
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordOperation queues one station_operation point. Write failures are
// logged asynchronously.
func (s *InfluxSink) RecordOperation(ev coremetrics.OperationEvent) error {
	p := write.NewPointWithMeasurement("station_operation").
		AddTag("operation", string(ev.Op)).
		AddTag("station_id", strconv.FormatInt(int64(ev.StationID), 10))
	if ev.Component != "" {
		p = p.AddTag("component", ev.Component)
	}
	p = p.AddField("capacity", ev.Capacity).
		AddField("load", ev.Load).
		SetTime(ev.Time)
	s.opsAPI.WritePoint(p)
	return nil
}

// RecordSnapshot writes a station_state point per station and one
// station_tree point for the whole tree.
func (s *InfluxSink) RecordSnapshot(ev coremetrics.SnapshotEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, len(ev.Stations)+1)
	for _, st := range ev.Stations {
		points = append(points, write.NewPointWithMeasurement("station_state").
			AddTag("station_id", strconv.FormatInt(int64(st.ID), 10)).
			AddTag("run_id", ev.RunID).
			AddField("capacity", st.Capacity).
			AddField("load", st.Load).
			AddField("spare", st.Capacity-st.Load).
			SetTime(ev.Time))
	}
	points = append(points, write.NewPointWithMeasurement("station_tree").
		AddTag("run_id", ev.RunID).
		AddField("stations", len(ev.Stations)).
		AddField("height", ev.Height).
		SetTime(ev.Time))
	return s.writeAPI.WritePoint(ctx, points...)
}

// Flush sends the queued operation points.
func (s *InfluxSink) Flush() {
	s.opsAPI.Flush()
}

// Close flushes queued points and releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
