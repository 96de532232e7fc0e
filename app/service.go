package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/cwire/config"
	coremetrics "github.com/kilianp07/cwire/core/metrics"
	"github.com/kilianp07/cwire/core/report"
	"github.com/kilianp07/cwire/core/station"
	"github.com/kilianp07/cwire/infra/logger"
	_ "github.com/kilianp07/cwire/infra/metrics" // registers the built-in sinks
	"github.com/kilianp07/cwire/pkg/export"
)

// IngestStats counts what happened to the lines of one input stream.
type IngestStats struct {
	Records   int `json:"records"`
	Created   int `json:"created"`
	Merged    int `json:"merged"`
	Malformed int `json:"malformed"`
}

// Report is the station report produced from the current tree.
type Report struct {
	Summary report.Summary  `json:"summary"`
	Least   []report.Margin `json:"least_spare"`
	Most    []report.Margin `json:"most_spare"`
}

// Service owns the station tree and serializes every access to it. It is
// safe for concurrent use, unlike the tree itself.
type Service struct {
	mu    sync.Mutex
	tree  *station.Tree
	sink  coremetrics.MetricsSink
	log   logger.Logger
	runID string

	abortOnMalformed bool
	maxStations      int
}

// Option configures a Service.
type Option func(*Service)

// WithSink sets the metrics sink. Nil keeps the no-op sink.
func WithSink(sink coremetrics.MetricsSink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxStations caps the number of stations kept.
func WithMaxStations(n int) Option {
	return func(s *Service) { s.maxStations = n }
}

// WithMalformedPolicy selects config.OnMalformedSkip or config.OnMalformedAbort.
func WithMalformedPolicy(policy string) Option {
	return func(s *Service) { s.abortOnMalformed = policy == config.OnMalformedAbort }
}

// NewService returns a Service with an empty tree.
func NewService(opts ...Option) *Service {
	s := &Service{
		sink:  coremetrics.NopSink{},
		log:   logger.New("service"),
		runID: uuid.NewString(),
	}
	for _, o := range opts {
		o(s)
	}
	s.tree = station.NewTree(station.WithMaxStations(s.maxStations))
	return s
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	return NewService(
		WithSink(sink),
		WithMaxStations(cfg.Tree.MaxStations),
		WithMalformedPolicy(cfg.Input.OnMalformed),
	), nil
}

// RunID identifies this service instance in snapshots.
func (s *Service) RunID() string { return s.runID }

// Apply inserts or merges one station.
func (s *Service) Apply(st station.Station) error {
	_, err := s.apply(st)
	return err
}

func (s *Service) apply(st station.Station) (bool, error) {
	s.mu.Lock()
	created, err := s.tree.InsertOrMerge(st)
	s.mu.Unlock()
	if err != nil {
		s.record(coremetrics.OpReject, st)
		return false, fmt.Errorf("apply station %d: %w", st.ID, err)
	}
	if created {
		s.record(coremetrics.OpCreate, st)
	} else {
		s.record(coremetrics.OpMerge, st)
	}
	return created, nil
}

// Reject accounts for a record that could not be decoded.
func (s *Service) Reject(err error) {
	s.log.Debugf("record rejected: %v", err)
	s.record(coremetrics.OpMalformed, station.Station{})
}

// Ingest applies every record read from r. Malformed lines are skipped or
// abort the run depending on the configured policy; a station that cannot be
// stored always aborts it. ctx is checked between records.
func (s *Service) Ingest(ctx context.Context, r io.Reader, opts ...export.DecoderOption) (IngestStats, error) {
	var stats IngestStats
	dec := export.NewDecoder(r, opts...)
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		st, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, export.ErrMalformedRecord) {
			stats.Malformed++
			s.record(coremetrics.OpMalformed, station.Station{})
			if s.abortOnMalformed {
				return stats, err
			}
			s.log.Warnf("skipping %v", err)
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("read stations: %w", err)
		}
		stats.Records++
		created, err := s.apply(st)
		if err != nil {
			return stats, err
		}
		if created {
			stats.Created++
		} else {
			stats.Merged++
		}
	}
	s.log.Infof("ingested %d records: %d stations created, %d merged, %d malformed",
		stats.Records, stats.Created, stats.Merged, stats.Malformed)
	return stats, nil
}

// Delete removes a station. It reports whether the station existed.
func (s *Service) Delete(id int32) bool {
	s.mu.Lock()
	removed, ok := s.tree.Delete(id)
	s.mu.Unlock()
	if !ok {
		s.record(coremetrics.OpDeleteMiss, station.Station{ID: id})
		return false
	}
	s.record(coremetrics.OpDelete, removed)
	return true
}

// Stations returns the stations in ascending ID order.
func (s *Service) Stations() []station.Station {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Stations()
}

// Len returns the number of stations.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Len()
}

// Export writes the ordered stations to w in the given format: "text",
// "csv" or "json".
func (s *Service) Export(w io.Writer, format string) error {
	seq := slices.Values(s.Stations())
	switch format {
	case "", "text":
		return export.WriteRecords(w, seq)
	case "csv":
		return export.WriteCSV(w, seq)
	case "json":
		return export.WriteJSON(w, seq)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// Report summarizes the stations and lists the n with the least and the
// most spare capacity.
func (s *Service) Report(n int) Report {
	stations := s.Stations()
	least, most := report.MinMax(stations, n)
	return Report{Summary: report.Summarize(stations), Least: least, Most: most}
}

// Snapshot sends the current stations to the sinks that record snapshots.
func (s *Service) Snapshot() error {
	rec, ok := s.sink.(coremetrics.SnapshotRecorder)
	if !ok {
		return nil
	}
	s.mu.Lock()
	ev := coremetrics.SnapshotEvent{
		RunID:    s.runID,
		Stations: s.tree.Stations(),
		Height:   s.tree.Height(),
		Time:     time.Now(),
	}
	s.mu.Unlock()
	if err := rec.RecordSnapshot(ev); err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}
	return nil
}

// Verify checks the tree invariants.
func (s *Service) Verify() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Check()
}

// Close releases the tree.
func (s *Service) Close() error {
	s.mu.Lock()
	s.tree.Clear()
	s.mu.Unlock()
	return nil
}

func (s *Service) record(op coremetrics.Operation, st station.Station) {
	ev := coremetrics.OperationEvent{
		Op:        op,
		StationID: st.ID,
		Capacity:  st.Capacity,
		Load:      st.Load,
		Component: "ingest",
		Time:      time.Now(),
	}
	if err := s.sink.RecordOperation(ev); err != nil {
		s.log.Warnf("metrics %s: %v", op, err)
	}
}
