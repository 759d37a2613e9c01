package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/equipviz/internal/animation"
	"github.com/JonMunkholm/equipviz/internal/history"
	"github.com/JonMunkholm/equipviz/internal/logging"
)

// DefaultHistoryTimeout bounds a single history read or write.
const DefaultHistoryTimeout = 5 * time.Second

// defaultSource labels ingestions whose caller supplied no name.
const defaultSource = "untitled"

// Options tunes a Service. Zero values use defaults.
type Options struct {
	Metrics        *Metrics
	HistoryTimeout time.Duration
	MaxWait        time.Duration
	Now            func() time.Time
}

// Service orchestrates ingestion: it validates and aggregates a table,
// records history, publishes the new view and restarts the reveal.
type Service struct {
	store   history.Store
	seq     *animation.Sequencer
	gate    *IngestGate
	metrics *Metrics

	historyTimeout time.Duration
	now            func() time.Time

	current atomic.Pointer[View]
}

// NewService wires a Service around an initialized store and a sequencer.
func NewService(store history.Store, seq *animation.Sequencer, opts Options) *Service {
	if seq == nil {
		seq = animation.NewSequencer()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.HistoryTimeout <= 0 {
		opts.HistoryTimeout = DefaultHistoryTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		store:          store,
		seq:            seq,
		gate:           NewIngestGate(opts.MaxWait),
		metrics:        opts.Metrics,
		historyTimeout: opts.HistoryTimeout,
		now:            opts.Now,
	}
}

// Ingest validates and aggregates table, records it in history and makes it
// the current view. A validation error leaves the previous view untouched.
// A history failure is logged and does not stop the view from updating.
func (s *Service) Ingest(ctx context.Context, table RawTable, source string) (*AggregateSummary, error) {
	view, err := s.ingest(ctx, table, source)
	if err != nil {
		return nil, err
	}
	summary := view.Summary
	return &summary, nil
}

// ingest runs the pipeline and returns the view it published.
func (s *Service) ingest(ctx context.Context, table RawTable, source string) (*View, error) {
	if source == "" {
		source = defaultSource
	}
	logger := logging.WithFields(ctx, "source", source)

	if err := s.gate.Acquire(ctx); err != nil {
		s.metrics.Ingestions.WithLabelValues(resultBusy).Inc()
		logger.Warn("ingest rejected", "reason", "busy", "error", err)
		return nil, err
	}
	defer s.gate.Release()

	start := time.Now()
	logger.Info("ingest started", "rows", len(table.Rows))

	ds, err := Validate(table)
	if err != nil {
		s.metrics.Ingestions.WithLabelValues(resultRejected).Inc()
		logger.Warn("ingest rejected", "error", err)
		return nil, err
	}

	summary := Aggregate(ds)
	if summary.Empty() {
		logger.Warn("empty dataset", "rows", len(table.Rows))
	}

	at := s.now()
	s.recordHistory(ctx, logger, history.Entry{
		SourceName:  source,
		IngestedAt:  at,
		UnitCount:   summary.UnitCount,
		AvgPressure: summary.AvgPressure,
	})

	view := &View{
		IngestionID: uuid.New(),
		Source:      source,
		IngestedAt:  at,
		Summary:     summary,
		Rows:        ds,
	}
	s.current.Store(view)
	gen := s.seq.Start(targets(summary))

	s.metrics.Ingestions.WithLabelValues(resultOK).Inc()
	s.metrics.Duration.Observe(time.Since(start).Seconds())
	s.metrics.Units.Set(float64(summary.UnitCount))

	logger.Info("ingest completed",
		"ingestion_id", view.IngestionID,
		"units", summary.UnitCount,
		"categories", len(summary.Categories),
		"generation", gen,
		"duration", time.Since(start),
	)
	return view, nil
}

// recordHistory writes e and only logs on failure. The write is not
// cancelled with the request: an accepted ingestion always finishes.
func (s *Service) recordHistory(ctx context.Context, logger *slog.Logger, e history.Entry) {
	if s.store == nil {
		return
	}

	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.historyTimeout)
	defer cancel()

	stored, err := s.store.Record(hctx, e)
	if err != nil {
		s.metrics.HistoryFailures.Inc()
		logger.Warn("history record failed", "error", err)
		return
	}
	logger.Debug("history recorded", "history_id", stored.ID)
}

// IngestReader reads r as CSV or XLSX, chosen by name's extension, and
// ingests it under the base name.
func (s *Service) IngestReader(ctx context.Context, name string, r io.Reader) (*AggregateSummary, error) {
	view, err := s.IngestReaderView(ctx, name, r)
	if err != nil {
		return nil, err
	}
	return &view.Summary, nil
}

// IngestReaderView is IngestReader returning the view this ingestion
// published. Unlike CurrentView it is not replaced by a later ingestion.
func (s *Service) IngestReaderView(ctx context.Context, name string, r io.Reader) (View, error) {
	format, err := DetectFormat(name)
	if err != nil {
		s.metrics.Ingestions.WithLabelValues(resultRejected).Inc()
		return View{}, err
	}

	table, err := ReadTable(r, format)
	if err != nil {
		s.metrics.Ingestions.WithLabelValues(resultRejected).Inc()
		return View{}, fmt.Errorf("read %s: %w", filepath.Base(name), err)
	}

	view, err := s.ingest(ctx, table, filepath.Base(name))
	if err != nil {
		return View{}, err
	}
	return *view, nil
}

// IngestFile opens path and ingests it.
func (s *Service) IngestFile(ctx context.Context, path string) (*AggregateSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		s.metrics.Ingestions.WithLabelValues(resultError).Inc()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return s.IngestReader(ctx, path, f)
}

// CurrentView returns the published snapshot. Before the first ingestion it
// returns an empty, unloaded view.
func (s *Service) CurrentView() View {
	if v := s.current.Load(); v != nil {
		return *v
	}
	return View{
		Summary: AggregateSummary{Categories: []CategoryCount{}},
		Rows:    Dataset{},
	}
}

// HistoryView returns recorded ingestions, newest first.
func (s *Service) HistoryView(ctx context.Context) ([]history.Entry, error) {
	if s.store == nil {
		return []history.Entry{}, nil
	}

	hctx, cancel := context.WithTimeout(ctx, s.historyTimeout)
	defer cancel()

	entries, err := s.store.List(hctx)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CurrentFrame returns the reveal frame for the current view.
func (s *Service) CurrentFrame() animation.Frame {
	return s.seq.CurrentFrame()
}

// Sequencer exposes the sequencer so a scheduler can drive it.
func (s *Service) Sequencer() *animation.Sequencer {
	return s.seq
}

// WaitForDrain blocks until a running ingestion finishes or ctx ends.
func (s *Service) WaitForDrain(ctx context.Context) error {
	return s.gate.WaitForDrain(ctx)
}

func targets(summary AggregateSummary) []animation.Target {
	t := make([]animation.Target, len(summary.Categories))
	for i, c := range summary.Categories {
		t[i] = animation.Target{Category: c.Category, Count: c.Count}
	}
	return t
}
