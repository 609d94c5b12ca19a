package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/celestialorigin/celestial-legacy/internal/announce"
	"github.com/celestialorigin/celestial-legacy/internal/config"
	"github.com/celestialorigin/celestial-legacy/internal/feed"
	"github.com/celestialorigin/celestial-legacy/internal/ledger"
	"github.com/celestialorigin/celestial-legacy/internal/logging"
	"github.com/celestialorigin/celestial-legacy/internal/record"
	"github.com/celestialorigin/celestial-legacy/internal/store"
)

// Fetcher retrieves every source in one pass. *feed.Fetcher satisfies it.
type Fetcher interface {
	FetchAll(ctx context.Context, sources []config.Source) feed.FetchResult
}

// Recorder receives run diagnostics. *ledger.Ledger satisfies it.
type Recorder interface {
	RecordNoise(errs []feed.FetchError) error
	RecordRun(run ledger.Run) error
	SetLastSync(t time.Time) error
}

// StoreReport describes what one sync did to one store.
type StoreReport struct {
	Store   string
	Path    string
	Fetched int
	Added   int
	Total   int
	Written bool
}

type Report struct {
	Enabled bool
	Started time.Time
	Stores  []StoreReport
	Errors  []feed.FetchError
	Skipped []feed.Skip
}

// Added sums new records across stores.
func (r Report) Added() int {
	n := 0
	for _, s := range r.Stores {
		n += s.Added
	}
	return n
}

type Pipeline struct {
	fetcher   Fetcher
	announcer announce.Announcer
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Pipeline)

// WithAnnouncer replaces the log-only announcer used when posting is enabled.
func WithAnnouncer(a announce.Announcer) Option {
	return func(p *Pipeline) { p.announcer = a }
}

func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func NewPipeline(fetcher Fetcher, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = logging.Discard()
	}
	p := &Pipeline{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.announcer == nil {
		p.announcer = announce.NewLog(logger, nil)
	}
	return p
}

// Sync runs one ingestion pass over the named stores, or every store when
// none are named. Source failures are reported, never returned; an error
// means a store could not be written.
func (p *Pipeline) Sync(ctx context.Context, cfg *config.Config, only ...string) (Report, error) {
	report := Report{Started: p.now().UTC()}
	if !cfg.EnableSync {
		p.logger.Info("sync disabled, nothing to do", "flag", "ENABLE_SYNC")
		return report, nil
	}
	report.Enabled = true

	stores, err := selectStores(cfg, only)
	if err != nil {
		return report, err
	}

	var sources []config.Source
	for _, st := range stores {
		sources = append(sources, cfg.SourcesFor(st.Name)...)
	}
	p.logger.Info("fetching sources", "count", len(sources))
	result := p.fetcher.FetchAll(ctx, sources)
	report.Errors = result.Errors
	report.Skipped = result.Skipped
	for _, s := range result.Skipped {
		p.logger.Info("source not configured, skipping", "source", s.Source, "missing", s.Missing)
	}
	for _, e := range result.Errors {
		p.logger.Warn("source contributed nothing", "source", e.Source, "reason", e.Reason)
	}
	p.record(func(r Recorder) error { return r.RecordNoise(result.Errors) })

	for _, st := range stores {
		sr, err := p.syncStore(ctx, cfg, st, result.ForStore(st.Name))
		report.Stores = append(report.Stores, sr)
		if err != nil {
			return report, err
		}
		p.record(func(r Recorder) error {
			return r.RecordRun(ledger.Run{
				Store:     sr.Store,
				StartedAt: report.Started,
				Fetched:   sr.Fetched,
				Added:     sr.Added,
				Total:     sr.Total,
			})
		})
	}

	p.record(func(r Recorder) error { return r.SetLastSync(p.now()) })
	return report, nil
}

func (p *Pipeline) syncStore(ctx context.Context, cfg *config.Config, st config.Store, batches []feed.Batch) (StoreReport, error) {
	path := cfg.StorePath(st)
	sr := StoreReport{Store: st.Name, Path: path}
	log := p.logger.With("store", st.Name)

	existing, err := store.Load(path)
	switch {
	case errors.Is(err, store.ErrNotExist):
		log.Info("no store file yet, starting empty", "path", path)
	case err != nil:
		log.Info("store unreadable, starting empty", "path", path, "err", err)
	}

	n := Normalizer{Format: st.Format, Observer: cfg.Observer}
	candidates := n.NormalizeBatches(batches)
	sr.Fetched = len(candidates)

	fresh := Unique(existing, candidates)
	if st.Format == config.FormatSignals {
		seq := NewSequencer(existing)
		for i := range fresh {
			if !seq.Assign(&fresh[i]) {
				log.Warn("signal date unparseable, keeping provisional id", "id", fresh[i].ID)
			}
		}
	}
	sr.Added = len(fresh)
	sr.Total = len(existing)

	if len(fresh) == 0 {
		log.Info("no new records", "fetched", sr.Fetched, "total", sr.Total)
		return sr, nil
	}

	if cfg.EnableXPost {
		p.announce(ctx, log, fresh)
	}

	merged := Merge(fresh, existing, cfg.Retention(st))
	if err := store.Save(path, merged); err != nil {
		return sr, fmt.Errorf("writing store %s: %w", st.Name, err)
	}
	sr.Total = len(merged)
	sr.Written = true
	for _, r := range fresh {
		log.Info("record added", "id", r.ID, "title", r.Title)
	}
	log.Info("store updated", "added", sr.Added, "total", sr.Total, "path", path)
	return sr, nil
}

func (p *Pipeline) announce(ctx context.Context, log *slog.Logger, fresh []record.Record) {
	for _, r := range fresh {
		if err := p.announcer.Announce(ctx, r); err != nil {
			log.Warn("announce failed", "id", r.ID, "err", err)
		}
	}
}

// record forwards to the recorder when one is wired. Ledger trouble never
// fails a sync.
func (p *Pipeline) record(fn func(Recorder) error) {
	if p.recorder == nil {
		return
	}
	if err := fn(p.recorder); err != nil {
		p.logger.Warn("ledger write failed", "err", err)
	}
}

func selectStores(cfg *config.Config, only []string) ([]config.Store, error) {
	if len(only) == 0 {
		return cfg.Stores, nil
	}
	var out []config.Store
	for _, name := range only {
		if name == "" {
			continue
		}
		st, ok := cfg.StoreByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown store %q", name)
		}
		out = append(out, st)
	}
	if len(out) == 0 {
		return cfg.Stores, nil
	}
	return out, nil
}
