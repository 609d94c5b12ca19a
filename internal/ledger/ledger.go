package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/celestialorigin/celestial-legacy/internal/feed"
)

const timeLayout = time.RFC3339

// Ledger keeps diagnostics about sync runs: fetch failures ("noise") and
// per-store run summaries. Record content never lives here.
type Ledger struct {
	readDB  *sql.DB
	writeDB *sql.DB
	entropy *rand.Rand
	now     func() time.Time
}

func Open(dbPath string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	l := &Ledger{
		readDB:  readDB,
		writeDB: writeDB,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
	if err := l.migrate(); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) migrate() error {
	_, err := l.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS noise (
			id          TEXT PRIMARY KEY,
			source      TEXT NOT NULL,
			reason      TEXT NOT NULL,
			observed_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_noise_observed ON noise(observed_at DESC);
		CREATE INDEX IF NOT EXISTS idx_noise_source ON noise(source);

		CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			store      TEXT NOT NULL,
			started_at TEXT NOT NULL,
			fetched    INTEGER NOT NULL DEFAULT 0,
			added      INTEGER NOT NULL DEFAULT 0,
			total      INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (l *Ledger) Close() error {
	var errs []error
	if l.readDB != nil {
		errs = append(errs, l.readDB.Close())
	}
	if l.writeDB != nil {
		errs = append(errs, l.writeDB.Close())
	}
	return errors.Join(errs...)
}

func (l *Ledger) newID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), l.entropy).String()
}

// RecordNoise stores one row per failed source.
func (l *Ledger) RecordNoise(errs []feed.FetchError) error {
	if len(errs) == 0 {
		return nil
	}
	tx, err := l.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range errs {
		at := e.Time
		if at.IsZero() {
			at = l.now()
		}
		query, args, err := sq.Insert("noise").
			Columns("id", "source", "reason", "observed_at").
			Values(l.newID(at), e.Source, e.Reason, at.UTC().Format(timeLayout)).
			ToSql()
		if err != nil {
			return fmt.Errorf("building noise insert: %w", err)
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("recording noise for %s: %w", e.Source, err)
		}
	}
	return tx.Commit()
}

// RecordRun stores a per-store run summary. A zero StartedAt means now.
func (l *Ledger) RecordRun(run Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = l.now()
	}
	query, args, err := sq.Insert("runs").
		Columns("id", "store", "started_at", "fetched", "added", "total").
		Values(l.newID(run.StartedAt), run.Store, run.StartedAt.UTC().Format(timeLayout), run.Fetched, run.Added, run.Total).
		ToSql()
	if err != nil {
		return fmt.Errorf("building run insert: %w", err)
	}
	if _, err := l.writeDB.Exec(query, args...); err != nil {
		return fmt.Errorf("recording run for %s: %w", run.Store, err)
	}
	return nil
}

// Noise lists fetch failures, newest first.
func (l *Ledger) Noise(opts QueryOpts) ([]Noise, error) {
	q := sq.Select("id", "source", "reason", "observed_at").From("noise")
	if opts.Source != "" {
		q = q.Where(sq.Eq{"source": opts.Source})
	}
	if !opts.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"observed_at": opts.Since.UTC().Format(timeLayout)})
	}
	query, args, err := q.OrderBy("observed_at DESC", "id DESC").Limit(opts.limit()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building noise query: %w", err)
	}

	rows, err := l.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying noise: %w", err)
	}
	defer rows.Close()

	var out []Noise
	for rows.Next() {
		var (
			n  Noise
			at string
		)
		if err := rows.Scan(&n.ID, &n.Source, &n.Reason, &at); err != nil {
			return nil, fmt.Errorf("scanning noise: %w", err)
		}
		n.ObservedAt, _ = time.Parse(timeLayout, at)
		out = append(out, n)
	}
	return out, rows.Err()
}

// Runs lists run summaries, newest first.
func (l *Ledger) Runs(opts QueryOpts) ([]Run, error) {
	q := sq.Select("id", "store", "started_at", "fetched", "added", "total").From("runs")
	if opts.Store != "" {
		q = q.Where(sq.Eq{"store": opts.Store})
	}
	if !opts.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"started_at": opts.Since.UTC().Format(timeLayout)})
	}
	query, args, err := q.OrderBy("started_at DESC", "id DESC").Limit(opts.limit()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building runs query: %w", err)
	}

	rows, err := l.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r  Run
			at string
		)
		if err := rows.Scan(&r.ID, &r.Store, &at, &r.Fetched, &r.Added, &r.Total); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(timeLayout, at)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LastSync reports when a sync last completed; ok is false if never.
func (l *Ledger) LastSync() (t time.Time, ok bool) {
	query, args, err := sq.Select("value").From("meta").Where(sq.Eq{"key": "last_sync"}).ToSql()
	if err != nil {
		return time.Time{}, false
	}
	var value string
	if err := l.readDB.QueryRow(query, args...).Scan(&value); err != nil {
		return time.Time{}, false
	}
	t, err = time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (l *Ledger) SetLastSync(t time.Time) error {
	_, err := l.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES ('last_sync', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, t.UTC().Format(timeLayout))
	return err
}

// Prune deletes noise and run rows older than the given age.
func (l *Ledger) Prune(olderThan time.Duration) (int64, error) {
	cutoff := l.now().Add(-olderThan).UTC().Format(timeLayout)

	var total int64
	for table, column := range map[string]string{"noise": "observed_at", "runs": "started_at"} {
		query, args, err := sq.Delete(table).Where(sq.Lt{column: cutoff}).ToSql()
		if err != nil {
			return total, fmt.Errorf("building prune of %s: %w", table, err)
		}
		res, err := l.writeDB.Exec(query, args...)
		if err != nil {
			return total, fmt.Errorf("pruning %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}

	if total > 0 {
		if _, err := l.writeDB.Exec("VACUUM"); err != nil {
			return total, fmt.Errorf("vacuum: %w", err)
		}
	}
	return total, nil
}

// Stats returns row counts and the database file size.
func (l *Ledger) Stats(dbPath string) (Stats, error) {
	var s Stats
	for table, dst := range map[string]*int{"noise": &s.Noise, "runs": &s.Runs} {
		query, args, err := sq.Select("COUNT(*)").From(table).ToSql()
		if err != nil {
			return s, err
		}
		if err := l.readDB.QueryRow(query, args...).Scan(dst); err != nil {
			return s, fmt.Errorf("counting %s: %w", table, err)
		}
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		return s, fmt.Errorf("stat ledger: %w", err)
	}
	s.Size = info.Size()
	s.LastSync, s.Synced = l.LastSync()
	return s, nil
}
