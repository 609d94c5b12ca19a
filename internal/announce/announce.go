package announce

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/celestialorigin/celestial-legacy/internal/record"
)

// Announcer publishes newly accepted records somewhere outside the store.
type Announcer interface {
	Announce(ctx context.Context, r record.Record) error
}

// Log is an Announcer that only reports what it would have posted.
type Log struct {
	logger *slog.Logger
	out    io.Writer
}

// NewLog returns a log-only announcer. out receives one "would post" line per
// record and may be nil.
func NewLog(logger *slog.Logger, out io.Writer) *Log {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Log{logger: logger, out: out}
}

func (a *Log) Announce(ctx context.Context, r record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.URL == "" {
		return fmt.Errorf("announce %s: record has no url", r.ID)
	}
	a.logger.Info("would post", "id", r.ID, "title", r.Title, "url", r.URL)
	if a.out != nil {
		if _, err := fmt.Fprintf(a.out, "would post: %s -> %s\n", r.Title, r.URL); err != nil {
			return fmt.Errorf("announce %s: %w", r.ID, err)
		}
	}
	return nil
}
