package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/celestialorigin/celestial-legacy/internal/record"
)

// Unique returns the candidates whose url is not already in existing, in
// candidate order. A url repeated among the candidates is kept once.
func Unique(existing, candidates []record.Record) []record.Record {
	seen := make(map[string]bool, len(existing)+len(candidates))
	for _, r := range existing {
		seen[r.URL] = true
	}

	var out []record.Record
	for _, c := range candidates {
		if seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		out = append(out, c)
	}
	return out
}

const (
	signalPrefix = "sig-"
	dayLayout    = "20060102"
)

// Sequencer hands out per-day sequence numbers for signal ids of the form
// sig-<source>-<yyyymmdd>-<seq>.
type Sequencer struct {
	last map[string]int
}

// NewSequencer seeds the per-day counters from well-formed ids in existing.
func NewSequencer(existing []record.Record) *Sequencer {
	s := &Sequencer{last: make(map[string]int)}
	for _, r := range existing {
		if _, day, seq, ok := ParseSignalID(r.ID); ok && seq > s.last[day] {
			s.last[day] = seq
		}
	}
	return s
}

// Assign replaces the record id with the next sequence id for its date.
// Records whose date cannot be parsed keep their id and ok is false.
func (s *Sequencer) Assign(r *record.Record) (ok bool) {
	t, ok := r.Time()
	if !ok {
		return false
	}
	day := t.UTC().Format(dayLayout)
	s.last[day]++
	r.ID = FormatSignalID(string(r.Source), day, s.last[day])
	return true
}

func FormatSignalID(source, day string, seq int) string {
	return fmt.Sprintf("%s%s-%s-%03d", signalPrefix, source, day, seq)
}

// ParseSignalID splits a signal id from the right, so a source name holding
// digits or hyphens cannot be mistaken for the date.
func ParseSignalID(id string) (source, day string, seq int, ok bool) {
	if !strings.HasPrefix(id, signalPrefix) {
		return "", "", 0, false
	}
	rest := id[len(signalPrefix):]

	i := strings.LastIndexByte(rest, '-')
	if i < 0 {
		return "", "", 0, false
	}
	seqPart := rest[i+1:]
	rest = rest[:i]
	if !allDigits(seqPart) {
		return "", "", 0, false
	}
	seq, err := strconv.Atoi(seqPart)
	if err != nil || seq < 1 {
		return "", "", 0, false
	}

	i = strings.LastIndexByte(rest, '-')
	if i <= 0 {
		return "", "", 0, false
	}
	day = rest[i+1:]
	source = rest[:i]
	if len(day) != len(dayLayout) || !allDigits(day) {
		return "", "", 0, false
	}
	if _, err := time.Parse(dayLayout, day); err != nil {
		return "", "", 0, false
	}
	return source, day, seq, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
