package ledger

import "time"

// Noise is one fetch failure.
type Noise struct {
	ID         string
	Source     string
	Reason     string
	ObservedAt time.Time
}

// Run summarises what one sync did to one store.
type Run struct {
	ID        string
	Store     string
	StartedAt time.Time
	Fetched   int
	Added     int
	Total     int
}

type QueryOpts struct {
	Source string
	Store  string
	Since  time.Time
	Limit  int
}

func (o QueryOpts) limit() uint64 {
	if o.Limit <= 0 {
		return 100
	}
	return uint64(o.Limit)
}

type Stats struct {
	Noise    int
	Runs     int
	Size     int64
	LastSync time.Time
	Synced   bool
}
