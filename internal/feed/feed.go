package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/celestialorigin/celestial-legacy/internal/config"
)

const (
	userAgent = "celestial-sync/1.0 (+https://github.com/celestialorigin/celestial-legacy)"
	// defaultMaxBody caps how much of a response is read.
	defaultMaxBody = 8 << 20
)

// ErrNotConfigured means a source has nothing to fetch: no url, no usable
// channel id and no handle.
var ErrNotConfigured = errors.New("source not configured")

// Entry is a feed item reduced to the four fields every source must supply.
type Entry struct {
	PlatformID string
	Title      string
	Link       string
	Published  time.Time
}

// Adapter turns raw feed bytes into entries for one source type.
type Adapter interface {
	// Decode parses raw feed content into items.
	Decode(raw []byte) ([]*gofeed.Item, error)
	// Extract pulls the required fields from an item. ok is false when any
	// of them is missing.
	Extract(item *gofeed.Item) (e Entry, ok bool)
}

// FetchError records a source that contributed nothing to a run.
type FetchError struct {
	Source string
	Reason string
	Time   time.Time
}

func (e FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %s", e.Source, e.Reason)
}

// Batch is the entries one source produced, in feed order.
type Batch struct {
	Source  config.Source
	Entries []Entry
}

// Skip records a source that was left out because it is not configured.
type Skip struct {
	Source string
	// Missing names the setting that would enable the source.
	Missing string
}

type FetchResult struct {
	Batches []Batch
	Errors  []FetchError
	Skipped []Skip
}

// ForStore returns the batches produced for the named store, in source order.
func (r FetchResult) ForStore(store string) []Batch {
	var out []Batch
	for _, b := range r.Batches {
		if b.Source.Store == store {
			out = append(out, b)
		}
	}
	return out
}

type Fetcher struct {
	client   *http.Client
	feedBase string
	maxBody  int64
	now      func() time.Time
	adapters map[string]Adapter
}

// NewFetcher wires an HTTP client; a nil client gets one with the given
// timeout.
func NewFetcher(client *http.Client, timeout time.Duration) *Fetcher {
	if client == nil {
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{
		client:   client,
		feedBase: youtubeFeedBase,
		maxBody:  defaultMaxBody,
		now:      time.Now,
		adapters: map[string]Adapter{
			config.SourceTypeYouTube: YouTubeAdapter{},
			config.SourceTypeRSS:     RSSAdapter{},
		},
	}
}

// Fetch retrieves and decodes one source. A source with nothing to fetch
// returns an error wrapping ErrNotConfigured.
func (f *Fetcher) Fetch(ctx context.Context, src config.Source) ([]Entry, error) {
	adapter, ok := f.adapters[src.Type]
	if !ok {
		return nil, fmt.Errorf("no adapter for source type %q", src.Type)
	}

	endpoint, err := f.endpoint(ctx, src)
	if err != nil {
		return nil, err
	}
	if endpoint == "" {
		return nil, fmt.Errorf("%s: %w (set %s)", src.Name, ErrNotConfigured, MissingSetting(src))
	}

	raw, err := f.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	items, err := adapter.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", endpoint, err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		if e, ok := adapter.Extract(item); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (f *Fetcher) endpoint(ctx context.Context, src config.Source) (string, error) {
	if src.URL != "" {
		return src.URL, nil
	}
	if src.Type != config.SourceTypeYouTube {
		return "", nil
	}
	if src.HasChannelID() {
		return ChannelFeedURL(f.feedBase, src.ChannelID), nil
	}
	if src.Handle == "" {
		return "", nil
	}
	id, err := f.ResolveChannelID(ctx, src.Handle)
	if err != nil {
		return "", err
	}
	return ChannelFeedURL(f.feedBase, id), nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned %s", rawURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("%s: response exceeds %d bytes", rawURL, f.maxBody)
	}
	return body, nil
}

// MissingSetting names the config key that would give src an endpoint.
func MissingSetting(src config.Source) string {
	switch {
	case src.URLEnv != "":
		return src.URLEnv
	case src.Type == config.SourceTypeYouTube:
		return "channel_id or handle"
	default:
		return "url"
	}
}

// FetchAll fetches every source concurrently. Batches come back in source
// order; failed sources only show up in Errors, unconfigured ones in Skipped.
func (f *Fetcher) FetchAll(ctx context.Context, sources []config.Source) FetchResult {
	var (
		wg      sync.WaitGroup
		batches = make([]*Batch, len(sources))
		errs    = make([]*FetchError, len(sources))
		skips   = make([]*Skip, len(sources))
	)

	for i, src := range sources {
		wg.Add(1)
		go func(i int, s config.Source) {
			defer wg.Done()
			entries, err := f.Fetch(ctx, s)
			if errors.Is(err, ErrNotConfigured) {
				skips[i] = &Skip{Source: s.Name, Missing: MissingSetting(s)}
				return
			}
			if err != nil {
				errs[i] = &FetchError{Source: s.Name, Reason: err.Error(), Time: f.now().UTC()}
				return
			}
			batches[i] = &Batch{Source: s, Entries: entries}
		}(i, src)
	}
	wg.Wait()

	var result FetchResult
	for i := range sources {
		if batches[i] != nil {
			result.Batches = append(result.Batches, *batches[i])
		}
		if errs[i] != nil {
			result.Errors = append(result.Errors, *errs[i])
		}
		if skips[i] != nil {
			result.Skipped = append(result.Skipped, *skips[i])
		}
	}
	return result
}
