// Package refresher runs the fetch-extract-persist flow that keeps each
// artist's next event current, and the batch driver that fans it out over
// every known artist.
package refresher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nextlive/internal/event"
	"nextlive/internal/logger"
	"nextlive/internal/monitoring"
	"nextlive/internal/notifier"
	"nextlive/internal/storage"
	"nextlive/internal/ticketdive"
)

// NotFoundMessage is the user-facing message for a 404 artist page.
const NotFoundMessage = "TicketDiveページが存在しません。"

// Batch fan-out defaults: 50 concurrent refreshes per batch, 700ms of
// politeness delay between batches. The delay protects the third-party
// site, not correctness.
const (
	DefaultBatchSize  = 50
	DefaultBatchDelay = 700 * time.Millisecond
)

// PageFetcher fetches an artist page by its external TicketDive id.
type PageFetcher interface {
	FetchArtistPage(ctx context.Context, externalID string) (string, error)
}

// EventStore is the persistence surface the refresher needs.
type EventStore interface {
	ListTicketDiveArtists(ctx context.Context) ([]storage.Artist, error)
	NextEvent(ctx context.Context, ownerKey string) (*storage.StoredEvent, error)
	ReplaceNextEvent(ctx context.Context, ownerKey string, next *event.Candidate) error
}

// Outcome is the result of refreshing a single artist. Count is the number
// of candidates the extractor produced; zero candidates on a successful
// fetch is still a success.
type Outcome struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

// Summary aggregates a full refresh run.
type Summary struct {
	Total     int      `json:"total"`
	Processed int      `json:"processed"`
	Success   int      `json:"success"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

// Refresher wires the fetcher, store and optional notifier together.
type Refresher struct {
	fetcher    PageFetcher
	store      EventStore
	notifier   notifier.Notifier
	batchSize  int
	batchDelay time.Duration
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithNotifier announces next-event changes through n.
func WithNotifier(n notifier.Notifier) Option {
	return func(r *Refresher) { r.notifier = n }
}

// WithBatch overrides the fan-out parameters.
func WithBatch(size int, delay time.Duration) Option {
	return func(r *Refresher) {
		if size > 0 {
			r.batchSize = size
		}
		if delay >= 0 {
			r.batchDelay = delay
		}
	}
}

// New creates a Refresher.
func New(fetcher PageFetcher, store EventStore, opts ...Option) *Refresher {
	r := &Refresher{
		fetcher:    fetcher,
		store:      store,
		batchSize:  DefaultBatchSize,
		batchDelay: DefaultBatchDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh fetches one artist's page, extracts candidates, selects the
// nearest-dated one and replaces the stored next event with it. A fetch
// failure short-circuits before the extractor runs; a persistence failure
// downgrades an otherwise successful scrape.
func (r *Refresher) Refresh(ctx context.Context, artist storage.Artist) Outcome {
	start := time.Now()
	html, err := r.fetcher.FetchArtistPage(ctx, artist.TicketDiveID)
	monitoring.FetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return fetchOutcome(err)
	}

	candidates := ticketdive.ExtractEvents(html)
	monitoring.ExtractedCandidates.Observe(float64(len(candidates)))

	var next *event.Candidate
	if nearest, ok := event.Nearest(candidates); ok {
		next = &nearest
	}

	// Read the previous row first so a change can be announced after the
	// replace succeeds.
	prev, prevErr := r.store.NextEvent(ctx, artist.ID)
	if prevErr != nil {
		logger.Warn("could not read previous next event", logger.Fields{
			"artist": artist.ID,
			"err":    prevErr.Error(),
		})
	}

	if err := r.store.ReplaceNextEvent(ctx, artist.ID, next); err != nil {
		monitoring.RefreshesTotal.WithLabelValues("store_error").Inc()
		return Outcome{Success: false, Count: len(candidates), Error: err.Error()}
	}

	if r.notifier != nil && next != nil && prevErr == nil && changed(prev, next) {
		if err := r.notifier.NextEventChanged(ctx, artist.Name, next); err != nil {
			logger.Warn("notification failed", logger.Fields{
				"artist": artist.ID,
				"err":    err.Error(),
			})
		}
	}

	monitoring.RefreshesTotal.WithLabelValues("success").Inc()
	return Outcome{Success: true, Count: len(candidates)}
}

// fetchOutcome maps fetch errors onto the outcome taxonomy: a distinct
// localized message for 404, "HTTP {status}" for other non-2xx codes, the
// raw error text for transport failures.
func fetchOutcome(err error) Outcome {
	if errors.Is(err, ticketdive.ErrArtistNotFound) {
		monitoring.RefreshesTotal.WithLabelValues("not_found").Inc()
		return Outcome{Success: false, Count: 0, Error: NotFoundMessage}
	}

	var statusErr *ticketdive.StatusError
	if errors.As(err, &statusErr) {
		monitoring.RefreshesTotal.WithLabelValues("http_error").Inc()
		return Outcome{Success: false, Count: 0, Error: fmt.Sprintf("HTTP %d", statusErr.Code)}
	}

	monitoring.RefreshesTotal.WithLabelValues("network_error").Inc()
	return Outcome{Success: false, Count: 0, Error: err.Error()}
}

func changed(prev *storage.StoredEvent, next *event.Candidate) bool {
	if prev == nil {
		return true
	}
	return prev.Name != next.Name || prev.Date != next.Date || prev.Venue != next.Venue
}

// RefreshAll refreshes every artist with a TicketDive id, in batches of
// concurrent goroutines with an all-settled join per batch. One artist's
// failure never cancels its siblings; failures accumulate as human-readable
// strings in the summary.
func (r *Refresher) RefreshAll(ctx context.Context) Summary {
	monitoring.RefreshRunsTotal.Inc()

	artists, err := r.store.ListTicketDiveArtists(ctx)
	if err != nil {
		return Summary{Errors: []string{fmt.Sprintf("listing artists: %s", err)}}
	}

	sum := Summary{Total: len(artists), Errors: []string{}}

	for start := 0; start < len(artists); start += r.batchSize {
		end := start + r.batchSize
		if end > len(artists) {
			end = len(artists)
		}
		batch := artists[start:end]

		outcomes := make([]Outcome, len(batch))
		var wg sync.WaitGroup
		for i, artist := range batch {
			wg.Add(1)
			go func(i int, artist storage.Artist) {
				defer wg.Done()
				outcomes[i] = r.Refresh(ctx, artist)
			}(i, artist)
		}
		wg.Wait()

		for i, o := range outcomes {
			sum.Processed++
			if o.Success {
				sum.Success++
				continue
			}
			sum.Failed++
			sum.Errors = append(sum.Errors, fmt.Sprintf("%s: %s", batch[i].Name, o.Error))
		}

		logger.Debug("refresh batch settled", logger.Fields{
			"processed": sum.Processed,
			"total":     sum.Total,
		})

		if end < len(artists) {
			select {
			case <-ctx.Done():
				sum.Errors = append(sum.Errors, fmt.Sprintf("aborted: %s", ctx.Err()))
				return sum
			case <-time.After(r.batchDelay):
			}
		}
	}

	return sum
}
