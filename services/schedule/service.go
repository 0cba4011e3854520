package schedule

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"onair/models"
	"onair/utils/filter"
)

// Source selects which upstream schedule endpoints are queried.
type Source string

const (
	SourceNetwork Source = "network" // traditional TV networks (per-country)
	SourceWeb     Source = "web"     // streaming / web channels
	SourceAll     Source = "all"
)

// ParseSource maps a user-supplied string onto a Source, defaulting to all.
func ParseSource(s string) Source {
	switch Source(s) {
	case SourceNetwork, SourceWeb:
		return Source(s)
	default:
		return SourceAll
	}
}

// Fetcher retrieves raw, undecoded-shape schedule items from the upstream
// API. Implemented by the tvmaze client; test doubles stand in for it.
type Fetcher interface {
	Schedule(ctx context.Context, date, country string) ([]any, error)
	WebSchedule(ctx context.Context, date string) ([]any, error)
}

// Options carries one fetch invocation's parameters. Zero values take the
// documented defaults: today's date, country US, no filtering, both sources.
type Options struct {
	Date      string
	Country   string
	Types     []string
	Networks  []string
	Genres    []string
	Languages []string
	Source    Source
}

// Service orchestrates the schedule pipeline: concurrent fetch of the two
// endpoints, normalization, then filtering. The result is unsorted and
// ungrouped; renderers decide how to arrange it.
type Service struct {
	fetcher Fetcher

	mu            sync.RWMutex
	lastFetchAt   time.Time
	lastFetchMs   int64
	lastItemCount int
	lastDropped   int
	lastError     string
}

// NewService creates a schedule service backed by the given fetcher.
func NewService(fetcher Fetcher) *Service {
	return &Service{fetcher: fetcher}
}

// FetchShows runs the full pipeline for one invocation. A failed source
// contributes zero items instead of aborting the other; the only returned
// error is context cancellation.
func (s *Service) FetchShows(ctx context.Context, opts Options) ([]models.Show, error) {
	if opts.Date == "" {
		opts.Date = time.Now().Format("2006-01-02")
	}
	if opts.Country == "" {
		opts.Country = "US"
	}
	if opts.Source == "" {
		opts.Source = SourceAll
	}

	start := time.Now()
	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()

	var networkItems, webItems []any
	p := pool.New().WithContext(ctx)
	if opts.Source != SourceWeb {
		p.Go(func(ctx context.Context) error {
			items, err := s.fetcher.Schedule(ctx, opts.Date, opts.Country)
			if err != nil {
				log.Printf("[schedule] network schedule fetch failed (date=%s country=%s): %v", opts.Date, opts.Country, err)
				s.setError(err)
				return nil
			}
			networkItems = items
			return nil
		})
	}
	if opts.Source != SourceNetwork {
		p.Go(func(ctx context.Context) error {
			items, err := s.fetcher.WebSchedule(ctx, opts.Date)
			if err != nil {
				log.Printf("[schedule] web schedule fetch failed (date=%s): %v", opts.Date, err)
				s.setError(err)
				return nil
			}
			webItems = items
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	// Network items first, then web items, so normalization order and
	// therefore the final output are deterministic for a given upstream
	// response.
	raw := make([]any, 0, len(networkItems)+len(webItems))
	raw = append(raw, networkItems...)
	raw = append(raw, webItems...)

	shows := make([]models.Show, 0, len(raw))
	dropped := 0
	for _, item := range raw {
		show := Normalize(item)
		if show == nil {
			dropped++
			continue
		}
		shows = append(shows, *show)
	}
	if dropped > 0 {
		log.Printf("[schedule] dropped %d malformed item(s) of %d", dropped, len(raw))
	}

	// The filters commute, so the order is only a convention.
	shows = filter.ByType(shows, opts.Types)
	shows = filter.ByNetwork(shows, opts.Networks)
	shows = filter.ByGenre(shows, opts.Genres)
	shows = filter.ByLanguage(shows, opts.Languages)

	s.mu.Lock()
	s.lastFetchAt = time.Now().UTC()
	s.lastFetchMs = time.Since(start).Milliseconds()
	s.lastItemCount = len(shows)
	s.lastDropped = dropped
	s.mu.Unlock()

	return shows, nil
}

// Status reports the outcome of the most recent fetch.
func (s *Service) Status() models.ScheduleStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := models.ScheduleStatus{
		LastFetchMs:   s.lastFetchMs,
		LastItemCount: s.lastItemCount,
		LastDropped:   s.lastDropped,
		LastError:     s.lastError,
	}
	if !s.lastFetchAt.IsZero() {
		status.LastFetchAt = s.lastFetchAt.Format(time.RFC3339)
	}
	return status
}

func (s *Service) setError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
}
