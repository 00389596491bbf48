package holiday

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	appLog "threemonthcal/internal/log"
	"threemonthcal/internal/model"
)

// DefaultFeedURL is the public Japanese holiday calendar.
const DefaultFeedURL = "https://calendar.google.com/calendar/ical/2bk907eqjut8imoorgq1qa4olc%40group.calendar.google.com/public/basic.ics"

const (
	defaultFetchTimeout = 15 * time.Second
	maxFeedBytes        = 8 << 20
	userAgent           = "threemonthcal/0.1"
)

// SyncConfig configures a Syncer. Zero fields take defaults.
type SyncConfig struct {
	// Store holds the year records and the refresh marker. Required.
	Store Store

	// Client performs feed requests. If nil, a client with a 15s timeout
	// is used.
	Client *http.Client

	// DefaultURL is used when no valid override is given. If empty,
	// DefaultFeedURL is used.
	DefaultURL string

	// Location is the calendar zone feed dates are keyed in. If nil,
	// time.Local is used.
	Location *time.Location
}

// Syncer fetches the holiday feed, caches it per year and tracks when it was
// last refreshed.
type Syncer struct {
	store      Store
	client     *http.Client
	defaultURL string
	loc        *time.Location
}

// NewSyncer creates a Syncer from cfg.
func NewSyncer(cfg SyncConfig) *Syncer {
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: defaultFetchTimeout}
	}
	if cfg.DefaultURL == "" {
		cfg.DefaultURL = DefaultFeedURL
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Syncer{
		store:      cfg.Store,
		client:     cfg.Client,
		defaultURL: cfg.DefaultURL,
		loc:        cfg.Location,
	}
}

// Location returns the zone feed dates are keyed in.
func (s *Syncer) Location() *time.Location {
	return s.loc
}

// LoadCached unions whatever is cached for years. Missing or unreadable
// records contribute nothing.
func (s *Syncer) LoadCached(years []int) Set {
	keys := make([]string, 0)
	for _, year := range years {
		yearKeys, err := s.store.Year(year)
		if err != nil {
			if !errors.Is(err, ErrNotCached) {
				appLog.Error("holiday cache read failed", err, "year", year)
			}
			continue
		}
		keys = append(keys, yearKeys...)
	}
	return NewSet(keys...)
}

// HasCache reports whether a readable record exists for year. A corrupt
// record counts as missing so the next refresh rewrites it.
func (s *Syncer) HasCache(year int) bool {
	_, err := s.store.Year(year)
	return err == nil
}

// ShouldRefresh reports whether a refresh is due: only on the first day of a
// month, and only if that month has not been refreshed yet. The calendar is
// ref's location.
func (s *Syncer) ShouldRefresh(ref time.Time) bool {
	if ref.Day() != 1 {
		return false
	}
	last, err := s.store.Marker()
	if err != nil {
		return true
	}
	return last != model.MonthToken(ref)
}

// MarkRefreshed records ref's month as refreshed. Call it only after a
// successful FetchAndCache.
func (s *Syncer) MarkRefreshed(ref time.Time) error {
	token := model.MonthToken(ref)
	if err := s.store.PutMarker(token); err != nil {
		return fmt.Errorf("holiday: write refresh marker: %w", err)
	}
	appLog.Debug("holiday refresh marked", "month", token)
	return nil
}

// ResolveURL returns the trimmed override when it is an absolute http(s) URL
// with a host, otherwise the default feed URL.
func (s *Syncer) ResolveURL(override string) string {
	trimmed := strings.TrimSpace(override)
	if trimmed == "" {
		return s.defaultURL
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		appLog.Info("holiday url override ignored", "override", redactURL(trimmed))
		return s.defaultURL
	}
	return trimmed
}

// FetchAndCache downloads and parses the feed, then rewrites the record of
// every requested year (empty when the feed has none for it). It returns the
// full parsed set. On any error nothing is written and the caller should keep
// its previously cached data.
func (s *Syncer) FetchAndCache(ctx context.Context, years []int, overrideURL string) (Set, error) {
	target := s.ResolveURL(overrideURL)

	body, err := s.fetch(ctx, target)
	if err != nil {
		appLog.Error("holiday fetch failed", err, "url", redactURL(target))
		return Set{}, err
	}

	set, err := ParseFeed(body, s.loc)
	if err != nil {
		appLog.Error("holiday feed parse failed", err, "url", redactURL(target))
		return Set{}, err
	}

	grouped := set.ByYear()
	for _, year := range years {
		if err := s.store.PutYear(year, grouped[year]); err != nil {
			appLog.Error("holiday cache write failed", err, "year", year)
			return Set{}, fmt.Errorf("holiday: write cache for %d: %w", year, err)
		}
	}

	appLog.Info("holiday fetch success", "url", redactURL(target), "dates", set.Len(), "years", years)
	return set, nil
}

func (s *Syncer) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/calendar, text/plain;q=0.9, */*;q=0.5")

	appLog.Info("holiday fetch start", "url", redactURL(target))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("holiday: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}
	return body, nil
}

// redactURL hides the path and query of a feed URL for logging; private
// calendar URLs embed their secret there.
//
//	https://calendar.google.com/calendar/ical/x/private-abc/basic.ics
//	-> https://calendar.google.com/...(redacted)
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return "feed://...(redacted)"
	}
	return parsed.Scheme + "://" + parsed.Host + redactedSuffix
}
