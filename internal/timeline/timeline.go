// Package timeline runs one refresh cycle of the calendar: it loads the
// cached holidays, refreshes them when due and describes what to show until
// the next reload.
package timeline

import (
	"context"
	"time"

	"github.com/teambition/rrule-go"

	"threemonthcal/internal/holiday"
	appLog "threemonthcal/internal/log"
	"threemonthcal/internal/model"
)

// FetchFailedMessage is shown while a failed refresh is being reported.
const FetchFailedMessage = "Holiday fetch failed"

// DefaultErrorDisplay is how long the failure banner stays up.
const DefaultErrorDisplay = 5 * time.Second

// Entry is what to show from Date on.
type Entry struct {
	Date     time.Time
	Holidays holiday.Set
	// Error is the banner text, empty when there is nothing to report.
	Error string
}

// Timeline is a refresh result: entries in date order and the time after
// which the host should run the next cycle.
type Timeline struct {
	Entries     []Entry
	ReloadAfter time.Time
	// Refreshed reports whether the feed was fetched successfully.
	Refreshed bool
}

// Syncer is the part of holiday.Syncer a Provider uses.
type Syncer interface {
	LoadCached(years []int) holiday.Set
	HasCache(year int) bool
	ShouldRefresh(ref time.Time) bool
	FetchAndCache(ctx context.Context, years []int, overrideURL string) (holiday.Set, error)
	MarkRefreshed(ref time.Time) error
}

// Provider builds timelines.
type Provider struct {
	Syncer Syncer
	// HolidayURL is the user's feed override; empty for the default feed.
	HolidayURL string
	// ErrorDisplay is how long a failure banner stays up. If zero,
	// DefaultErrorDisplay is used.
	ErrorDisplay time.Duration
}

// Years returns the years a timeline keeps cached: now's year and the next.
func Years(now time.Time) []int {
	return []int{now.Year(), now.Year() + 1}
}

// Snapshot returns an entry from the cache only, without network access.
func (p *Provider) Snapshot(now time.Time) Entry {
	return Entry{Date: now, Holidays: p.Syncer.LoadCached(Years(now))}
}

// Timeline runs one cycle at now. The feed is fetched when force is set, a
// year has never been cached, or a monthly refresh is due. A failed fetch
// keeps the cached holidays and adds a banner that a second entry clears
// after ErrorDisplay.
func (p *Provider) Timeline(ctx context.Context, now time.Time, force bool) Timeline {
	years := Years(now)
	holidays := p.Syncer.LoadCached(years)

	missing := false
	for _, y := range years {
		if !p.Syncer.HasCache(y) {
			missing = true
			break
		}
	}

	var (
		errMsg    string
		refreshed bool
	)
	if force || missing || p.Syncer.ShouldRefresh(now) {
		appLog.Info("holiday refresh due", "force", force, "missing_cache", missing, "month", model.MonthToken(now))
		fetched, err := p.Syncer.FetchAndCache(ctx, years, p.HolidayURL)
		if err != nil {
			errMsg = FetchFailedMessage
		} else {
			holidays = fetched
			refreshed = true
			if err := p.Syncer.MarkRefreshed(now); err != nil {
				// The cache itself is fresh; the next cycle simply retries.
				appLog.Error("holiday refresh marker not saved", err)
			}
		}
	}

	tl := Timeline{
		Entries:     []Entry{{Date: now, Holidays: holidays, Error: errMsg}},
		ReloadAfter: NextMidnight(now),
		Refreshed:   refreshed,
	}
	if errMsg != "" {
		display := p.ErrorDisplay
		if display <= 0 {
			display = DefaultErrorDisplay
		}
		tl.Entries = append(tl.Entries, Entry{Date: now.Add(display), Holidays: holidays})
	}
	return tl
}

// NextMidnight returns the first local midnight strictly after now, or one
// hour after now if no such instant can be computed.
func NextMidnight(now time.Time) time.Time {
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: model.StartOfDay(now),
		Count:   3,
	})
	if err != nil {
		appLog.Error("reload rule failed", err)
		return now.Add(time.Hour)
	}
	next := r.After(now, false)
	if next.IsZero() {
		return now.Add(time.Hour)
	}
	return next
}

// EntryAt returns the entry in effect at t: the last one dated at or before
// t, or the first entry when t precedes them all.
func (tl Timeline) EntryAt(t time.Time) Entry {
	if len(tl.Entries) == 0 {
		return Entry{Date: t}
	}
	current := tl.Entries[0]
	for _, e := range tl.Entries[1:] {
		if e.Date.After(t) {
			break
		}
		current = e
	}
	return current
}
