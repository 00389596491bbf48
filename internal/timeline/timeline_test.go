package timeline_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threemonthcal/internal/holiday"
	"threemonthcal/internal/timeline"
)

var tokyo = time.FixedZone("Asia/Tokyo", 9*60*60)

// fakeSyncer records calls and returns canned results.
type fakeSyncer struct {
	cached   holiday.Set
	hasCache map[int]bool
	due      bool
	fetched  holiday.Set
	fetchErr error

	fetchCalls int
	fetchURL   string
	marked     []time.Time
}

func (f *fakeSyncer) LoadCached(years []int) holiday.Set { return f.cached }
func (f *fakeSyncer) HasCache(year int) bool             { return f.hasCache[year] }
func (f *fakeSyncer) ShouldRefresh(ref time.Time) bool   { return f.due }

func (f *fakeSyncer) FetchAndCache(_ context.Context, years []int, overrideURL string) (holiday.Set, error) {
	f.fetchCalls++
	f.fetchURL = overrideURL
	return f.fetched, f.fetchErr
}

func (f *fakeSyncer) MarkRefreshed(ref time.Time) error {
	f.marked = append(f.marked, ref)
	return nil
}

func TestTimelineUsesCacheWhenNotDue(t *testing.T) {
	now := time.Date(2026, time.March, 18, 14, 30, 0, 0, tokyo)
	f := &fakeSyncer{
		cached:   holiday.NewSet("2026-03-20"),
		hasCache: map[int]bool{2026: true, 2027: true},
	}
	p := &timeline.Provider{Syncer: f}

	tl := p.Timeline(context.Background(), now, false)

	assert.Zero(t, f.fetchCalls)
	require.Len(t, tl.Entries, 1)
	assert.Empty(t, tl.Entries[0].Error)
	assert.True(t, tl.Entries[0].Holidays.Contains("2026-03-20"))
	assert.False(t, tl.Refreshed)
	assertSameInstant(t, time.Date(2026, time.March, 19, 0, 0, 0, 0, tokyo), tl.ReloadAfter)
}

func TestTimelineFetchesWhenYearMissing(t *testing.T) {
	now := time.Date(2026, time.March, 18, 0, 0, 0, 0, tokyo)
	f := &fakeSyncer{
		hasCache: map[int]bool{2026: true},
		fetched:  holiday.NewSet("2027-01-01"),
	}
	p := &timeline.Provider{Syncer: f, HolidayURL: "https://example.com/h.ics"}

	tl := p.Timeline(context.Background(), now, false)

	assert.Equal(t, 1, f.fetchCalls)
	assert.Equal(t, "https://example.com/h.ics", f.fetchURL)
	assert.Equal(t, []time.Time{now}, f.marked)
	assert.True(t, tl.Refreshed)
	assert.True(t, tl.Entries[0].Holidays.Contains("2027-01-01"))
	// At midnight the next reload is the following midnight.
	assertSameInstant(t, time.Date(2026, time.March, 19, 0, 0, 0, 0, tokyo), tl.ReloadAfter)
}

func TestTimelineFailureAddsClearingEntry(t *testing.T) {
	now := time.Date(2026, time.April, 1, 9, 0, 0, 0, tokyo)
	f := &fakeSyncer{
		cached:   holiday.NewSet("2026-03-20"),
		hasCache: map[int]bool{2026: true, 2027: true},
		due:      true,
		fetchErr: errors.New("offline"),
	}
	p := &timeline.Provider{Syncer: f}

	tl := p.Timeline(context.Background(), now, false)

	assert.Empty(t, f.marked)
	assert.False(t, tl.Refreshed)
	require.Len(t, tl.Entries, 2)
	assert.Equal(t, timeline.FetchFailedMessage, tl.Entries[0].Error)
	assert.Empty(t, tl.Entries[1].Error)
	assert.Equal(t, now.Add(timeline.DefaultErrorDisplay), tl.Entries[1].Date)
	assert.True(t, tl.Entries[0].Holidays.Contains("2026-03-20"))
	assert.True(t, tl.Entries[1].Holidays.Contains("2026-03-20"))

	assert.Equal(t, timeline.FetchFailedMessage, tl.EntryAt(now.Add(time.Second)).Error)
	assert.Empty(t, tl.EntryAt(now.Add(10*time.Second)).Error)
	assert.Equal(t, timeline.FetchFailedMessage, tl.EntryAt(now.Add(-time.Hour)).Error)
}

func TestTimelineForce(t *testing.T) {
	f := &fakeSyncer{hasCache: map[int]bool{2026: true, 2027: true}}
	p := &timeline.Provider{Syncer: f}

	p.Timeline(context.Background(), time.Date(2026, time.March, 18, 0, 0, 0, 0, tokyo), true)
	assert.Equal(t, 1, f.fetchCalls)
}

func TestTimelineEndToEnd(t *testing.T) {
	body := "BEGIN:VCALENDAR\nBEGIN:VEVENT\nDTSTART;VALUE=DATE:20260101\nSUMMARY:New Year's Day\nEND:VEVENT\n" +
		"BEGIN:VEVENT\nDTSTART;VALUE=DATE:20260301\nSUMMARY:Other\nEND:VEVENT\nEND:VCALENDAR\n"
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	store := holiday.NewMemoryStore()
	syncer := holiday.NewSyncer(holiday.SyncConfig{Store: store, Client: srv.Client(), Location: tokyo})
	p := &timeline.Provider{Syncer: syncer, HolidayURL: srv.URL}
	now := time.Date(2026, time.March, 1, 7, 0, 0, 0, tokyo)

	tl := p.Timeline(context.Background(), now, false)
	require.True(t, tl.Refreshed)
	assert.Equal(t, []string{"2026-01-01", "2026-03-01"}, tl.Entries[0].Holidays.Keys())

	keys, err := store.Year(2026)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-01-01", "2026-03-01"}, keys)
	marker, err := store.Marker()
	require.NoError(t, err)
	assert.Equal(t, "2026-03", marker)

	// Same day again: caches exist and the month is marked.
	tl = p.Timeline(context.Background(), now.Add(time.Hour), false)
	assert.False(t, tl.Refreshed)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []string{"2026-01-01", "2026-03-01"}, p.Snapshot(now).Holidays.Keys())
}

func assertSameInstant(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}

func TestNextMidnight(t *testing.T) {
	assertSameInstant(t,
		time.Date(2027, time.January, 1, 0, 0, 0, 0, tokyo),
		timeline.NextMidnight(time.Date(2026, time.December, 31, 23, 59, 59, 0, tokyo)))
	assertSameInstant(t,
		time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		timeline.NextMidnight(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestYears(t *testing.T) {
	assert.Equal(t, []int{2026, 2027}, timeline.Years(time.Date(2026, time.June, 1, 0, 0, 0, 0, tokyo)))
}
