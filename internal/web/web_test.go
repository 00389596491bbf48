package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threemonthcal/internal/config"
	"threemonthcal/internal/holiday"
	"threemonthcal/internal/timeline"
)

const feedBody = "BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\nDTSTART;VALUE=DATE:20260320\r\nSUMMARY:Vernal Equinox Day\r\nEND:VEVENT\r\n" +
	"BEGIN:VEVENT\r\nDTSTART;VALUE=DATE:20270101\r\nSUMMARY:New Year's Day\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n"

var fixedNow = time.Date(2026, time.March, 18, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, feedURL string, mutate func(*config.Config)) (*Server, *holiday.MemoryStore) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.HolidayURL = feedURL
	if mutate != nil {
		mutate(cfg)
	}

	store := holiday.NewMemoryStore()
	syncer := holiday.NewSyncer(holiday.SyncConfig{Store: store, Location: time.UTC})
	provider := &timeline.Provider{Syncer: syncer, HolidayURL: cfg.HolidayURL}

	s := NewServer(cfg, provider, syncer.ResolveURL(cfg.HolidayURL))
	s.SetClock(func() time.Time { return fixedNow })
	return s, store
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, "", nil)
	rec := do(t, s.Handler(), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestBasicAuth(t *testing.T) {
	s, _ := newTestServer(t, "", func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "cal", Password: "secret"}
	})
	h := s.Handler()

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health").Code)

	rec := do(t, h, http.MethodGet, "/api/plan")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodGet, "/api/plan", nil)
	req.SetBasicAuth("cal", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/plan", nil)
	req.SetBasicAuth("cal", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBasicAuthDisabledWhenIncomplete(t *testing.T) {
	s, _ := newTestServer(t, "", func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "cal"}
	})
	assert.Equal(t, http.StatusOK, do(t, s.Handler(), http.MethodGet, "/api/plan").Code)
}

func TestPlanFromCache(t *testing.T) {
	s, store := newTestServer(t, "", nil)
	require.NoError(t, store.PutYear(2026, []string{"2026-03-20"}))
	require.NoError(t, store.PutYear(2027, []string{}))

	rec := do(t, s.Handler(), http.MethodGet, "/api/plan?size=large&date=2026-03-01")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	body := decode(t, rec)
	assert.Equal(t, "large", body["size_class"])
	assert.Equal(t, "dominant-top", body["arrangement"])
	assert.Equal(t, "2026-03-01", body["reference"])

	months := body["months"].([]any)
	require.Len(t, months, 3)
	cur := months[1].(map[string]any)
	assert.Equal(t, "2026-03", cur["key"])

	// March 2026 starts on Sunday, so day 20 sits at index 19.
	day20 := cur["days"].([]any)[19].(map[string]any)
	assert.Equal(t, "2026-03-20", day20["key"])
	assert.Equal(t, true, day20["holiday"])

	// Today is the 18th of the same month.
	day18 := cur["days"].([]any)[17].(map[string]any)
	assert.Equal(t, true, day18["today"])
}

func TestPlanDefaultsAndErrors(t *testing.T) {
	s, _ := newTestServer(t, "", func(c *config.Config) { c.OnClick = "calendar_app" })
	h := s.Handler()

	body := decode(t, do(t, h, http.MethodGet, "/api/plan"))
	assert.Equal(t, "medium", body["size_class"])
	assert.Equal(t, "2026-03-18", body["reference"])
	assert.Equal(t, "ical://", body["action_url"])

	body = decode(t, do(t, h, http.MethodGet, "/api/plan?size=120x120"))
	assert.Equal(t, "unsupported", body["arrangement"])
	assert.Empty(t, body["months"])

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/plan?size=huge").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/plan?date=2026-13-01").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/plan?appearance=sepia").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPost, "/api/plan").Code)
}

func TestRefreshPublishesTimeline(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedBody))
	}))
	defer feed.Close()

	s, store := newTestServer(t, feed.URL, nil)
	h := s.Handler()

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/api/refresh").Code)

	rec := do(t, h, http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["refreshed"])
	assert.Equal(t, float64(2), body["holidays"])
	assert.Nil(t, body["error"])

	keys, err := store.Year(2027)
	require.NoError(t, err)
	assert.Equal(t, []string{"2027-01-01"}, keys)

	body = decode(t, do(t, h, http.MethodGet, "/api/holidays"))
	assert.Equal(t, []any{"2026-03-20", "2027-01-01"}, body["holidays"])
	assert.Equal(t, []any{float64(2026), float64(2027)}, body["years"])
}

func TestRefreshFailureShowsBanner(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer feed.Close()

	s, store := newTestServer(t, feed.URL, nil)
	require.NoError(t, store.PutYear(2026, []string{"2026-03-20"}))
	h := s.Handler()

	body := decode(t, do(t, h, http.MethodPost, "/api/refresh"))
	assert.Equal(t, false, body["refreshed"])
	assert.Equal(t, timeline.FetchFailedMessage, body["error"])

	body = decode(t, do(t, h, http.MethodGet, "/api/holidays"))
	assert.Equal(t, timeline.FetchFailedMessage, body["error"])
	assert.Equal(t, []any{"2026-03-20"}, body["holidays"])

	plan := decode(t, do(t, h, http.MethodGet, "/api/plan"))
	assert.Equal(t, timeline.FetchFailedMessage, plan["error"])

	// Once the display window passes the banner is gone.
	s.SetClock(func() time.Time { return fixedNow.Add(timeline.DefaultErrorDisplay + time.Second) })
	body = decode(t, do(t, h, http.MethodGet, "/api/holidays"))
	assert.Nil(t, body["error"])
}

func TestHolidaysICS(t *testing.T) {
	s, store := newTestServer(t, "", nil)
	require.NoError(t, store.PutYear(2026, []string{"2026-03-20", "2026-05-05"}))

	rec := do(t, s.Handler(), http.MethodGet, "/holidays.ics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar"))

	set, err := holiday.ParseFeed(rec.Body.Bytes(), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-20", "2026-05-05"}, set.Keys())
}
