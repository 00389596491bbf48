package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"threemonthcal/internal/config"
	"threemonthcal/internal/holiday"
	appLog "threemonthcal/internal/log"
	"threemonthcal/internal/model"
	"threemonthcal/internal/render"
	"threemonthcal/internal/theme"
	"threemonthcal/internal/timeline"
)

// Server provides the HTTP API: calendar plans, the cached holiday set and
// a manual refresh.
type Server struct {
	cfg      *config.Config
	provider *timeline.Provider
	feedURL  string
	loc      *time.Location
	now      func() time.Time
	mux      *http.ServeMux

	// Latest timeline published by the refresh loop or /api/refresh. Nil
	// until the first cycle; requests then fall back to the cache.
	stateMu sync.RWMutex
	state   *timeline.Timeline

	// Serializes forced refreshes so concurrent POSTs fetch once each in turn.
	refreshMu sync.Mutex
}

// NewServer constructs a new Server. feedURL is the resolved holiday feed,
// used as the holiday_feed click target.
func NewServer(cfg *config.Config, provider *timeline.Provider, feedURL string) *Server {
	loc := cfg.Location()
	s := &Server{
		cfg:      cfg,
		provider: provider,
		feedURL:  feedURL,
		loc:      loc,
		now:      func() time.Time { return time.Now().In(loc) },
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// SetClock replaces the time source. Intended for tests.
func (s *Server) SetClock(now func() time.Time) {
	s.now = now
}

// Publish makes tl the timeline served by the API.
func (s *Server) Publish(tl timeline.Timeline) {
	s.stateMu.Lock()
	s.state = &tl
	s.stateMu.Unlock()
}

// current returns the timeline entry in effect at now.
func (s *Server) current(now time.Time) timeline.Entry {
	s.stateMu.RLock()
	tl := s.state
	s.stateMu.RUnlock()
	if tl == nil || len(tl.Entries) == 0 {
		return s.provider.Snapshot(now)
	}
	return tl.EntryAt(now)
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="threemonthcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/plan", s.handlePlan)
	s.mux.HandleFunc("/api/holidays", s.handleHolidays)
	s.mux.HandleFunc("/api/refresh", s.handleRefresh)
	s.mux.HandleFunc("/holidays.ics", s.handleICS)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handlePlan returns the render plan for a frame.
//
// GET /api/plan?size=medium&date=2026-03-18&appearance=dark
//   - size:       class name or "WxH" (default: config size)
//   - date:       reference day, YYYY-MM-DD in the configured zone (default: today)
//   - appearance: light or dark (default: config appearance)
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()

	sizeSpec := q.Get("size")
	if sizeSpec == "" {
		sizeSpec = s.cfg.Size
	}
	class, size, ok := config.ParseSize(sizeSpec)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid size")
		return
	}

	now := s.now()
	ref := now
	if d := q.Get("date"); d != "" {
		parsed, err := model.ParseDayKey(d, s.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
		ref = parsed
	}

	opts := s.cfg.RenderOptions()
	if a := q.Get("appearance"); a != "" {
		appearance, ok := theme.ParseAppearance(a)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid appearance")
			return
		}
		opts.Appearance = appearance
	}

	entry := s.current(now)
	opts.FeedURL = s.feedURL
	opts.Today = now
	opts.Error = entry.Error

	plan := render.Build(opts, entry.Holidays, ref, class, size)
	appLog.Debug("api plan request", "size_class", plan.Class, "arrangement", plan.Arrangement.String(), "reference", plan.Reference)
	writeJSON(w, http.StatusOK, plan)
}

// holidaysResponse is the JSON response shape for /api/holidays.
type holidaysResponse struct {
	Years    []int    `json:"years"`
	Holidays []string `json:"holidays"`
	Error    string   `json:"error,omitempty"`
}

// handleHolidays returns the holiday keys currently in effect.
func (s *Server) handleHolidays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	now := s.now()
	entry := s.current(now)
	writeJSON(w, http.StatusOK, holidaysResponse{
		Years:    timeline.Years(now),
		Holidays: entry.Holidays.Keys(),
		Error:    entry.Error,
	})
}

// handleICS re-exports the cached holidays as an iCalendar feed.
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	now := s.now()
	entry := s.current(now)
	body := holiday.ExportICS(entry.Holidays, s.loc, now)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// refreshResponse is the JSON response shape for /api/refresh.
type refreshResponse struct {
	Refreshed   bool      `json:"refreshed"`
	Holidays    int       `json:"holidays"`
	Error       string    `json:"error,omitempty"`
	ReloadAfter time.Time `json:"reload_after"`
}

// handleRefresh forces a feed fetch and publishes the resulting timeline.
//
// POST /api/refresh
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	now := s.now()
	tl := s.provider.Timeline(r.Context(), now, true)
	s.Publish(tl)

	first := tl.Entries[0]
	appLog.Info("api refresh", "refreshed", tl.Refreshed, "holidays", first.Holidays.Len())
	writeJSON(w, http.StatusOK, refreshResponse{
		Refreshed:   tl.Refreshed,
		Holidays:    first.Holidays.Len(),
		Error:       first.Error,
		ReloadAfter: tl.ReloadAfter,
	})
}

// Serve runs the HTTP server on the configured listen address until ctx is
// canceled, then shuts it down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
