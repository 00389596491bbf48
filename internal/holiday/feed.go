package holiday

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	ical "github.com/arran4/golang-ical"

	"threemonthcal/internal/model"
)

var (
	// ErrEmptyBody is returned when the feed response carries no bytes.
	ErrEmptyBody = errors.New("holiday: empty feed body")
	// ErrInvalidEncoding is returned when the feed body is not UTF-8 text.
	ErrInvalidEncoding = errors.New("holiday: feed body is not valid UTF-8")
)

var (
	startMarker   = string(ical.PropertyDtstart)
	summaryMarker = string(ical.PropertySummary)
)

// ParseFeed extracts holiday dates from an ICS body.
//
// This is a minimal extraction, not a full iCalendar parser:
//
//   - a line starting with DTSTART captures the value after its last ':' as
//     a pending date, either "20060102" (a date in loc) or
//     "20060102T150405Z" (a UTC instant converted to loc);
//   - the next line starting with SUMMARY commits the pending date as a
//     day-key and clears it;
//   - a pending date replaced by another DTSTART before any SUMMARY is lost.
//
// Any other line is ignored. A nil loc means time.Local.
func ParseFeed(body []byte, loc *time.Location) (Set, error) {
	if len(body) == 0 {
		return Set{}, ErrEmptyBody
	}
	if !utf8.Valid(body) {
		return Set{}, ErrInvalidEncoding
	}
	if loc == nil {
		loc = time.Local
	}

	keys := make(map[string]struct{})
	var pending *time.Time

	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimRight(line, "\r")

		switch {
		case strings.HasPrefix(line, startMarker):
			i := strings.LastIndexByte(line, ':')
			if i < 0 {
				continue
			}
			if t, err := parseStartValue(strings.TrimSpace(line[i+1:]), loc); err == nil {
				pending = &t
			}
		case strings.HasPrefix(line, summaryMarker):
			if pending != nil {
				keys[model.DayKey(*pending)] = struct{}{}
			}
			pending = nil
		}
	}

	return Set{keys: keys}, nil
}

// parseStartValue parses the two DTSTART forms the feed uses.
func parseStartValue(v string, loc *time.Location) (time.Time, error) {
	if strings.Contains(v, "T") {
		t, err := time.Parse("20060102T150405Z", v)
		if err != nil {
			return time.Time{}, err
		}
		return t.In(loc), nil
	}
	return time.ParseInLocation("20060102", v, loc)
}
