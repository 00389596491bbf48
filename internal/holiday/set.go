// Package holiday keeps a per-year cache of holiday dates fetched from a
// public calendar feed and decides when that cache needs a refresh.
package holiday

import (
	"sort"
	"time"

	"threemonthcal/internal/model"
)

// Set is an immutable set of day-keys ("YYYY-MM-DD"). The zero value is an
// empty set.
type Set struct {
	keys map[string]struct{}
}

// NewSet builds a Set from day-keys. Duplicates collapse.
func NewSet(keys ...string) Set {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return Set{keys: m}
}

// Union returns a new Set holding the keys of all given sets.
func Union(sets ...Set) Set {
	n := 0
	for _, s := range sets {
		n += len(s.keys)
	}
	m := make(map[string]struct{}, n)
	for _, s := range sets {
		for k := range s.keys {
			m[k] = struct{}{}
		}
	}
	return Set{keys: m}
}

// IsHoliday reports whether t's day-key (in t's location) is in the set.
func (s Set) IsHoliday(t time.Time) bool {
	return s.Contains(model.DayKey(t))
}

// Contains reports whether key is in the set.
func (s Set) Contains(key string) bool {
	_, ok := s.keys[key]
	return ok
}

func (s Set) Len() int {
	return len(s.keys)
}

// Keys returns the day-keys in ascending order.
func (s Set) Keys() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ByYear groups the keys by the year they encode. Keys in each group are
// sorted. Keys without a numeric year prefix are dropped.
func (s Set) ByYear() map[int][]string {
	out := make(map[int][]string)
	for _, k := range s.Keys() {
		year, ok := model.YearOfKey(k)
		if !ok {
			continue
		}
		out[year] = append(out[year], k)
	}
	return out
}
