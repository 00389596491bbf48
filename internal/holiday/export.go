package holiday

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"threemonthcal/internal/model"
)

const exportProductID = "-//threemonthcal//holidays//EN"

// ExportICS serializes set as a VCALENDAR of all-day events, one per date,
// keyed in loc. Its output parses back through ParseFeed to the same set.
func ExportICS(set Set, loc *time.Location, stamp time.Time) string {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(exportProductID)

	for _, key := range set.Keys() {
		day, err := model.ParseDayKey(key, loc)
		if err != nil {
			continue
		}
		ev := cal.AddEvent(key + "@threemonthcal")
		ev.SetDtStampTime(stamp.UTC())
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ev.SetSummary("Holiday")
	}

	return cal.Serialize()
}
