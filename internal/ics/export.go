package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "schedview/internal/log"
	"schedview/internal/model"
	"schedview/internal/timeline"
)

const productID = "-//schedview//schedule export//EN"

// ExportOptions select what goes into the calendar.
type ExportOptions struct {
	// All exports every group; otherwise only the final schedule.
	All bool
	// Name is the calendar display name (X-WR-CALNAME).
	Name string
	// Stamp is written as DTSTAMP. Zero means now.
	Stamp time.Time
}

// Export renders intervals as an iCalendar document. Each interval becomes a
// VEVENT whose UID is the interval id, SUMMARY the user name and CATEGORIES
// the group.
func Export(items []model.Interval, opts ExportOptions) string {
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	count := 0
	for _, iv := range items {
		if !opts.All && iv.Group != timeline.GroupFinal {
			continue
		}
		ev := cal.AddEvent(iv.ID)
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(iv.Start)
		ev.SetEndAt(iv.End)
		ev.SetSummary(iv.Content)
		ev.SetProperty(ical.ComponentPropertyCategories, iv.Group)
		if iv.Color != "" {
			ev.SetProperty(ical.ComponentProperty("COLOR"), iv.Color)
		}
		count++
	}

	appLog.Info("ics export completed", "event_count", count, "all_groups", opts.All)
	return cal.Serialize()
}
