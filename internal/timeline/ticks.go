package timeline

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teambition/rrule-go"

	"schedview/internal/model"
)

// maxTicks caps the axis for oversized windows.
const maxTicks = 400

// Tick is one labelled mark on the time axis.
type Tick struct {
	Time  time.Time `json:"time"`
	Label string    `json:"label"`
}

func tickRule(g Granularity) (rrule.Frequency, int, string) {
	switch g {
	case GranularityDay:
		return rrule.HOURLY, 1, "15:04"
	case GranularityTwoDay:
		return rrule.HOURLY, 6, "Mon 15:04"
	default:
		return rrule.DAILY, 1, "Jan 2"
	}
}

// Ticks returns the axis marks inside w for granularity g, aligned to the
// start of the day containing w.Start.
func (c Calendar) Ticks(w model.Window, g Granularity) ([]Tick, error) {
	if w.End.Before(w.Start) {
		return nil, nil
	}
	freq, interval, layout := tickRule(g)
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     freq,
		Interval: interval,
		Dtstart:  c.truncate(w.Start, unitDay),
		Until:    w.End,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "build tick rule", goerr.V("granularity", string(g)))
	}

	times := r.Between(w.Start, w.End, true)
	if len(times) > maxTicks {
		times = times[:maxTicks]
	}
	out := make([]Tick, 0, len(times))
	for _, t := range times {
		t = t.In(c.loc())
		out = append(out, Tick{Time: t, Label: t.Format(layout)})
	}
	return out, nil
}
