package source

import (
	"context"

	"golang.org/x/sync/errgroup"

	appLog "schedview/internal/log"
	"schedview/internal/model"
	"schedview/internal/timeline"
)

// Kind names the resource an Event settles.
type Kind int

const (
	KindUsers Kind = iota
	KindSchedule
)

func (k Kind) String() string {
	if k == KindUsers {
		return "users"
	}
	return "schedule"
}

// Event is the completion of one startup load. Err is set when the load
// failed; the payload is then empty.
type Event struct {
	Kind     Kind
	Users    []model.User
	Schedule *model.ScheduleDocument
	Err      error
}

// Locations are the two resource locations.
type Locations struct {
	Users    string
	Schedule string
}

// Start runs both loads concurrently and delivers one Event per load in
// completion order. The channel is closed after both have been delivered.
func Start(ctx context.Context, f *Fetcher, loc Locations) <-chan Event {
	events := make(chan Event, 2)

	var g errgroup.Group
	g.Go(func() error {
		users, err := f.FetchUsers(ctx, loc.Users)
		events <- Event{Kind: KindUsers, Users: users, Err: err}
		return nil
	})
	g.Go(func() error {
		doc, err := f.FetchSchedule(ctx, loc.Schedule)
		events <- Event{Kind: KindSchedule, Schedule: doc, Err: err}
		return nil
	})

	go func() {
		_ = g.Wait()
		close(events)
	}()
	return events
}

// Apply settles ev on the stage. A failed load is logged and settles with no
// users or an empty document. It reports whether the event mounted the host.
func Apply(st *timeline.Stage, ev Event) bool {
	if ev.Err != nil {
		appLog.Error("load failed", ev.Err, "resource", ev.Kind.String())
	}
	switch ev.Kind {
	case KindUsers:
		if ev.Err != nil {
			return st.UsersLoaded(nil)
		}
		appLog.Info("users loaded", "count", len(ev.Users))
		return st.UsersLoaded(ev.Users)
	default:
		if ev.Err != nil || ev.Schedule == nil {
			return st.ScheduleLoaded(&model.ScheduleDocument{})
		}
		appLog.Info("schedule loaded",
			"layers", len(ev.Schedule.Layers),
			"override", len(ev.Schedule.OverrideLayer),
			"final", len(ev.Schedule.FinalSchedule))
		return st.ScheduleLoaded(ev.Schedule)
	}
}

// Load runs both loads and applies every event on the calling goroutine.
func Load(ctx context.Context, f *Fetcher, loc Locations, st *timeline.Stage) {
	for ev := range Start(ctx, f, loc) {
		Apply(st, ev)
	}
}
