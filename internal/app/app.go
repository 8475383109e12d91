// Package app turns a loaded config into the timeline building blocks shared
// by the web server, the terminal UI and the one-shot commands.
package app

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"schedview/internal/config"
	"schedview/internal/source"
	"schedview/internal/timeline"
)

// Env is the resolved view configuration.
type Env struct {
	Config      *config.Config
	Location    *time.Location
	Calendar    timeline.Calendar
	Colors      timeline.ColorTable
	Anchor      time.Time
	InitialEnd  time.Time
	Granularity timeline.Granularity
	Clock       timeline.Clock
}

// NewEnv validates cfg and resolves zones, dates and colors.
func NewEnv(cfg *config.Config) (*Env, error) {
	if cfg == nil {
		return nil, config.ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	anchor, err := cfg.AnchorDate()
	if err != nil {
		return nil, err
	}
	end, err := cfg.InitialEnd()
	if err != nil {
		return nil, err
	}
	g, err := timeline.ParseGranularity(cfg.View.Granularity)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid view granularity")
	}

	return &Env{
		Config:   cfg,
		Location: loc,
		Calendar: timeline.NewCalendar(loc, cfg.WeekStart),
		Colors: timeline.ColorTable{
			Users:    cfg.Colors.Users,
			Layer:    cfg.Colors.Layer,
			Override: cfg.Colors.Override,
			Final:    cfg.Colors.Final,
		},
		Anchor:      anchor,
		InitialEnd:  end,
		Granularity: g,
		Clock:       timeline.RealClock{},
	}, nil
}

// Options returns the mount options of a new host.
func (e *Env) Options() timeline.Options {
	return timeline.DefaultOptions(e.Anchor, e.InitialEnd)
}

// NewStage creates the load gate for this environment.
func (e *Env) NewStage(mount timeline.MountFunc) *timeline.Stage {
	return timeline.NewStage(e.Colors, e.Location, mount)
}

// Mount creates a widget for ds and a navigator attached to it.
func (e *Env) Mount(ds timeline.Dataset) (*timeline.Navigator, *timeline.Widget) {
	w := timeline.NewWidget(ds, e.Options())
	nav := timeline.NewNavigator(e.Calendar, e.Clock, e.Anchor).WithGranularity(e.Granularity)
	nav.Attach(w)
	return nav, w
}

// Fetcher builds the resource fetcher.
func (e *Env) Fetcher() *source.Fetcher {
	return source.NewFetcher(e.Config.FetchTimeout())
}

// Locations returns the two resource locations.
func (e *Env) Locations() source.Locations {
	return source.Locations{
		Users:    e.Config.Sources.Users,
		Schedule: e.Config.Sources.Schedule,
	}
}
