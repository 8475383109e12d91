package timeline

import (
	"sync"
	"time"

	appLog "schedview/internal/log"
	"schedview/internal/model"
)

// LoadState tracks how many of the two startup loads have settled.
type LoadState int

const (
	StatePending LoadState = iota
	StatePartial
	StateReady
)

func (s LoadState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StatePartial:
		return "partial"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// MountFunc creates the host for a dataset. It runs at most once per Stage.
type MountFunc func(Dataset)

// Stage gathers the users and schedule loads and mounts the host once both
// have settled, users are non-empty and a mount target exists.
//
// A failed load settles with its degraded value (no users, empty document).
type Stage struct {
	mu sync.Mutex

	colors ColorTable
	loc    *time.Location
	mount  MountFunc

	users        []model.User
	doc          *model.ScheduleDocument
	usersDone    bool
	scheduleDone bool
	target       bool
	mounted      bool
	dataset      Dataset
}

func NewStage(colors ColorTable, loc *time.Location, mount MountFunc) *Stage {
	return &Stage{colors: colors, loc: loc, mount: mount}
}

// State returns the current load state.
func (s *Stage) State() LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Stage) stateLocked() LoadState {
	switch {
	case s.usersDone && s.scheduleDone:
		return StateReady
	case s.usersDone || s.scheduleDone:
		return StatePartial
	default:
		return StatePending
	}
}

// UsersLoaded settles the users load. It reports whether this event mounted
// the host.
func (s *Stage) UsersLoaded(users []model.User) bool {
	s.mu.Lock()
	if s.usersDone {
		appLog.Debug("users already settled, ignoring")
		s.mu.Unlock()
		return false
	}
	s.users = users
	s.usersDone = true
	return s.tryMountLocked()
}

// ScheduleLoaded settles the schedule load.
func (s *Stage) ScheduleLoaded(doc *model.ScheduleDocument) bool {
	s.mu.Lock()
	if s.scheduleDone {
		appLog.Debug("schedule already settled, ignoring")
		s.mu.Unlock()
		return false
	}
	s.doc = doc
	s.scheduleDone = true
	return s.tryMountLocked()
}

// SetTarget marks the mount target present or gone.
func (s *Stage) SetTarget(present bool) bool {
	s.mu.Lock()
	s.target = present
	return s.tryMountLocked()
}

// tryMountLocked releases s.mu before calling the mount function.
func (s *Stage) tryMountLocked() bool {
	if s.mounted || s.stateLocked() != StateReady || len(s.users) == 0 || !s.target {
		s.mu.Unlock()
		return false
	}
	s.dataset = Normalize(s.users, s.doc, s.colors, s.loc)
	s.mounted = true
	ds := s.dataset
	mount := s.mount
	s.mu.Unlock()

	appLog.Info("mounting timeline", "items", len(ds.Items), "groups", len(ds.Groups))
	if mount != nil {
		mount(ds)
	}
	return true
}

// Mounted reports whether the host has been created.
func (s *Stage) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

// Users returns the settled roster.
func (s *Stage) Users() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users
}

// Dataset returns the normalized data. Before mount it is computed from
// whatever has settled so far.
func (s *Stage) Dataset() Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mounted {
		return s.dataset
	}
	return Normalize(s.users, s.doc, s.colors, s.loc)
}
