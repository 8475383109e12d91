package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"schedview/internal/ics"
	appLog "schedview/internal/log"
	"schedview/internal/model"
	"schedview/internal/timeline"
)

type itemDTO struct {
	ID      string    `json:"id"`
	Content string    `json:"content"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Group   string    `json:"group"`
	Color   string    `json:"color"`
	Style   string    `json:"style"`
}

type groupDTO struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type optionsDTO struct {
	Editable   bool      `json:"editable"`
	Stack      bool      `json:"stack"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	GroupOrder []string  `json:"groupOrder"`
}

// timelineResponse is the JSON shape of GET /api/timeline.
type timelineResponse struct {
	State   string     `json:"state"`
	Mounted bool       `json:"mounted"`
	Items   []itemDTO  `json:"items"`
	Groups  []groupDTO `json:"groups"`
	Options optionsDTO `json:"options"`
}

type windowDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type controlDTO struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// sessionResponse is the JSON shape of a navigator session.
type sessionResponse struct {
	ID          string          `json:"id"`
	Window      windowDTO       `json:"window"`
	Granularity string          `json:"granularity"`
	Selected    string          `json:"selected"`
	AnchorMode  string          `json:"anchor_mode"`
	Controls    []controlDTO    `json:"controls"`
	Ticks       []timeline.Tick `json:"ticks"`
	Visible     int             `json:"visible"`
}

func toItemDTOs(items []model.Interval) []itemDTO {
	out := make([]itemDTO, 0, len(items))
	for _, iv := range items {
		out = append(out, itemDTO{
			ID:      iv.ID,
			Content: iv.Content,
			Start:   iv.Start,
			End:     iv.End,
			Group:   iv.Group,
			Color:   iv.Color,
			Style:   iv.Style(),
		})
	}
	return out
}

func toGroupDTOs(groups []model.Group) []groupDTO {
	out := make([]groupDTO, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupDTO{ID: g.ID, Content: g.Label})
	}
	return out
}

// handleTimeline returns the normalized dataset and the mount options.
//
// GET /api/timeline
func (s *Server) handleTimeline(w http.ResponseWriter, _ *http.Request) {
	ds := s.stage.Dataset()
	ordered := append([]model.Group(nil), ds.Groups...)
	timeline.SortGroups(ordered)
	opts := s.env.Options()

	writeJSON(w, http.StatusOK, timelineResponse{
		State:   s.stage.State().String(),
		Mounted: s.stage.Mounted(),
		Items:   toItemDTOs(ds.Items),
		Groups:  toGroupDTOs(ds.Groups),
		Options: optionsDTO{
			Editable:   opts.Editable,
			Stack:      opts.Stack,
			Start:      opts.Start,
			End:        opts.End,
			GroupOrder: timeline.GroupIDs(ordered),
		},
	})
}

// handleICS exports the final schedule, or every group with ?all=1.
//
// GET /api/schedule.ics
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	body := ics.Export(s.stage.Dataset().Items, ics.ExportOptions{
		All:   all,
		Name:  "schedview",
		Stamp: s.env.Clock.Now(),
	})
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// handleCreateSession mounts a widget for a new viewer.
//
// POST /api/sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	if !s.stage.Mounted() {
		state := s.stage.State()
		if state == timeline.StateReady {
			writeError(w, http.StatusConflict, "no users loaded; timeline not mounted")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "timeline is still loading ("+state.String()+")")
		return
	}

	nav, widget := s.env.Mount(s.stage.Dataset())
	sess := s.sessions.create(nav, widget)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusCreated, s.sessionView(sess))
}

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, err := s.sessions.get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "session lookup failed")
		return nil, false
	}
	return sess, true
}

// GET /api/sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusOK, s.sessionView(sess))
}

// DELETE /api/sessions/{id}
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.remove(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, ErrSessionNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type command func(*timeline.Navigator) bool

var (
	commandToday    command = (*timeline.Navigator).Today
	commandPrevious command = (*timeline.Navigator).Previous
	commandNext     command = (*timeline.Navigator).Next
)

// handleCommand applies a navigation button press.
//
// POST /api/sessions/{id}/today|previous|next
func (s *Server) handleCommand(cmd command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.lookupSession(w, r)
		if !ok {
			return
		}
		sess.mu.Lock()
		defer sess.mu.Unlock()
		cmd(sess.nav)
		writeJSON(w, http.StatusOK, s.sessionView(sess))
	}
}

// handleGranularity switches the granularity. The anchor query parameter
// (today|fixed) picks the branch; without it the current selection decides.
//
// POST /api/sessions/{id}/granularity/{value}?anchor=today
func (s *Server) handleGranularity(w http.ResponseWriter, r *http.Request) {
	g, err := timeline.ParseGranularity(chi.URLParam(r, "value"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	mode := sess.nav.AnchorMode()
	if raw := r.URL.Query().Get("anchor"); raw != "" {
		mode, err = timeline.ParseAnchorMode(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	sess.nav.ChangeGranularity(g, mode)
	writeJSON(w, http.StatusOK, s.sessionView(sess))
}

// sessionView renders sess. Callers hold sess.mu.
func (s *Server) sessionView(sess *session) sessionResponse {
	st := sess.nav.State()

	ticks, err := s.env.Calendar.Ticks(st.Window, st.Granularity)
	if err != nil {
		appLog.Error("failed to compute axis ticks", err, "session_id", sess.id)
	}
	if ticks == nil {
		ticks = []timeline.Tick{}
	}

	controls := []controlDTO{
		{ID: string(timeline.ControlToday), Label: "Today"},
		{ID: string(timeline.ControlPrevious), Label: "Previous"},
		{ID: string(timeline.ControlNext), Label: "Next"},
	}
	for _, g := range timeline.Granularities {
		controls = append(controls, controlDTO{ID: string(g), Label: g.Label()})
	}
	for i := range controls {
		controls[i].Selected = controls[i].ID == string(st.Selected)
	}

	return sessionResponse{
		ID:          sess.id,
		Window:      windowDTO{Start: st.Window.Start, End: st.Window.End},
		Granularity: string(st.Granularity),
		Selected:    string(st.Selected),
		AnchorMode:  sess.nav.AnchorMode().String(),
		Controls:    controls,
		Ticks:       ticks,
		Visible:     len(sess.widget.Visible("")),
	}
}
