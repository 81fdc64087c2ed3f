// Package handler implements the JSON API. Every response uses the
// {success, data, error} envelope; storage faults log their detail and
// surface as generic 500s.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fernwood/nestling/internal/auth"
	"github.com/fernwood/nestling/internal/store"
	"github.com/fernwood/nestling/internal/timeutil"
)

// Notifier receives change events for realtime fan-out. The websocket hub
// implements it; handlers tolerate a nil Notifier.
type Notifier interface {
	Notify(familyID, entity, action, id string)
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respond(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

// familyLocation resolves the requesting family's IANA timezone for
// interpreting offset-less date input. Falls back to UTC rather than failing
// the request.
func familyLocation(r *http.Request, settings *store.SettingsStore) *time.Location {
	familyID := auth.FamilyID(r.Context())
	if familyID == "" || settings == nil {
		return time.UTC
	}
	st, err := settings.GetByFamily(familyID)
	if err != nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(st.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// parseTimeParam parses a required timestamp from request input.
func parseTimeParam(value string, loc *time.Location) (time.Time, error) {
	return timeutil.ParseToUTC(value, loc)
}

// dateRange pulls the optional startDate/endDate pair off the query string.
// Both must be present for the range to apply; a lone bound is ignored the
// same as none.
func dateRange(r *http.Request, loc *time.Location) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("startDate")
	endStr := r.URL.Query().Get("endDate")
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, nil
	}
	start, err = timeutil.ParseToUTC(startStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = timeutil.ParseToUTC(endStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// caretakerRef returns the authenticated caretaker's id for attribution, or
// nil for unauthenticated contexts.
func caretakerRef(r *http.Request) *string {
	id := auth.CaretakerID(r.Context())
	if id == "" {
		return nil
	}
	return &id
}
