package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fernwood/nestling/internal/auth"
	"github.com/fernwood/nestling/internal/database"
	"github.com/fernwood/nestling/internal/model"
	"github.com/fernwood/nestling/internal/store"
)

type testEnv struct {
	db         *sql.DB
	babies     *store.BabyStore
	sleeps     *store.SleepStore
	feeds      *store.FeedStore
	settings   *store.SettingsStore
	caretakers *store.CaretakerStore

	family    *model.Family
	baby      *model.Baby
	caretaker *model.Caretaker
}

func setupHandlerTest(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:         db,
		babies:     store.NewBabyStore(db),
		sleeps:     store.NewSleepStore(db),
		feeds:      store.NewFeedStore(db),
		settings:   store.NewSettingsStore(db),
		caretakers: store.NewCaretakerStore(db),
	}

	families := store.NewFamilyStore(db)
	env.family, err = families.Create("Hendersons", "hendersons")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	env.baby, err = env.babies.Create(env.family.ID, "June", "Henderson", model.GenderFemale, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create baby: %v", err)
	}
	env.caretaker, err = env.caretakers.Create(env.family.ID, "mara", "Mara", "parent", "4321")
	if err != nil {
		t.Fatalf("create caretaker: %v", err)
	}
	return env
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// authedRequest builds a request carrying the test caretaker's auth context,
// the shape RequireAuth would produce.
func (env *testEnv) authedRequest(method, target string, body any) *http.Request {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		rd = bytes.NewReader(b)
	}
	r := httptest.NewRequest(method, target, rd)
	ctx := auth.WithAuth(r.Context(), auth.AuthContext{
		CaretakerID: env.caretaker.ID,
		FamilyID:    env.family.ID,
		Role:        env.caretaker.Role,
	})
	return r.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	raw := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return envelope{Success: raw.Success, Error: raw.Error}
}

func TestLogin(t *testing.T) {
	env := setupHandlerTest(t)
	issuer := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	h := NewAuthHandler(env.caretakers, issuer, discardLogger())

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader([]byte(`{"loginId":"mara","pin":"4321"}`))))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token     string          `json:"token"`
		Caretaker model.Caretaker `json:"caretaker"`
	}
	decodeEnvelope(t, rec, &resp)
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.Caretaker.ID != env.caretaker.ID {
		t.Errorf("caretaker id = %q, want %q", resp.Caretaker.ID, env.caretaker.ID)
	}

	ac, err := issuer.Verify(resp.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if ac.FamilyID != env.family.ID || ac.Role != "parent" {
		t.Errorf("claims = %+v, want family %s role parent", ac, env.family.ID)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	env := setupHandlerTest(t)
	h := NewAuthHandler(env.caretakers, auth.NewTokenIssuer([]byte("test-secret"), time.Hour), discardLogger())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"wrong pin", `{"loginId":"mara","pin":"0000"}`, http.StatusUnauthorized},
		{"unknown login", `{"loginId":"nobody","pin":"4321"}`, http.StatusUnauthorized},
		{"missing pin", `{"loginId":"mara"}`, http.StatusBadRequest},
		{"invalid json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Login(rec, httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader([]byte(tt.body))))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			resp := decodeEnvelope(t, rec, nil)
			if resp.Success {
				t.Error("expected success=false")
			}
		})
	}
}

func TestSleepCreateAndClose(t *testing.T) {
	env := setupHandlerTest(t)
	h := NewSleepHandler(env.sleeps, env.babies, env.settings, nil, discardLogger())

	rec := httptest.NewRecorder()
	h.Create(rec, env.authedRequest("POST", "/api/sleep-log", map[string]string{
		"babyId":    env.baby.ID,
		"startTime": "2026-03-01T13:00:00Z",
		"type":      "NAP",
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var created model.SleepLog
	decodeEnvelope(t, rec, &created)
	if created.Ended() {
		t.Fatal("expected an open session")
	}
	if created.CaretakerID == nil || *created.CaretakerID != env.caretaker.ID {
		t.Error("expected the session attributed to the authenticated caretaker")
	}

	// The open endpoint should report it.
	rec = httptest.NewRecorder()
	h.Open(rec, env.authedRequest("GET", "/api/sleep-log/open?babyId="+env.baby.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("open status = %d", rec.Code)
	}
	var open model.SleepLog
	decodeEnvelope(t, rec, &open)
	if open.ID != created.ID {
		t.Errorf("open session id = %q, want %q", open.ID, created.ID)
	}

	// Closing it computes the duration.
	rec = httptest.NewRecorder()
	h.Update(rec, env.authedRequest("PUT", "/api/sleep-log?id="+created.ID, map[string]string{
		"endTime": "2026-03-01T14:30:00Z",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	var closed model.SleepLog
	decodeEnvelope(t, rec, &closed)
	if !closed.Ended() {
		t.Fatal("expected a closed session")
	}
	if closed.Duration == nil || *closed.Duration != 90 {
		t.Errorf("duration = %v, want 90", closed.Duration)
	}
}

func TestSleepSecondOpenSessionRejected(t *testing.T) {
	env := setupHandlerTest(t)
	h := NewSleepHandler(env.sleeps, env.babies, env.settings, nil, discardLogger())

	rec := httptest.NewRecorder()
	h.Create(rec, env.authedRequest("POST", "/api/sleep-log", map[string]string{
		"babyId":    env.baby.ID,
		"startTime": "2026-03-01T13:00:00Z",
		"type":      "NAP",
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d: %s", rec.Code, rec.Body.String())
	}

	// A second open session for the same baby is refused.
	rec = httptest.NewRecorder()
	h.Create(rec, env.authedRequest("POST", "/api/sleep-log", map[string]string{
		"babyId":    env.baby.ID,
		"startTime": "2026-03-01T13:05:00Z",
		"type":      "NAP",
	}))
	if rec.Code != http.StatusConflict {
		t.Fatalf("second open create status = %d, want 409: %s", rec.Code, rec.Body.String())
	}

	// Logging an already-completed session is still fine while one is open.
	rec = httptest.NewRecorder()
	h.Create(rec, env.authedRequest("POST", "/api/sleep-log", map[string]string{
		"babyId":    env.baby.ID,
		"startTime": "2026-03-01T09:00:00Z",
		"endTime":   "2026-03-01T10:00:00Z",
		"type":      "NAP",
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("closed create status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSleepCreateValidation(t *testing.T) {
	env := setupHandlerTest(t)
	h := NewSleepHandler(env.sleeps, env.babies, env.settings, nil, discardLogger())

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"missing babyId", map[string]string{"startTime": "2026-03-01T13:00:00Z", "type": "NAP"}, http.StatusBadRequest},
		{"missing startTime", map[string]string{"babyId": env.baby.ID, "type": "NAP"}, http.StatusBadRequest},
		{"bad type", map[string]string{"babyId": env.baby.ID, "startTime": "2026-03-01T13:00:00Z", "type": "SNOOZE"}, http.StatusBadRequest},
		{"bad quality", map[string]string{"babyId": env.baby.ID, "startTime": "2026-03-01T13:00:00Z", "type": "NAP", "quality": "AMAZING"}, http.StatusBadRequest},
		{"end before start", map[string]string{"babyId": env.baby.ID, "startTime": "2026-03-01T13:00:00Z", "endTime": "2026-03-01T12:00:00Z", "type": "NAP"}, http.StatusBadRequest},
		{"unknown baby", map[string]string{"babyId": "no-such-baby", "startTime": "2026-03-01T13:00:00Z", "type": "NAP"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Create(rec, env.authedRequest("POST", "/api/sleep-log", tt.body))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestSleepCrossFamilyHidden(t *testing.T) {
	env := setupHandlerTest(t)
	h := NewSleepHandler(env.sleeps, env.babies, env.settings, nil, discardLogger())

	// A record in another family must 404, not 403.
	families := store.NewFamilyStore(env.db)
	other, err := families.Create("Others", "others")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	otherBaby, err := env.babies.Create(other.ID, "Sam", "Other", model.GenderMale, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create baby: %v", err)
	}
	log, err := env.sleeps.Create(store.SleepFields{
		BabyID:    otherBaby.ID,
		StartTime: time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC),
		Type:      model.SleepTypeNap,
	})
	if err != nil {
		t.Fatalf("create sleep log: %v", err)
	}

	rec := httptest.NewRecorder()
	h.Get(rec, env.authedRequest("GET", "/api/sleep-log?id="+log.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestTimelineGet(t *testing.T) {
	env := setupHandlerTest(t)
	source := &ActivitySource{
		Sleep:     env.sleeps,
		Feed:      env.feeds,
		Diaper:    store.NewDiaperStore(env.db),
		Note:      store.NewNoteStore(env.db),
		Bath:      store.NewBathStore(env.db),
		Milestone: store.NewMilestoneStore(env.db),
	}
	h := NewTimelineHandler(source, env.babies, env.settings, discardLogger())

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	if _, err := env.sleeps.Create(store.SleepFields{
		BabyID: env.baby.ID, StartTime: base, Type: model.SleepTypeNap,
	}); err != nil {
		t.Fatalf("create sleep log: %v", err)
	}
	amount := 4.0
	for i := 0; i < 3; i++ {
		if _, err := env.feeds.Create(store.FeedFields{
			BabyID: env.baby.ID, Time: base.Add(time.Duration(i+1) * time.Hour),
			Type: model.FeedTypeBottle, Amount: &amount, UnitAbbr: "oz",
		}); err != nil {
			t.Fatalf("create feed log: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	h.Get(rec, env.authedRequest("GET", "/api/timeline?babyId="+env.baby.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Items      []json.RawMessage `json:"items"`
		TotalItems int               `json:"totalItems"`
		TotalPages int               `json:"totalPages"`
	}
	decodeEnvelope(t, rec, &result)
	if result.TotalItems != 4 {
		t.Errorf("totalItems = %d, want 4", result.TotalItems)
	}

	// Kind filter narrows to feeds only.
	rec = httptest.NewRecorder()
	h.Get(rec, env.authedRequest("GET", "/api/timeline?babyId="+env.baby.ID+"&kind=feed", nil))
	decodeEnvelope(t, rec, &result)
	if result.TotalItems != 3 {
		t.Errorf("feed totalItems = %d, want 3", result.TotalItems)
	}

	// Pagination splits and counts pages.
	rec = httptest.NewRecorder()
	h.Get(rec, env.authedRequest("GET", "/api/timeline?babyId="+env.baby.ID+"&page=2&pageSize=3", nil))
	decodeEnvelope(t, rec, &result)
	if len(result.Items) != 1 {
		t.Errorf("page 2 items = %d, want 1", len(result.Items))
	}
	if result.TotalPages != 2 {
		t.Errorf("totalPages = %d, want 2", result.TotalPages)
	}

	rec = httptest.NewRecorder()
	h.Get(rec, env.authedRequest("GET", "/api/timeline", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing babyId status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Get(rec, env.authedRequest("GET", "/api/timeline?babyId="+env.baby.ID+"&kind=juggling", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad kind status = %d, want 400", rec.Code)
	}
}
