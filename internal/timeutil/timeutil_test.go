package timeutil

import (
	"testing"
	"time"
)

func TestParseToUTCOffsets(t *testing.T) {
	got, err := ParseToUTC("2024-03-09T22:30:00-07:00", nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2024, 3, 10, 5, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", got.Location())
	}
}

func TestParseToUTCLocalForms(t *testing.T) {
	denver, err := time.LoadLocation("America/Denver")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	cases := []struct {
		input string
		want  time.Time
	}{
		{"2024-06-01T08:15", time.Date(2024, 6, 1, 14, 15, 0, 0, time.UTC)},
		{"2024-06-01T08:15:30", time.Date(2024, 6, 1, 14, 15, 30, 0, time.UTC)},
		{"2024-06-01", time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := ParseToUTC(c.input, denver)
		if err != nil {
			t.Errorf("parse %q: %v", c.input, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("parse %q = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestParseToUTCInvalid(t *testing.T) {
	for _, input := range []string{"", "not a date", "2024-13-45T99:99", "tomorrow"} {
		if _, err := ParseToUTC(input, nil); err != ErrInvalidDate {
			t.Errorf("parse %q: err = %v, want ErrInvalidDate", input, err)
		}
	}
}

func TestRoundTripSameZone(t *testing.T) {
	denver, _ := time.LoadLocation("America/Denver")

	// Minute-precision round trip: local input parsed to UTC and converted
	// back must land on the same wall-clock minute.
	input := "2024-11-03T01:30" // inside the DST fall-back window
	canonical, err := ParseToUTC(input, denver)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	back, err := ToLocal(canonical, "America/Denver")
	if err != nil {
		t.Fatalf("to local: %v", err)
	}
	if back.Format("2006-01-02T15:04") != input {
		t.Errorf("round trip = %q, want %q", back.Format("2006-01-02T15:04"), input)
	}
}

func TestToLocalUnknownZone(t *testing.T) {
	if _, err := ToLocal(time.Now(), "Mars/Olympus_Mons"); err == nil {
		t.Error("expected error for unknown zone")
	}
}

func TestFormatForResponse(t *testing.T) {
	if got := FormatForResponse(nil); got != nil {
		t.Errorf("nil passthrough = %v, want nil", got)
	}

	denver, _ := time.LoadLocation("America/Denver")
	ts := time.Date(2024, 6, 1, 8, 15, 0, 0, denver)
	got := FormatForResponse(&ts)
	if got == nil {
		t.Fatal("expected string, got nil")
	}
	if *got != "2024-06-01T14:15:00Z" {
		t.Errorf("formatted = %q, want %q", *got, "2024-06-01T14:15:00Z")
	}
}

func TestDurationMinutes(t *testing.T) {
	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	got, err := DurationMinutes(start, start.Add(95*time.Minute))
	if err != nil {
		t.Fatalf("duration: %v", err)
	}
	if got != 95 {
		t.Errorf("duration = %d, want 95", got)
	}

	got, err = DurationMinutes(start, start)
	if err != nil || got != 0 {
		t.Errorf("zero duration = %d, %v; want 0, nil", got, err)
	}

	if _, err := DurationMinutes(start, start.Add(-time.Minute)); err != ErrInvalidRange {
		t.Errorf("reversed range: err = %v, want ErrInvalidRange", err)
	}
}

func TestDayWindowDST(t *testing.T) {
	denver, _ := time.LoadLocation("America/Denver")

	// 2024-03-10 is the spring-forward day in Denver: 23 local hours.
	day := time.Date(2024, 3, 10, 12, 0, 0, 0, denver)
	start, end := DayWindow(day, denver)

	wantStart := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	// End is 23:59:59.999 local, which is only 22h59m59.999s after start.
	if got := end.Sub(start); got != 23*time.Hour-time.Second+999*time.Millisecond {
		t.Errorf("window length = %v", got)
	}
}

func TestElapsedMinutesOfDay(t *testing.T) {
	denver, _ := time.LoadLocation("America/Denver")
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, denver)

	// Past day: full 1440.
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	if got := ElapsedMinutesOfDay(day, now, denver); got != 1440 {
		t.Errorf("past day = %d, want 1440", got)
	}

	// Current day: minutes since local midnight.
	now = time.Date(2024, 6, 1, 9, 30, 0, 0, denver)
	if got := ElapsedMinutesOfDay(day, now, denver); got != 9*60+30 {
		t.Errorf("current day = %d, want %d", got, 9*60+30)
	}

	// Future day: clamped to zero.
	now = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	if got := ElapsedMinutesOfDay(day, now, denver); got != 0 {
		t.Errorf("future day = %d, want 0", got)
	}
}

func TestSameLocalDay(t *testing.T) {
	denver, _ := time.LoadLocation("America/Denver")

	// 05:30 UTC on June 2 is 23:30 on June 1 in Denver.
	a := time.Date(2024, 6, 2, 5, 30, 0, 0, time.UTC)
	b := time.Date(2024, 6, 1, 12, 0, 0, 0, denver)
	if !SameLocalDay(a, b, denver) {
		t.Error("expected same Denver day")
	}
	if SameLocalDay(a, b, time.UTC) {
		t.Error("expected different UTC days")
	}
}
