package timeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/fernwood/nestling/internal/model"
)

func noteAt(id string, at time.Time) model.Activity {
	return model.NoteActivity(&model.Note{ID: id, BabyID: "b1", Time: at, Content: "n"})
}

func feedAt(id string, at time.Time) model.Activity {
	return model.FeedActivity(&model.FeedLog{ID: id, BabyID: "b1", Time: at, Type: model.FeedTypeBottle})
}

func sleepBetween(id string, start time.Time, end *time.Time) model.Activity {
	return model.SleepActivity(&model.SleepLog{ID: id, BabyID: "b1", StartTime: start, EndTime: end, Type: model.SleepTypeNap})
}

func TestFilterByKind(t *testing.T) {
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	end := base.Add(time.Hour)

	activities := []model.Activity{
		sleepBetween("s1", base, &end),
		sleepBetween("s2", base.Add(2*time.Hour), nil),
		sleepBetween("s3", base.Add(4*time.Hour), nil),
		feedAt("f1", base.Add(time.Hour)),
		feedAt("f2", base.Add(3*time.Hour)),
		noteAt("n1", base.Add(5*time.Hour)),
	}

	kind := model.ActivitySleep
	if got := Filter(activities, &kind); len(got) != 3 {
		t.Errorf("sleep filter = %d items, want 3", len(got))
	}
	if got := Filter(activities, nil); len(got) != 6 {
		t.Errorf("nil filter = %d items, want 6", len(got))
	}
}

func TestSortUsesEffectiveTimestamp(t *testing.T) {
	start := time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 2, 6, 0, 0, 0, time.UTC)

	activities := []model.Activity{
		// Completed sleep sorts by its end time, so it outranks the feed
		// logged after it started.
		sleepBetween("s1", start, &end),
		feedAt("f1", time.Date(2024, 6, 2, 2, 0, 0, 0, time.UTC)),
		noteAt("n1", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
	}

	got := Sort(activities)
	wantOrder := []string{"s1", "f1", "n1"}
	for i, want := range wantOrder {
		if got[i].ID() != want {
			t.Errorf("sorted[%d] = %s, want %s", i, got[i].ID(), want)
		}
	}
}

func TestSortStableOnTies(t *testing.T) {
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	activities := []model.Activity{
		noteAt("n1", at),
		noteAt("n2", at),
		noteAt("n3", at),
	}

	got := Sort(activities)
	for i, want := range []string{"n1", "n2", "n3"} {
		if got[i].ID() != want {
			t.Errorf("tie order[%d] = %s, want %s", i, got[i].ID(), want)
		}
	}
}

func TestPagination(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var activities []model.Activity
	for i := 0; i < 25; i++ {
		activities = append(activities, noteAt(fmt.Sprintf("n%d", i), base.Add(time.Duration(i)*time.Minute)))
	}

	cases := []struct {
		page      int
		wantItems int
	}{
		{1, 10},
		{2, 10},
		{3, 5},
		{4, 0},
	}
	for _, c := range cases {
		got := Page(activities, nil, c.page, 10)
		if len(got.Items) != c.wantItems {
			t.Errorf("page %d: %d items, want %d", c.page, len(got.Items), c.wantItems)
		}
		if got.TotalPages != 3 {
			t.Errorf("page %d: totalPages = %d, want 3", c.page, got.TotalPages)
		}
	}

	// Page 4 must be an empty slice, not nil, so it serializes as [].
	if got := Page(activities, nil, 4, 10); got.Items == nil {
		t.Error("past-end page returned nil slice")
	}
}

func TestPageClampsInputs(t *testing.T) {
	activities := []model.Activity{noteAt("n1", time.Now().UTC())}

	got := Page(activities, nil, 0, 10)
	if got.Page != 1 || len(got.Items) != 1 {
		t.Errorf("page 0 clamp: page = %d, items = %d", got.Page, len(got.Items))
	}

	got = Page(activities, nil, 1, 0)
	if got.PageSize != 1 {
		t.Errorf("pageSize 0 clamp: pageSize = %d, want 1", got.PageSize)
	}
}

func TestPageNewestFirst(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	activities := []model.Activity{
		noteAt("old", base),
		noteAt("new", base.Add(time.Hour)),
	}

	got := Page(activities, nil, 1, 10)
	if got.Items[0].ID() != "new" {
		t.Errorf("first item = %s, want new", got.Items[0].ID())
	}
}
