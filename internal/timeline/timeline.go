// Package timeline filters, orders, and paginates mixed activity lists.
package timeline

import (
	"sort"

	"github.com/fernwood/nestling/internal/model"
)

// Result is one page of the timeline.
type Result struct {
	Items      []model.Activity `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalItems int              `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
}

// Filter retains activities of the given kind; a nil kind retains everything.
func Filter(activities []model.Activity, kind *model.ActivityKind) []model.Activity {
	if kind == nil {
		return activities
	}
	out := make([]model.Activity, 0, len(activities))
	for _, a := range activities {
		if a.Kind == *kind {
			out = append(out, a)
		}
	}
	return out
}

// Sort orders activities by effective timestamp descending, most recent
// first. Ties keep their input order; no secondary key is applied.
func Sort(activities []model.Activity) []model.Activity {
	sorted := make([]model.Activity, len(activities))
	copy(sorted, activities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveTime().After(sorted[j].EffectiveTime())
	})
	return sorted
}

// Page filters by kind, sorts newest-first, and returns the requested page.
// page is clamped to a minimum of 1; requesting past the last page yields an
// empty (non-nil) slice with TotalPages still reported.
func Page(activities []model.Activity, kind *model.ActivityKind, page, pageSize int) Result {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	filtered := Sort(Filter(activities, kind))
	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]model.Activity, end-start)
	copy(items, filtered[start:end])

	return Result{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
