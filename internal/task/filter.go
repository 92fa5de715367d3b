package task

import (
	"net/url"
	"sort"
	"strings"
)

// filterAll is what the list view sends for "no constraint".
const filterAll = "all"

// Filter is the task list view's search box plus status and priority pickers.
type Filter struct {
	Search   string
	Status   Status
	Priority Priority
}

func FilterFromQuery(q url.Values) Filter {
	return Filter{
		Search:   strings.TrimSpace(q.Get("search")),
		Status:   Status(q.Get("status")),
		Priority: Priority(q.Get("priority")),
	}
}

// Match reports whether t passes every set constraint. Search is a
// case-insensitive substring match on the title or the notes.
func (f Filter) Match(t *Task) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) && !strings.Contains(strings.ToLower(t.Notes), needle) {
			return false
		}
	}
	if f.Status != "" && f.Status != filterAll && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && f.Priority != filterAll && t.Priority != f.Priority {
		return false
	}
	return true
}

// Apply returns the matching tasks ordered newest first. tasks is not modified.
func (f Filter) Apply(tasks []*Task) []*Task {
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders by created_at descending, ties broken by id.
func SortNewestFirst(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}
