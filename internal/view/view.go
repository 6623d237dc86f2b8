// Package view derives the displayed task list from the collection: a
// search/filter pass followed by an optional due-date sort.
package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nibzard/todo-go/internal/todo"
)

// Filter selects tasks by completion.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterIncomplete Filter = "incomplete"
	FilterCompleted  Filter = "completed"
)

// Filters lists the filters in display order.
var Filters = []Filter{FilterAll, FilterIncomplete, FilterCompleted}

// Label is the capitalised filter name.
func (f Filter) Label() string {
	if f == "" {
		return ""
	}
	return strings.ToUpper(string(f[:1])) + string(f[1:])
}

func (f Filter) match(t todo.Task) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterIncomplete:
		return !t.Completed
	default:
		return true
	}
}

// SortMode orders the view by due date.
type SortMode string

const (
	SortNone        SortMode = "none"
	SortDueDateAsc  SortMode = "dueDateAsc"
	SortDueDateDesc SortMode = "dueDateDesc"
)

// Query is the user's current search, filter and sort selection.
type Query struct {
	Search string
	Filter Filter
	Sort   SortMode
}

// Active reports whether any criterion narrows or reorders the list.
func (q Query) Active() bool {
	return q.Search != "" ||
		(q.Filter != "" && q.Filter != FilterAll) ||
		(q.Sort != "" && q.Sort != SortNone)
}

// Apply returns the tasks that pass q, ordered by q.Sort. The input slice is
// not modified. Tasks without a due date always sort last, and ties keep
// their collection order.
func Apply(tasks []todo.Task, q Query) []todo.Task {
	needle := strings.ToLower(q.Search)
	out := make([]todo.Task, 0, len(tasks))
	for _, t := range tasks {
		if !q.Filter.match(t) {
			continue
		}
		if needle != "" && !matchesSearch(t, needle) {
			continue
		}
		out = append(out, t)
	}

	switch q.Sort {
	case SortDueDateAsc:
		sort.SliceStable(out, func(i, j int) bool { return dueLess(out[i], out[j], false) })
	case SortDueDateDesc:
		sort.SliceStable(out, func(i, j int) bool { return dueLess(out[i], out[j], true) })
	}
	return out
}

func matchesSearch(t todo.Task, needle string) bool {
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	return t.Description != "" && strings.Contains(strings.ToLower(t.Description), needle)
}

func dueLess(a, b todo.Task, desc bool) bool {
	switch {
	case a.DueDate == nil:
		return false
	case b.DueDate == nil:
		return true
	case desc:
		return a.DueDate.After(*b.DueDate)
	default:
		return a.DueDate.Before(*b.DueDate)
	}
}

// NextSort cycles none, ascending, descending, none.
func NextSort(m SortMode) SortMode {
	switch m {
	case SortNone, "":
		return SortDueDateAsc
	case SortDueDateAsc:
		return SortDueDateDesc
	default:
		return SortNone
	}
}

// SortLabel is the short label shown on the sort control.
func SortLabel(m SortMode) string {
	switch m {
	case SortDueDateAsc:
		return "Asc ↑"
	case SortDueDateDesc:
		return "Desc ↓"
	default:
		return "Default"
	}
}

// ParseFilter accepts a filter name. Empty means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterIncomplete, FilterCompleted:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q (want all, completed or incomplete)", s)
}

// ParseSort accepts none, asc or desc, plus the mode names themselves.
func ParseSort(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "default":
		return SortNone, nil
	case "asc", "duedate", "duedateasc":
		return SortDueDateAsc, nil
	case "desc", "duedatedesc":
		return SortDueDateDesc, nil
	}
	return "", fmt.Errorf("unknown sort %q (want none, asc or desc)", s)
}

// EmptyMessage is shown when Apply returns nothing.
func EmptyMessage(q Query) string {
	if q.Active() {
		return "No tasks match your criteria"
	}
	return "No tasks yet. Add your first task!"
}
