package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nibzard/todo-go/internal/isodate"
)

// Input limits.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Validation failures returned (wrapped in *ValidationError) by ValidateInput.
var (
	ErrTitleRequired       = errors.New("Please enter a task title")
	ErrTitleTooLong        = fmt.Errorf("title must be at most %d characters", MaxTitleLength)
	ErrDescriptionTooLong  = fmt.Errorf("description must be at most %d characters", MaxDescriptionLength)
	ErrInvalidDueDate      = errors.New("due date must be YYYY-MM-DD")
	ErrNoStorage           = errors.New("todo: storage is required")
	ErrDuplicateID         = errors.New("duplicate task id")
	ErrMissingID           = errors.New("task id is required")
	ErrMissingCreatedAt    = errors.New("createdAt is required")
	ErrInvalidTaskDocument = errors.New("stored tasks are not a JSON array of task records")
)

// Task is one to-do item.
type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	DueDate     *time.Time
	CreatedAt   time.Time
}

// NewTask is what a caller supplies to Store.Add. The store assigns the
// id and creation time.
type NewTask struct {
	Title       string
	Description string
	Completed   bool
	DueDate     *time.Time
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

// HasDueDate reports whether a due date is set.
func (t Task) HasDueDate() bool {
	return t.DueDate != nil
}

// IsOverdue reports whether t has a due date before now and is not completed.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && !t.Completed && t.DueDate.Before(now)
}

// Equal reports whether two tasks hold the same values, comparing dates as
// instants.
func (t Task) Equal(o Task) bool {
	return t.ID == o.ID &&
		t.Title == o.Title &&
		t.Description == o.Description &&
		t.Completed == o.Completed &&
		isodate.Equal(t.DueDate, o.DueDate) &&
		t.CreatedAt.Equal(o.CreatedAt)
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // field or JSON path of the offending value
	Err  error  // underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateInput checks user-entered title and description. The title is
// trimmed before the emptiness check; lengths count runes.
func ValidateInput(title, description string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return &ValidationError{Path: "title", Err: ErrTitleRequired}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return &ValidationError{Path: "title", Err: ErrTitleTooLong}
	}
	if utf8.RuneCountInString(strings.TrimSpace(description)) > MaxDescriptionLength {
		return &ValidationError{Path: "description", Err: ErrDescriptionTooLong}
	}
	return nil
}

// Draft is the raw text of the add/edit form.
type Draft struct {
	Title       string
	Description string
	DueDate     string // YYYY-MM-DD or empty
}

// DraftFrom fills a Draft from an existing task.
func DraftFrom(t Task) Draft {
	d := Draft{Title: t.Title, Description: t.Description}
	if t.DueDate != nil {
		d.DueDate = isodate.FormatDate(*t.DueDate)
	}
	return d
}

// Dirty reports whether the draft holds any title or description text.
func (d Draft) Dirty() bool {
	return strings.TrimSpace(d.Title) != "" || strings.TrimSpace(d.Description) != ""
}

// NewTask validates and normalises the draft: text is trimmed and the due
// date parsed as a calendar date. The result is never completed.
func (d Draft) NewTask() (NewTask, error) {
	if err := ValidateInput(d.Title, d.Description); err != nil {
		return NewTask{}, err
	}
	nt := NewTask{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
	}
	if s := strings.TrimSpace(d.DueDate); s != "" {
		due, err := isodate.ParseDate(s)
		if err != nil {
			return NewTask{}, &ValidationError{Path: "dueDate", Err: ErrInvalidDueDate}
		}
		nt.DueDate = &due
	}
	return nt, nil
}

// Apply merges the draft onto an existing task, keeping its id and
// creation time. Saving an edit marks the task incomplete.
func (d Draft) Apply(existing Task) (Task, error) {
	nt, err := d.NewTask()
	if err != nil {
		return Task{}, err
	}
	existing.Title = nt.Title
	existing.Description = nt.Description
	existing.DueDate = nt.DueDate
	existing.Completed = false
	return existing, nil
}
