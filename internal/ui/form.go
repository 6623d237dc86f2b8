package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/todo-go/internal/todo"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDueDate
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title *", "Description", "Due date (YYYY-MM-DD)"}

// taskForm is the add/edit screen. editing is nil when adding.
type taskForm struct {
	editing        *todo.Task
	inputs         [fieldCount]textinput.Model
	focus          int
	err            string
	confirmDiscard bool
}

func newTaskForm(editing *todo.Task) *taskForm {
	f := &taskForm{editing: editing}

	title := textinput.New()
	title.Placeholder = "What needs to be done?"
	title.CharLimit = todo.MaxTitleLength

	desc := textinput.New()
	desc.Placeholder = "Add details (optional)"
	desc.CharLimit = todo.MaxDescriptionLength

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD (optional)"
	due.CharLimit = len("2006-01-02")

	if editing != nil {
		d := todo.DraftFrom(*editing)
		title.SetValue(d.Title)
		desc.SetValue(d.Description)
		due.SetValue(d.DueDate)
	}
	f.inputs = [fieldCount]textinput.Model{title, desc, due}
	return f
}

func (f *taskForm) draft() todo.Draft {
	return todo.Draft{
		Title:       f.inputs[fieldTitle].Value(),
		Description: f.inputs[fieldDescription].Value(),
		DueDate:     f.inputs[fieldDueDate].Value(),
	}
}

func (f *taskForm) focusCmd() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f.inputs[f.focus].Focus()
}

func (f *taskForm) move(delta int) tea.Cmd {
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.focusCmd()
}

func (f *taskForm) resize(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(width-8, 10)
	}
}

func (m *tuiModel) openForm(editing *todo.Task) {
	m.form = newTaskForm(editing)
	if m.width > 0 {
		m.form.resize(m.width)
	}
	m.screen = screenForm
	m.status = ""
}

func (m *tuiModel) closeForm() {
	m.form = nil
	m.screen = screenList
}

func (m *tuiModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	key := msg.String()

	if f.confirmDiscard {
		switch key {
		case "y", "Y":
			m.closeForm()
			m.status = "Changes discarded"
		case "n", "N", "esc":
			f.confirmDiscard = false
		}
		return m, nil
	}

	switch key {
	case "esc":
		if f.draft().Dirty() {
			f.confirmDiscard = true
			return m, nil
		}
		m.closeForm()
		return m, nil
	case "tab", "down":
		return m, f.move(1)
	case "shift+tab", "up":
		return m, f.move(-1)
	case "enter", "ctrl+s":
		m.saveForm()
		return m, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	f.err = ""
	return m, cmd
}

// saveForm validates the draft and adds or updates the task. On failure the
// form stays open showing the message.
func (m *tuiModel) saveForm() {
	f := m.form
	d := f.draft()

	var (
		saved todo.Task
		err   error
	)
	if f.editing != nil {
		saved, err = d.Apply(*f.editing)
		if err == nil && !m.tasks.Update(saved) {
			err = errors.New("task no longer exists")
		}
	} else {
		var nt todo.NewTask
		nt, err = d.NewTask()
		if err == nil {
			saved = m.tasks.Add(nt)
		}
	}
	if err != nil {
		f.err = formMessage(err)
		return
	}

	if f.editing != nil {
		m.status = "Task updated"
	} else {
		m.status = "Task added"
	}
	m.closeForm()
	m.refresh()
	m.selectTask(saved.ID)
}

// formMessage drops the field path from validation errors.
func formMessage(err error) string {
	var ve *todo.ValidationError
	if errors.As(err, &ve) {
		return ve.Err.Error()
	}
	return err.Error()
}

func (m *tuiModel) viewForm() string {
	f := m.form
	st := m.styles
	var b strings.Builder

	heading := "Add Task"
	if f.editing != nil {
		heading = "Edit Task"
	}
	b.WriteString(st.Header.Render(heading))
	b.WriteString("\n\n")

	for i := range f.inputs {
		b.WriteString(st.Label.Render(fieldLabels[i]))
		b.WriteString("\n")
		box := st.Input
		if i == f.focus {
			box = st.InputFocused
		}
		b.WriteString(box.Render(f.inputs[i].View()))
		b.WriteString("\n")
	}

	if f.err != "" {
		b.WriteString(st.Error.Render(f.err))
		b.WriteString("\n")
	}
	if f.confirmDiscard {
		b.WriteString(st.ConfirmBorder.Render(st.Warning.Render("Discard changes? (y/n)")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	save := "enter save"
	if f.editing != nil {
		save = "enter update"
	}
	b.WriteString(st.Help.Render(save + " • tab next field • shift+tab previous • esc cancel"))
	return b.String()
}
