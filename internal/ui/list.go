package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/todo-go/internal/isodate"
	"github.com/nibzard/todo-go/internal/todo"
	"github.com/nibzard/todo-go/internal/view"
)

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.pendingDel != nil {
		return m.updateDeleteConfirm(key)
	}
	if m.searching {
		return m.updateSearch(msg)
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "esc":
		if m.query.Search != "" {
			m.search.SetValue("")
			m.query.Search = ""
			m.refresh()
		}
		m.showHelp = false
	case "1":
		m.setFilter(view.FilterAll)
	case "2":
		m.setFilter(view.FilterIncomplete)
	case "3":
		m.setFilter(view.FilterCompleted)
	case "s":
		m.query.Sort = view.NextSort(m.query.Sort)
		m.refresh()
		m.status = "Sort: " + view.SortLabel(m.query.Sort)
	case "t":
		name := m.themes.Toggle()
		m.restyle()
		m.status = "Theme: " + name.String()
	case "j", "down":
		m.cursor = clampCursor(m.cursor+1, len(m.visible))
	case "k", "up":
		m.cursor = clampCursor(m.cursor-1, len(m.visible))
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = clampCursor(len(m.visible)-1, len(m.visible))
	case " ", "x":
		if t, ok := m.current(); ok {
			m.tasks.Toggle(t.ID)
			m.refresh()
			m.selectTask(t.ID)
		}
	case "d", "delete":
		if t, ok := m.current(); ok {
			m.pendingDel = &t
			m.status = ""
		}
	case "a", "n":
		m.openForm(nil)
		return m, m.form.focusCmd()
	case "e", "enter":
		if t, ok := m.current(); ok {
			m.openForm(&t)
			return m, m.form.focusCmd()
		}
	}
	return m, nil
}

func (m *tuiModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "tab":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != m.query.Search {
		m.query.Search = v
		m.cursor = 0
		m.refresh()
	}
	return m, cmd
}

func (m *tuiModel) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		if m.tasks.Delete(m.pendingDel.ID) {
			m.status = "Deleted task"
		}
		m.pendingDel = nil
		m.refresh()
	case "n", "N", "esc":
		m.pendingDel = nil
		m.status = "Delete cancelled"
	}
	return m, nil
}

func (m *tuiModel) setFilter(f view.Filter) {
	m.query.Filter = f
	m.cursor = 0
	m.refresh()
}

func (m *tuiModel) viewList() string {
	var b strings.Builder
	st := m.styles

	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	if m.searching || m.query.Search != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString(m.viewControls())
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(st.Empty.Render(view.EmptyMessage(m.query)))
		b.WriteString("\n")
	}
	now := m.now()
	for i, t := range m.visible {
		b.WriteString(m.renderTask(t, i == m.cursor, now))
		b.WriteString("\n")
	}

	if m.pendingDel != nil {
		b.WriteString("\n")
		prompt := fmt.Sprintf("Delete %q? This cannot be undone. (y/n)", m.pendingDel.Title)
		b.WriteString(st.ConfirmBorder.Render(st.Warning.Render(prompt)))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(st.StatusBar.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(st.Help.Render(listHelp))
	} else {
		b.WriteString(st.Help.Render(listFooter))
	}
	return b.String()
}

func (m *tuiModel) viewHeader() string {
	all := m.tasks.Tasks()
	done := 0
	for _, t := range all {
		if t.Completed {
			done++
		}
	}
	title := fmt.Sprintf("My Tasks  %d/%d done", done, len(all))
	icon := m.themes.Theme().Icon()
	return m.styles.Header.Render(title + "  " + icon)
}

func (m *tuiModel) viewControls() string {
	st := m.styles
	parts := make([]string, 0, len(view.Filters)+2)
	for i, f := range view.Filters {
		label := fmt.Sprintf("%d %s", i+1, f.Label())
		if f == m.query.Filter || (m.query.Filter == "" && f == view.FilterAll) {
			parts = append(parts, st.FilterActive.Render(label))
		} else {
			parts = append(parts, st.FilterIdle.Render(label))
		}
	}
	parts = append(parts, st.Label.Render("  Sort By:"))
	sortLabel := view.SortLabel(m.query.Sort)
	if m.query.Sort == view.SortNone || m.query.Sort == "" {
		parts = append(parts, st.FilterIdle.Render(sortLabel))
	} else {
		parts = append(parts, st.SortActive.Render(sortLabel))
	}
	return strings.Join(parts, " ")
}

func (m *tuiModel) renderTask(t todo.Task, selected bool, now time.Time) string {
	st := m.styles

	cursor := "  "
	if selected {
		cursor = st.Cursor.Render("> ")
	}
	box := "[ ]"
	if t.Completed {
		box = "[✓]"
	}

	title := st.Title.Render(t.Title)
	if t.Completed {
		title = st.Done.Render(t.Title)
	}
	line := cursor + st.Checkbox.Render(box) + " " + title

	if t.DueDate != nil {
		due := "Due: " + isodate.Display(*t.DueDate)
		if t.IsOverdue(now) {
			line += "  " + st.Overdue.Render(due+" (overdue)")
		} else {
			line += "  " + st.DueDate.Render(due)
		}
	}
	if selected {
		line = st.Selected.Render(line)
	}

	if t.Description != "" {
		desc := st.Description.Render(t.Description)
		if t.Completed {
			desc = st.DoneDesc.Render(t.Description)
		}
		line += "\n      " + desc
	}
	return line
}

const listFooter = "a add • e edit • space toggle • d delete • / search • 1-3 filter • s sort • t theme • ? help • q quit"

const listHelp = `Keyboard Shortcuts

  j/k, ↑/↓      Move
  g/G           First / last task
  space, x      Toggle completed
  a, n          Add a task
  e, enter      Edit the selected task
  d, delete     Delete the selected task
  /             Search (esc or enter to leave)
  esc           Clear search
  1 / 2 / 3     Show all / incomplete / completed
  s             Cycle sort: default, due date asc, due date desc
  t             Toggle light/dark theme
  ?             Toggle this help
  q, ctrl+c     Quit`
