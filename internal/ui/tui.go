// Package ui is the interactive terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/todo-go/internal/theme"
	"github.com/nibzard/todo-go/internal/todo"
	"github.com/nibzard/todo-go/internal/view"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	altScreen bool
	now       func() time.Time
	query     view.Query
}

// WithAltScreen runs the TUI in the terminal's alternate screen.
func WithAltScreen(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.altScreen = enabled
	}
}

// WithQuery sets the search, filter and sort the list starts with.
func WithQuery(q view.Query) TUIOption {
	return func(c *tuiConfig) {
		c.query = q
	}
}

// WithClock overrides the clock used to flag overdue tasks.
func WithClock(now func() time.Time) TUIOption {
	return func(c *tuiConfig) {
		c.now = now
	}
}

// RunTUI starts the TUI over the two stores and blocks until the user quits.
func RunTUI(ctx context.Context, tasks *todo.Store, themes *theme.Store, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	c := newTUIConfig(opts)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if c.altScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(newTUIModel(tasks, themes, c), programOpts...)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func newTUIConfig(opts []TUIOption) *tuiConfig {
	c := &tuiConfig{
		altScreen: true,
		now:       time.Now,
		query:     view.Query{Filter: view.FilterAll, Sort: view.SortNone},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type screen int

const (
	screenList screen = iota
	screenForm
)

type tuiModel struct {
	tasks  *todo.Store
	themes *theme.Store
	now    func() time.Time

	styles    theme.Styles
	styledFor theme.Name

	screen     screen
	query      view.Query
	search     textinput.Model
	searching  bool
	visible    []todo.Task
	cursor     int
	pendingDel *todo.Task
	showHelp   bool
	status     string
	form       *taskForm
	width      int
}

// readyMsg reports that a store finished hydrating.
type readyMsg struct{}

func newTUIModel(tasks *todo.Store, themes *theme.Store, c *tuiConfig) *tuiModel {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search tasks..."
	search.CharLimit = todo.MaxTitleLength
	search.SetValue(c.query.Search)

	m := &tuiModel{
		tasks:  tasks,
		themes: themes,
		now:    c.now,
		query:  c.query,
		search: search,
	}
	m.restyle()
	m.refresh()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return tea.Batch(
		waitReady(m.tasks.Ready()),
		waitReady(m.themes.Ready()),
	)
}

func waitReady(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return readyMsg{}
	}
}

func (m *tuiModel) loading() bool {
	return m.tasks.Loading() || m.themes.Loading()
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case readyMsg:
		m.restyle()
		m.refresh()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.search.Width = max(msg.Width-10, 10)
		if m.form != nil {
			m.form.resize(msg.Width)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.loading() {
			if msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.screen == screenForm {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *tuiModel) View() string {
	m.restyle()
	if m.loading() {
		return m.styles.App.Render(m.styles.Empty.Render("Loading tasks...")) + "\n"
	}
	if m.screen == screenForm && m.form != nil {
		return m.styles.App.Render(m.viewForm()) + "\n"
	}
	return m.styles.App.Render(m.viewList()) + "\n"
}

// restyle rebuilds the styles when the theme has changed.
func (m *tuiModel) restyle() {
	name := m.themes.Theme()
	if name == m.styledFor && m.styledFor != "" {
		return
	}
	m.styles = theme.NewStyles(m.themes.Colors())
	m.styledFor = name
}

// refresh recomputes the visible list and keeps the cursor in range.
func (m *tuiModel) refresh() {
	m.visible = view.Apply(m.tasks.Tasks(), m.query)
	m.cursor = clampCursor(m.cursor, len(m.visible))
}

// selectTask moves the cursor onto id when it is visible.
func (m *tuiModel) selectTask(id string) {
	for i, t := range m.visible {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m *tuiModel) current() (todo.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return todo.Task{}, false
	}
	return m.visible[m.cursor], true
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
