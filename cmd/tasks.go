package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nibzard/todo-go/internal/app"
	"github.com/nibzard/todo-go/internal/isodate"
	"github.com/nibzard/todo-go/internal/todo"
	"github.com/nibzard/todo-go/internal/view"
)

// errNoTask is returned when a task argument matches nothing.
var errNoTask = errors.New("no such task")

// parseArgs parses fs while allowing flags after positional arguments, so
// both "add --due 2024-01-10 Buy milk" and "add Buy milk --due 2024-01-10"
// work.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// resolveTask finds a task by exact id, by its 1-based number in the
// collection, or by a unique id prefix, in that order.
func resolveTask(store *todo.Store, ref string) (todo.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return todo.Task{}, fmt.Errorf("%w: empty task reference", errNoTask)
	}
	if t, ok := store.Get(ref); ok {
		return t, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		tasks := store.Tasks()
		if n >= 1 && n <= len(tasks) {
			return tasks[n-1], nil
		}
	}
	matches := store.Match(ref)
	switch len(matches) {
	case 0:
		return todo.Task{}, fmt.Errorf("%w: %q", errNoTask, ref)
	case 1:
		return matches[0], nil
	default:
		return todo.Task{}, fmt.Errorf("task %q is ambiguous: matches %d tasks", ref, len(matches))
	}
}

// numbers maps task ids to their 1-based position in the collection.
func numbers(tasks []todo.Task) map[string]int {
	out := make(map[string]int, len(tasks))
	for i, t := range tasks {
		out[t.ID] = i + 1
	}
	return out
}

// addCommand adds one task.
func (c *cli) addCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo add", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	desc := fs.String("desc", "", "Description")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	draft := todo.Draft{
		Title:       strings.Join(positional, " "),
		Description: *desc,
		DueDate:     *due,
	}
	nt, err := draft.NewTask()
	if err != nil {
		return err
	}

	return c.withApp(ctx, func(a *app.App) error {
		t := a.Tasks.Add(nt)
		fmt.Fprintf(c.stdout, "Added %d. %s (%s)\n", a.Tasks.Len(), t.Title, t.ID)
		return nil
	})
}

// lsCommand prints the derived view of the task list.
func (c *cli) lsCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo ls", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	search := fs.String("search", "", "Only tasks whose title or description contains the text")
	filter := fs.String("filter", "all", "Filter (all|incomplete|completed)")
	sortMode := fs.String("sort", "none", "Sort by due date (none|asc|desc)")
	asJSON := fs.Bool("json", false, "Print tasks as JSON")
	verbose := fs.Bool("v", false, "Show task ids and descriptions")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	// A bare word is shorthand for -filter.
	if len(positional) > 1 {
		return fmt.Errorf("unexpected arguments: %v", positional[1:])
	}
	if len(positional) == 1 {
		*filter = positional[0]
	}
	q, err := parseQuery(*search, *filter, *sortMode)
	if err != nil {
		return err
	}

	return c.withApp(ctx, func(a *app.App) error {
		all := a.Tasks.Tasks()
		shown := view.Apply(all, q)

		if *asJSON {
			enc := json.NewEncoder(c.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(shown)
		}

		if len(shown) == 0 {
			fmt.Fprintln(c.stdout, view.EmptyMessage(q))
			return nil
		}
		nums := numbers(all)
		now := time.Now()
		for _, t := range shown {
			printTask(c, nums[t.ID], t, now, *verbose)
		}
		return nil
	})
}

// printTask prints a single task line.
func printTask(c *cli, num int, t todo.Task, now time.Time, verbose bool) {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	line := fmt.Sprintf("%3d. %s %s", num, box, t.Title)
	if t.DueDate != nil {
		line += "  due " + isodate.Display(*t.DueDate)
		if t.IsOverdue(now) {
			line += " (overdue)"
		}
	}
	fmt.Fprintln(c.stdout, line)

	if verbose {
		fmt.Fprintf(c.stdout, "       id: %s\n", t.ID)
		if t.Description != "" {
			fmt.Fprintf(c.stdout, "       %s\n", t.Description)
		}
	}
}

// showCommand prints every field of one task.
func (c *cli) showCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo show", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	asJSON := fs.Bool("json", false, "Print the task as JSON")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("usage: todo show <task>")
	}

	return c.withApp(ctx, func(a *app.App) error {
		t, err := resolveTask(a.Tasks, positional[0])
		if err != nil {
			return err
		}
		if *asJSON {
			enc := json.NewEncoder(c.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(t)
		}

		status := "open"
		if t.Completed {
			status = "done"
		}
		fmt.Fprintf(c.stdout, "ID:          %s\n", t.ID)
		fmt.Fprintf(c.stdout, "Title:       %s\n", t.Title)
		if t.Description != "" {
			fmt.Fprintf(c.stdout, "Description: %s\n", t.Description)
		}
		fmt.Fprintf(c.stdout, "Status:      %s\n", status)
		if t.DueDate != nil {
			due := isodate.Display(*t.DueDate)
			if t.IsOverdue(time.Now()) {
				due += " (overdue)"
			}
			fmt.Fprintf(c.stdout, "Due:         %s\n", due)
		}
		fmt.Fprintf(c.stdout, "Created:     %s\n", isodate.Format(t.CreatedAt))
		return nil
	})
}

// toggleCommand flips a task between done and not done.
func (c *cli) toggleCommand(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: todo toggle <task>")
	}
	return c.withApp(ctx, func(a *app.App) error {
		t, err := resolveTask(a.Tasks, args[0])
		if err != nil {
			return err
		}
		a.Tasks.Toggle(t.ID)
		if t.Completed {
			fmt.Fprintf(c.stdout, "Reopened: %s\n", t.Title)
		} else {
			fmt.Fprintf(c.stdout, "Completed: %s\n", t.Title)
		}
		return nil
	})
}

// rmCommand deletes a task.
func (c *cli) rmCommand(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: todo rm <task>")
	}
	return c.withApp(ctx, func(a *app.App) error {
		t, err := resolveTask(a.Tasks, args[0])
		if err != nil {
			return err
		}
		a.Tasks.Delete(t.ID)
		fmt.Fprintf(c.stdout, "Deleted: %s\n", t.Title)
		return nil
	})
}

// editCommand changes only the fields given on the command line. Unlike the
// form in the UI it leaves the completion state alone.
func (c *cli) editCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo edit", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	title := fs.String("title", "", "New title")
	desc := fs.String("desc", "", "New description (empty clears it)")
	due := fs.String("due", "", "New due date (YYYY-MM-DD)")
	clearDue := fs.Bool("clear-due", false, "Remove the due date")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("usage: todo edit <task> [-title T] [-desc D] [-due YYYY-MM-DD | -clear-due]")
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if len(set) == 0 {
		return fmt.Errorf("nothing to change: pass -title, -desc, -due or -clear-due")
	}
	if set["due"] && *clearDue {
		return fmt.Errorf("-due and -clear-due are mutually exclusive")
	}

	return c.withApp(ctx, func(a *app.App) error {
		t, err := resolveTask(a.Tasks, positional[0])
		if err != nil {
			return err
		}
		if set["title"] {
			t.Title = strings.TrimSpace(*title)
		}
		if set["desc"] {
			t.Description = strings.TrimSpace(*desc)
		}
		if err := todo.ValidateInput(t.Title, t.Description); err != nil {
			return err
		}
		switch {
		case *clearDue:
			t.DueDate = nil
		case set["due"]:
			d, err := isodate.ParseDate(*due)
			if err != nil {
				return &todo.ValidationError{Path: "dueDate", Err: todo.ErrInvalidDueDate}
			}
			t.DueDate = &d
		}

		a.Tasks.Update(t)
		fmt.Fprintf(c.stdout, "Updated: %s\n", t.Title)
		return nil
	})
}
