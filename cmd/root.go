// Package cmd implements the CLI command structure for todo.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/todo-go/internal/app"
	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/theme"
	"github.com/nibzard/todo-go/internal/ui"
	"github.com/nibzard/todo-go/internal/view"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the todo CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	// No subcommand means the interactive UI
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	c := &cli{cfg: cfg, stdout: stdout, stderr: stderr}

	switch subcommand {
	case "tui":
		return c.tuiCommand(ctx, remainingArgs)
	case "add":
		return c.addCommand(ctx, remainingArgs)
	case "ls", "list":
		return c.lsCommand(ctx, remainingArgs)
	case "show":
		return c.showCommand(ctx, remainingArgs)
	case "toggle", "done":
		return c.toggleCommand(ctx, remainingArgs)
	case "edit":
		return c.editCommand(ctx, remainingArgs)
	case "rm", "delete":
		return c.rmCommand(ctx, remainingArgs)
	case "theme":
		return c.themeCommand(ctx, remainingArgs)
	case "logs", "tail":
		return c.logsCommand(ctx, remainingArgs)
	case "config":
		return c.configCommand(remainingArgs)
	case "version", "--version", "-v":
		return versionCommand(stdout)
	case "help", "--help", "-h":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// cli carries what every subcommand needs.
type cli struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

// withApp opens storage, waits for both stores to hydrate, runs fn and then
// gives its writes time to land. Failed writes are logged by the writer and
// summed up in one warning; they do not change the exit status.
func (c *cli) withApp(ctx context.Context, fn func(a *app.App) error) (err error) {
	a, err := app.Open(ctx, c.cfg, app.Options{LogOutput: c.stderr})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), c.closeTimeout())
		defer cancel()
		if cerr := a.Close(closeCtx); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := a.WaitReady(ctx); err != nil {
		return err
	}
	if err := fn(a); err != nil {
		return err
	}

	a.Writer.Wait()
	if stats := a.Writer.Stats(); stats.Failed > 0 {
		a.Logger.Warn("changes may not have been saved", "failed", stats.Failed, "scheduled", stats.Scheduled)
	}
	return nil
}

func (c *cli) closeTimeout() time.Duration {
	if c.cfg.WriteTimeout > 0 {
		return c.cfg.WriteTimeout + time.Second
	}
	return config.DefaultWriteTimeout
}

// tuiCommand launches the interactive UI. Logs go to a per-run file since
// the UI owns the terminal.
func (c *cli) tuiCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo tui", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	search := fs.String("search", "", "Initial search text")
	filter := fs.String("filter", "all", "Initial filter (all|incomplete|completed)")
	sortMode := fs.String("sort", "none", "Initial sort (none|asc|desc)")
	inline := fs.Bool("inline", false, "Render inline instead of in the alternate screen")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	q, err := parseQuery(*search, *filter, *sortMode)
	if err != nil {
		return err
	}
	if !ui.IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY (use 'todo ls' for plain output)")
	}

	a, err := app.Open(ctx, c.cfg, app.Options{RunLog: true})
	if err != nil {
		return err
	}
	a.Logger.Info("session started", "backend", c.cfg.Storage.Backend, "version", Version)

	runErr := ui.RunTUI(ctx, a.Tasks, a.Theme, ui.WithQuery(q), ui.WithAltScreen(!*inline))

	closeCtx, cancel := context.WithTimeout(context.Background(), c.closeTimeout())
	defer cancel()
	closeErr := a.Close(closeCtx)
	if runErr != nil {
		return runErr
	}
	return closeErr
}

func parseQuery(search, filter, sortMode string) (view.Query, error) {
	f, err := view.ParseFilter(filter)
	if err != nil {
		return view.Query{}, err
	}
	s, err := view.ParseSort(sortMode)
	if err != nil {
		return view.Query{}, err
	}
	return view.Query{Search: search, Filter: f, Sort: s}, nil
}

// themeCommand prints, sets or toggles the theme.
func (c *cli) themeCommand(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	return c.withApp(ctx, func(a *app.App) error {
		if len(args) == 0 {
			fmt.Fprintf(c.stdout, "%s\n", a.Theme.Theme())
			return nil
		}
		switch arg := args[0]; arg {
		case "toggle":
			a.Theme.Toggle()
		default:
			name, ok := theme.ParseName(arg)
			if !ok {
				return fmt.Errorf("unknown theme %q (want light, dark or toggle)", arg)
			}
			a.Theme.Set(name)
		}
		fmt.Fprintf(c.stdout, "Theme: %s %s\n", a.Theme.Theme(), a.Theme.Theme().Icon())
		return nil
	})
}

// logsCommand tails the latest interactive session log.
func (c *cli) logsCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo logs", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	list := fs.Bool("list", false, "List session logs instead of tailing the latest")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logDir, err := logging.FindLogDir(c.cfg.LogDir, app.Scope(c.cfg))
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	if *list {
		runs, err := logging.FindLogRuns(logDir)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(c.stdout, "No log files found.")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(c.stdout, "%s  %s  %6d bytes  %s\n", r.RunID, r.ModTime.Format(time.RFC3339), r.Size, r.Path)
		}
		return nil
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(c.stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(c.stdout, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(c.stdout, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(c.stdout)

	return logging.TailLog(ctx, c.stdout, logPath, *n, *follow)
}

// configCommand prints the effective configuration.
func (c *cli) configCommand(args []string) error {
	fs := flag.NewFlagSet("todo config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	example := fs.Bool("example", false, "Print an example config file")
	env := fs.Bool("env", false, "List the environment variables")

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *example:
		fmt.Fprint(c.stdout, config.ExampleConfig())
		return nil
	case *env:
		help, err := config.EnvHelp()
		if err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, help)
		return nil
	}

	if len(c.cfg.ConfigFiles) == 0 {
		fmt.Fprintln(c.stdout, "# no config files loaded")
	}
	for _, f := range c.cfg.ConfigFiles {
		fmt.Fprintf(c.stdout, "# loaded from %s\n", f)
	}
	return toml.NewEncoder(c.stdout).Encode(redacted(c.cfg))
}

// redacted hides secrets before the config is printed.
func redacted(cfg *config.Config) config.Config {
	out := *cfg
	if out.Storage.RedisPassword != "" {
		out.Storage.RedisPassword = "********"
	}
	if out.Storage.PostgresDSN != "" {
		out.Storage.PostgresDSN = redactDSN(out.Storage.PostgresDSN)
	}
	if out.Storage.RedisURL != "" {
		out.Storage.RedisURL = redactDSN(out.Storage.RedisURL)
	}
	return out
}

// redactDSN masks the password in a URL-style connection string.
func redactDSN(dsn string) string {
	scheme := strings.Index(dsn, "://")
	at := strings.LastIndex(dsn, "@")
	if scheme < 0 || at < scheme {
		if strings.Contains(dsn, "password=") {
			return "********"
		}
		return dsn
	}
	userinfo := dsn[scheme+3 : at]
	colon := strings.Index(userinfo, ":")
	if colon < 0 {
		return dsn
	}
	return dsn[:scheme+3] + userinfo[:colon] + ":********" + dsn[at:]
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "todo version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "todo - a small task list for the terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todo [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                       Interactive terminal UI (default command)")
	fmt.Fprintln(w, "  add <title>               Add a task")
	fmt.Fprintln(w, "  ls                        List tasks")
	fmt.Fprintln(w, "  show <task>               Show one task")
	fmt.Fprintln(w, "  toggle <task>             Mark a task done or not done")
	fmt.Fprintln(w, "  edit <task>               Change a task's title, description or due date")
	fmt.Fprintln(w, "  rm <task>                 Delete a task")
	fmt.Fprintln(w, "  theme [light|dark|toggle] Show or change the theme")
	fmt.Fprintln(w, "  logs                      Tail the latest interactive session log")
	fmt.Fprintln(w, "  config                    Print the effective configuration")
	fmt.Fprintln(w, "  version                   Show version information")
	fmt.Fprintln(w, "  help                      Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "A <task> is its number from 'todo ls', its id, or a unique id prefix.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options:")
	fmt.Fprintln(w, "  -desc string")
	fmt.Fprintln(w, "        Description")
	fmt.Fprintln(w, "  -due string")
	fmt.Fprintln(w, "        Due date (YYYY-MM-DD)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -search string")
	fmt.Fprintln(w, "        Only tasks whose title or description contains the text")
	fmt.Fprintln(w, "  -filter string")
	fmt.Fprintln(w, "        all|incomplete|completed (default all)")
	fmt.Fprintln(w, "  -sort string")
	fmt.Fprintln(w, "        none|asc|desc by due date (default none)")
	fmt.Fprintln(w, "  -json")
	fmt.Fprintln(w, "        Print tasks as JSON")
	fmt.Fprintln(w, "  -v    Show task ids and descriptions")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Edit Options:")
	fmt.Fprintln(w, "  -title string, -desc string, -due string, -clear-due")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logs Options:")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
	fmt.Fprintln(w, "  -list")
	fmt.Fprintln(w, "        List session logs")
}
