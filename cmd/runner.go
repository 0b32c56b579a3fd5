package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mrx/internal/formatter"
	"github.com/desertthunder/mrx/internal/services"
	"github.com/desertthunder/mrx/internal/session"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/table"
	"github.com/desertthunder/mrx/internal/tasks"
	"github.com/desertthunder/mrx/internal/transport"
	"github.com/desertthunder/mrx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	store      *session.Store
	api        *services.APIService
	loader     *tasks.Loader
	httpClient *http.Client
	base       http.RoundTripper
	logger     *log.Logger
	output     io.Writer
	open       func(url string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Storage session.Storage
	// Transport is the base round tripper under the auth and logging middleware.
	Transport http.RoundTripper
	Logger    *log.Logger
	Output    io.Writer
	// Notices receives session notifications. Defaults to stderr.
	Notices io.Writer
	Open    func(url string) error
}

// NewRunner creates a new Runner with the provided configuration and restores the persisted session.
//
// The store authenticates the API client and the API client backs the store, so the client is created empty and its
// transport installed once the store exists.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Notices == nil {
		opts.Notices = os.Stderr
	}
	if opts.Open == nil {
		opts.Open = shared.OpenURL
	}

	httpClient := &http.Client{}
	api := services.NewAPIService(opts.Config.API.BaseURL, httpClient)

	store := session.NewStore(session.StoreOpts{
		Storage:  opts.Storage,
		API:      api,
		Notifier: session.NewLineNotifier(opts.Notices),
		Logger:   opts.Logger,
	})

	client := transport.NewClient(transport.ClientOpts{
		Base:     opts.Transport,
		Source:   store,
		OnReject: func(*http.Request) { store.Reject() },
		Logger:   opts.Logger,
		Timeout:  opts.Config.API.Timeout(),
	})
	httpClient.Transport = client.Transport
	httpClient.Timeout = client.Timeout

	r := &Runner{
		config:     opts.Config,
		store:      store,
		api:        api,
		loader:     tasks.NewLoader(api),
		httpClient: httpClient,
		base:       opts.Transport,
		logger:     opts.Logger,
		output:     opts.Output,
		open:       opts.Open,
	}
	store.SetNavigator(session.NavigatorFunc(r.signInHint))
	store.Init()
	return r
}

// SetLogOutput redirects the shared logger, which the transport and session store also write to.
func (r *Runner) SetLogOutput(w io.Writer) {
	r.logger.SetOutput(w)
}

// signInHint is the CLI's redirect target: there is no page to go to, so point at the login command.
func (r *Runner) signInHint(string) {
	r.logger.Info("run `mrx auth login` to sign in")
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, memberCommand, licenseeCommand, adminCommand,
		lookupsCommand, filesCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// require is a Before hook that runs the session guard for roles.
func (r *Runner) require(roles ...session.Role) cli.BeforeFunc {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		return ctx, session.Require(r.store, roles...)
	}
}

// listFlags are shared by every list command.
func listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "search",
			Aliases: []string{"q"},
			Usage:   "Case-insensitive filter across all columns",
		},
		&cli.StringFlag{
			Name:  "sort",
			Usage: "Column key to sort by",
		},
		&cli.BoolFlag{
			Name:  "desc",
			Usage: "Sort descending",
		},
		&cli.IntFlag{
			Name:  "page",
			Usage: "Page to show in table format",
			Value: 1,
		},
		&cli.IntFlag{
			Name:  "page-size",
			Usage: "Rows per page (default: [ui] page_size)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: table, csv, markdown or json",
			Value:   string(formatter.FormatTable),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the export to a file instead of stdout",
		},
	}
}

// writeList renders rows through a [table.View] configured from the list flags.
func writeList[T any](r *Runner, cmd *cli.Command, title, noun string, columns []table.Column[T], rows []T) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	pageSize := cmd.Int("page-size")
	if pageSize <= 0 {
		pageSize = r.config.UI.PageSize
	}

	view := table.New(columns, nil, ui.ViewOptions(title, fmt.Sprintf("No %s yet", noun), pageSize))
	view.SetRows(rows)
	view.SetSearch(cmd.String("search"))

	if key := cmd.String("sort"); key != "" {
		if !view.ToggleSort(key) {
			return fmt.Errorf("%w: cannot sort %s by %q", shared.ErrInvalidFlag, noun, key)
		}
		if cmd.Bool("desc") {
			view.ToggleSort(key)
		}
	}
	view.SetPage(cmd.Int("page") - 1)

	data, err := formatter.Export(view, format)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteExport(path, format, data)
		if err != nil {
			return err
		}
		r.logger.Info("export written", "path", written, "rows", view.Len())
		return r.writePlain("✓ Exported %d %s to %s\n", view.Len(), noun, written)
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
