package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"homebudget/internal/backend"
	"homebudget/internal/cli"
	"homebudget/internal/config"
	"homebudget/internal/core"
	"homebudget/internal/display/text"
	"homebudget/internal/log"
	"homebudget/internal/presenter"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "homebudget:", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once the root has parsed its
// persistent flags.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	dbPath     string
	newDB      bool

	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "homebudget",
		Short: "Track household income and expenses by category",
		Long: `homebudget keeps categories and expenses in a single budget file and
reports them as a flat list with running balances, totals by month, totals
by category, or a month by category table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a TOML config file")
	flags.StringVar(&a.dbPath, "db", "", "budget file (overrides db_path)")
	flags.BoolVar(&a.newDB, "new", false, "replace the budget file with a fresh one")

	root.AddCommand(
		newInitCmd(a),
		newCategoryCmd(a),
		newExpenseCmd(a),
		newReportCmd(a),
		newExportCmd(a),
		newServeCmd(a),
		newEventsCmd(a),
		newSyncCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cli.LoadEnvFile()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	if a.newDB {
		cfg.NewDB = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cli.SetupLogger(cfg.LogLevel, a.stderr)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// open opens the configured budget. Callers must call the returned cleanup.
func (a *app) open(ctx context.Context) (*backend.Result, func(), error) {
	bc, err := backend.FromAppConfig(a.cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(a.logger).Create(ctx, bc)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := res.Cleanup(); err != nil {
			a.logger.Warn("Failed to close budget", log.FieldError, err)
		}
	}
	return res, cleanup, nil
}

func (a *app) renderer() *text.Renderer {
	return text.New(a.stdout, text.Theme{
		Header:   a.cfg.Theme.Header,
		Label:    a.cfg.Theme.Label,
		Negative: a.cfg.Theme.Negative,
		Border:   a.cfg.Theme.Border,
	})
}

// quietMain is the terminal view for commands that should not print the
// category list.
type quietMain struct {
	*text.Renderer
}

func (quietMain) PopulateCategories([]core.Category) {}

// presenter binds a presenter to the terminal. listCategories controls
// whether the category table is printed whenever it changes.
func (a *app) presenter(ctx context.Context, res *backend.Result, listCategories bool) (*presenter.Presenter, error) {
	r := a.renderer()
	var main presenter.MainView = quietMain{r}
	if listCategories {
		main = r
	}
	p, err := presenter.New(ctx, res.Service, main)
	if err != nil {
		return nil, err
	}
	p.SetEditView(r)
	p.SetDisplay(r)
	return p, nil
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a budget file holding the default categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Backend == string(backend.SQLite) {
				a.cfg.NewDB = true
			}
			res, cleanup, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			fmt.Fprintf(a.stdout, "Created budget at %s\n", res.Location)
			return nil
		},
	}
}
