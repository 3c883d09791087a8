// Package cli is the protodo command line. The bare command launches the
// TUI; subcommands drive the same service for scripting.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/protodo/internal/app"
	"github.com/sandeepkv93/protodo/internal/config"
	"github.com/sandeepkv93/protodo/internal/storage"
	"github.com/sandeepkv93/protodo/internal/update"
)

type Options struct {
	Version string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	// RunTUI replaces the interactive program, used by tests.
	RunTUI func(tea.Model) error
}

func (o Options) withDefaults() Options {
	if o.Version == "" {
		o.Version = "dev"
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.RunTUI == nil {
		o.RunTUI = func(m tea.Model) error {
			_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		}
	}
	return o
}

type globalFlags struct {
	configPath string
	envFile    string
	dataDir    string
	backend    string
}

type runner struct {
	opts  Options
	flags globalFlags
}

// Execute runs the root command
func Execute(version string) error {
	root := NewRootCommand(Options{Version: version})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func NewRootCommand(opts Options) *cobra.Command {
	r := &runner{opts: opts.withDefaults()}

	root := &cobra.Command{
		Use:   "protodo",
		Short: "protodo - a personal task manager",
		Long: `protodo keeps a single list of tasks with due dates, priorities,
categories, subtasks and repeat rules, reminds you before tasks fall due and
ships a calendar and a Pomodoro focus timer.

Run without a subcommand to open the terminal UI.`,
		RunE:          r.runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       r.opts.Version,
	}
	root.SetIn(r.opts.Stdin)
	root.SetOut(r.opts.Stdout)
	root.SetErr(r.opts.Stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&r.flags.configPath, "config", "", "config file (.yaml, .yml or .toml)")
	pf.StringVar(&r.flags.envFile, "env-file", ".env", "dotenv file with PROTODO_* variables")
	pf.StringVar(&r.flags.dataDir, "data-dir", "", "data directory (overrides config)")
	pf.StringVar(&r.flags.backend, "backend", "", "storage backend: sqlite, sqlite-pure, file, memory")

	root.AddCommand(
		r.addCmd(),
		r.listCmd(),
		r.doneCmd(),
		r.subtaskCmd(),
		r.editCmd(),
		r.deleteCmd(),
		r.clearCmd(),
		r.importCmd(),
		r.exportCmd(),
		r.calendarCmd(),
		r.settingsCmd(),
		r.remindCmd(),
		r.versionCmd(),
	)
	return root
}

func (r *runner) config() (config.Config, error) {
	cfg, err := config.Resolve(r.flags.configPath, r.flags.envFile)
	if err != nil {
		return cfg, err
	}
	if r.flags.dataDir != "" {
		cfg.DataDir = r.flags.dataDir
		cfg.DBPath = ""
	}
	if r.flags.backend != "" {
		cfg.Backend = storage.Backend(r.flags.backend)
	}
	return cfg, cfg.Validate()
}

// open resolves config and opens the service with logs on stderr.
func (r *runner) open(ctx context.Context) (*app.Service, error) {
	cfg, err := r.config()
	if err != nil {
		return nil, err
	}
	logger := log.New(r.opts.Stderr, "", log.LstdFlags)
	return app.Open(ctx, cfg, app.Options{Logger: logger})
}

// withService opens the service for one command and closes it afterwards.
func (r *runner) withService(cmd *cobra.Command, fn func(context.Context, *app.Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := r.open(ctx)
	if err != nil {
		return err
	}
	runErr := fn(ctx, svc)
	if err := svc.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (r *runner) runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := r.config()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	svc, err := app.Open(ctx, cfg, app.Options{Logger: log.New(logFile, "", log.LstdFlags)})
	if err != nil {
		return err
	}
	defer svc.Close()

	m := update.NewModelWithOptions(svc, update.Options{Context: ctx})
	svc.Start(ctx)
	return r.opts.RunTUI(m)
}
