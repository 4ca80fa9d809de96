package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/snapcurator/internal"
	"github.com/starford/snapcurator/internal/apperr"
	"github.com/starford/snapcurator/internal/journal"
	"github.com/starford/snapcurator/internal/request"
	pkgconfig "github.com/starford/snapcurator/pkg/config"
)

var version = "dev"

// session is what every command needs: the loaded config, a client wired to
// the journal and a record of whether the backend rejected the session.
type session struct {
	cfg     *internal.Config
	logger  *slog.Logger
	client  *request.Client
	journal *journal.DB
	out     io.Writer
	errOut  io.Writer
	json    bool
	expired bool
}

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Override(cmd.String("base-url"), cmd.String("session"))
	if cmd.IsSet("journal") {
		cfg.Journal.Path = cmd.String("journal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func open(cmd *cli.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	root := cmd.Root()
	s := &session{
		cfg:    cfg,
		out:    root.Writer,
		errOut: root.ErrWriter,
		json:   cmd.Bool("json"),
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.errOut == nil {
		s.errOut = os.Stderr
	}
	s.logger = internal.NewLogger(cfg.App, s.errOut)

	opts := []request.Option{
		request.WithSessionExpired(func(loginURL string) {
			s.expired = true
			fmt.Fprintf(s.errOut, "session expired: log in at %s and update the session cookie\n", loginURL)
		}),
	}
	if cfg.Journal.Path != "" {
		db, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("init journal: %w", err)
		}
		s.journal = db
		opts = append(opts, request.WithObserver(db.Observer(s.logger)))
	}

	s.client, err = internal.NewClient(cfg.Backend, s.logger, opts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the journal.
func (s *session) Close() {
	if s.journal != nil {
		_ = s.journal.Close()
	}
}

// done turns the rendered error of a view into the command result.
func (s *session) done(msg string) error {
	if s.expired {
		return apperr.ErrSessionExpired
	}
	if msg != "" {
		return errors.New(msg)
	}
	return nil
}

func (s *session) requireJournal() error {
	if s.journal == nil {
		return errors.New("journal is disabled, set journal.path or --journal")
	}
	return nil
}

// withSession opens a session for the duration of fn.
func withSession(fn func(ctx context.Context, cmd *cli.Command, s *session) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		s, err := open(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(ctx, cmd, s)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithConfigPath(cmd.String("config")),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "snapcurator",
		Usage:   "Curate the snap recommendation backend: categories, editorial slices, the collector pipeline and the featured list",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Recommendation backend root URL",
				Sources: cli.EnvVars("SNAPCURATOR_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "session",
				Usage:   "Backend session cookie value",
				Sources: cli.EnvVars("SNAPCURATOR_SESSION"),
			},
			&cli.StringFlag{
				Name:    "journal",
				Usage:   "Path to the journal database, empty to disable it",
				Sources: cli.EnvVars("SNAPCURATOR_JOURNAL"),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
		},
		Commands: []*cli.Command{
			categoriesCommand(),
			overviewCommand(),
			snapsCommand(),
			excludeCommand(),
			includeCommand(),
			excludedCommand(),
			slicesCommand(),
			collectorCommand(),
			featuredCommand(),
			historyCommand(),
			{
				Name:   "serve",
				Usage:  "Run the collector monitor with its HTTP API and event stream",
				Action: serve,
			},
			mcpCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
