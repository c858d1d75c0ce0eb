// Package cli implements the taskctl command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-taskboard/internal/client"
	"github.com/adanyl0v/go-taskboard/internal/config"
	"github.com/adanyl0v/go-taskboard/internal/session"
	"github.com/adanyl0v/go-taskboard/internal/storage"
	"github.com/adanyl0v/go-taskboard/internal/tasklist"
)

var errNoApp = errors.New("taskctl is not initialized")

// App is everything a command needs, built once per invocation.
type App struct {
	Logger  zerolog.Logger
	Config  *config.ClientConfig
	Session *session.Manager
	Tasks   *tasklist.Manager
}

func NewApp(logger zerolog.Logger, cfg *config.ClientConfig) *App {
	api := client.New(logger.With().Str("component", "client").Logger(), cfg.APIURL, cfg.HTTPTimeout)
	store := storage.NewFileStore(cfg.StateFile)

	sess := session.NewManager(logger.With().Str("component", "session").Logger(), api, store)
	tasks := tasklist.NewManager(
		logger.With().Str("component", "tasklist").Logger(),
		api,
		sess,
		store,
		tasklist.NewBoard(),
	)

	return &App{
		Logger:  logger,
		Config:  cfg,
		Session: sess,
		Tasks:   tasks,
	}
}

type appCtxKey struct{}

func withApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appCtxKey{}, app)
}

func appFromContext(ctx context.Context) (*App, error) {
	app, ok := ctx.Value(appCtxKey{}).(*App)
	if !ok {
		return nil, errNoApp
	}
	return app, nil
}

type rootOptions struct {
	apiURL    string
	stateFile string
	verbose   bool
}

func NewRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "taskctl - a terminal client for the taskboard API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", "", "API base URL (overrides TASKBOARD_API_URL)")
	cmd.PersistentFlags().StringVar(&opts.stateFile, "state", "", "State file (overrides TASKBOARD_STATE_FILE)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		registerCmd(),
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		tasksCmd(),
		searchCmd(),
	)
	return cmd
}

func setup(cmd *cobra.Command, opts rootOptions) error {
	level := zerolog.WarnLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	consoleWriter := zerolog.NewConsoleWriter()
	consoleWriter.Out = cmd.ErrOrStderr()
	consoleWriter.TimeFormat = time.TimeOnly
	logger := zerolog.New(consoleWriter).
		Level(level).
		With().
		Timestamp().
		Logger()

	cfg, err := config.NewEnvReader().ReadClient()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if opts.apiURL != "" {
		cfg.APIURL = opts.apiURL
	}
	if opts.stateFile != "" {
		cfg.StateFile = opts.stateFile
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app := NewApp(logger, cfg)
	app.Session.Restore(ctx)

	cmd.SetContext(withApp(ctx, app))
	return nil
}

// authenticatedApp returns the app for commands that need a signed-in user.
func authenticatedApp(cmd *cobra.Command) (*App, error) {
	app, err := appFromContext(cmd.Context())
	if err != nil {
		return nil, err
	}
	if !app.Session.State().IsAuthenticated {
		return nil, errors.New("not logged in, run: taskctl login")
	}
	return app, nil
}
