package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"clockedin/internal/config"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd       *cobra.Command
	config    *config.Config
	bootstrap Bootstrap
	backend   *Backend
	out       io.Writer
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(cfg *config.Config, bootstrap Bootstrap) *RootCommand {
	root := &RootCommand{
		config:    cfg,
		bootstrap: bootstrap,
		out:       os.Stdout,
	}

	root.cmd = &cobra.Command{
		Use:   "clockedin",
		Short: "Track study hours against weekly goals",
		Long: `clockedin tracks how many hours you study per subject and compares them
with a weekly goal for each subject.

Data is kept in a local cache until you sign in. Once signed in, the remote
database becomes the source of truth and the local cache mirrors it.

EXAMPLES:
  clockedin subjects add Math 5            # Add a subject with a 5h weekly goal
  clockedin subjects add Thesis --preset 13  # Weekly goal for a 10 credit course
  clockedin log add 1.5                    # Log 1.5 hours against the default subject
  clockedin log add --subject 12 --preset 45
  clockedin dashboard                      # Weekly progress, streak and recent sessions
  clockedin login --token <jwt>            # Switch to the remote database
  clockedin serve                          # Serve the JSON API

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > .env > defaults

    CLOCKEDIN_CACHE_DIR                    Cache directory (default: ~/.clockedin)
    CLOCKEDIN_CACHE_FILENAME               Cache filename (default: cache.db)
    CLOCKEDIN_REMOTE_URL                   Postgres connection string (empty: local only)
    CLOCKEDIN_JWT_SECRET                   Secret used to verify access tokens
    CLOCKEDIN_SYNC_MIGRATE_ON_SIGN_IN      Upload local data on first sign-in (default: true)
    CLOCKEDIN_TIME_DISPLAY_FORMAT          Time format (default: 2006-01-02 15:04)
    CLOCKEDIN_DISPLAY_BAR_WIDTH            Progress bar width (default: 24)
    CLOCKEDIN_SERVER_ADDR                  HTTP listen address (default: 127.0.0.1:8787)
    CLOCKEDIN_APP_TIMEOUT                  Command timeout (default: 60s)
    CLOCKEDIN_DEBUG                        Debug logging to stderr (default: false)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := root.getConfigFromFlags(); err != nil {
				return err
			}
			return root.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return root.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withTimeout(func(ctx context.Context) error {
				return NewDashboardCommand(root.app()).Execute(ctx, args)
			})
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	err := r.cmd.Execute()
	if closeErr := r.close(); err == nil {
		err = closeErr
	}
	return err
}

// SetArgs replaces the command line arguments, for tests
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// SetOutput redirects command output
func (r *RootCommand) SetOutput(w io.Writer) {
	r.out = w
	r.cmd.SetOut(w)
	r.cmd.SetErr(w)
}

func (r *RootCommand) open(cmd *cobra.Command) error {
	if r.backend != nil {
		return nil
	}
	if r.bootstrap == nil {
		return fmt.Errorf("no backend configured")
	}
	backend, err := r.bootstrap(cmd.Context(), r.config, cmd.Name() == "serve")
	if err != nil {
		return err
	}
	r.backend = backend
	return nil
}

func (r *RootCommand) close() error {
	if r.backend == nil || r.backend.Close == nil {
		r.backend = nil
		return nil
	}
	err := r.backend.Close()
	r.backend = nil
	return err
}

func (r *RootCommand) app() *App {
	return NewAppWithOutput(r.backend.API, r.config, r.out)
}

func (r *RootCommand) withTimeout(run func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
	defer cancel()
	return run(ctx)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("cache-dir", "", "Cache directory (overrides CLOCKEDIN_CACHE_DIR)")
	flags.String("cache-filename", "", "Cache filename (overrides CLOCKEDIN_CACHE_FILENAME)")
	flags.String("remote-url", "", "Postgres connection string (overrides CLOCKEDIN_REMOTE_URL)")
	flags.String("time-format", "", "Time display format (overrides CLOCKEDIN_TIME_DISPLAY_FORMAT)")
	flags.Int("bar-width", 0, "Progress bar width (overrides CLOCKEDIN_DISPLAY_BAR_WIDTH)")
	flags.Duration("app-timeout", 0, "Command timeout (overrides CLOCKEDIN_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable verbose logging (overrides CLOCKEDIN_APP_VERBOSE)")
	flags.Bool("debug", false, "Enable debug logging to stderr (overrides CLOCKEDIN_DEBUG)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show this week's progress",
		Long:  "Show hours logged this week against the weekly goals, the current streak and recent sessions.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(func(ctx context.Context) error {
				return NewDashboardCommand(r.app()).Execute(ctx, args)
			})
		},
	}

	r.cmd.AddCommand(
		dashboardCmd,
		r.subjectsCommand(),
		r.logCommand(),
		r.loginCommand(),
		r.logoutCommand(),
		r.statusCommand(),
		r.serveCommand(),
	)
}

func (r *RootCommand) subjectsCommand() *cobra.Command {
	subjectsCmd := &cobra.Command{
		Use:     "subjects",
		Aliases: []string{"subject"},
		Short:   "Manage subjects",
	}

	var showArchived bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List subjects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(func(ctx context.Context) error {
				return NewSubjectsCommand(r.app()).List(ctx, showArchived)
			})
		},
	}
	listCmd.Flags().BoolVarP(&showArchived, "all", "a", false, "Include archived subjects")

	var goalPreset float64
	addCmd := &cobra.Command{
		Use:   "add <name> [weekly goal hours]",
		Short: "Add a subject",
		Long: `Add a subject with an optional weekly goal in hours ("5", "4,5").
Use --preset to pick a goal by course size: ` + goalPresetsText() + ".",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(func(ctx context.Context) error {
				return NewSubjectsCommand(r.app()).Add(ctx, args[0], optionalArg(args, 1), goalPreset)
			})
		},
	}
	addCmd.Flags().Float64VarP(&goalPreset, "preset", "p", 0, "Weekly goal preset in hours")

	editCmd := &cobra.Command{
		Use:   "edit <id> <name> [weekly goal hours]",
		Short: "Rename a subject and change its goal",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(func(ctx context.Context) error {
				return NewSubjectsCommand(r.app()).Edit(ctx, args[0], args[1], optionalArg(args, 2))
			})
		},
	}

	archiveCmd := &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a subject",
		Long:  "Archived subjects keep their history but no longer accept new sessions or count toward the weekly goal.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(func(ctx context.Context) error {
				return NewSubjectsCommand(r.app()).SetArchived(ctx, args[0], true)
			})
		},
	}

	unarchiveCmd := &cobra.Command{
		Use:   "unarchive <id>",
		Short: "Restore an archived subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(func(ctx context.Context) error {
				return NewSubjectsCommand(r.app()).SetArchived(ctx, args[0], false)
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a subject without sessions",
		Long:  "Delete a subject. Subjects with logged sessions cannot be deleted; archive them instead.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(func(ctx context.Context) error {
				return NewSubjectsCommand(r.app()).Delete(ctx, args[0])
			})
		},
	}

	subjectsCmd.AddCommand(listCmd, addCmd, editCmd, archiveCmd, unarchiveCmd, deleteCmd)
	return subjectsCmd
}

func (r *RootCommand) logCommand() *cobra.Command {
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Log and manage study sessions",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(func(ctx context.Context) error {
				return NewLogCommand(r.app()).List(ctx, limit)
			})
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of sessions to show (0 for all)")

	var subject string
	var preset int
	addCmd := &cobra.Command{
		Use:   "add [hours]",
		Short: "Log a study session",
		Long: `Log hours against a subject. Hours accept a decimal point or comma ("1.5", "1,5").
Without --subject the most recently logged active subject is used.
Use --preset with 30, 45, 60, 90 or 120 to log a quick-pick duration in minutes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(func(ctx context.Context) error {
				return NewLogCommand(r.app()).Add(ctx, subject, optionalArg(args, 0), preset)
			})
		},
	}
	addCmd.Flags().StringVarP(&subject, "subject", "s", "", "Subject id")
	addCmd.Flags().IntVarP(&preset, "preset", "p", 0, "Quick-pick duration in minutes")

	editCmd := &cobra.Command{
		Use:   "edit <id> <hours>",
		Short: "Change a session's duration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(func(ctx context.Context) error {
				return NewLogCommand(r.app()).Edit(ctx, args[0], args[1])
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(func(ctx context.Context) error {
				return NewLogCommand(r.app()).Delete(ctx, args[0])
			})
		},
	}

	logCmd.AddCommand(listCmd, addCmd, editCmd, deleteCmd)
	return logCmd
}

func (r *RootCommand) loginCommand() *cobra.Command {
	var token string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an access token",
		Long: `Sign in with an access token issued by your account provider.
The first sign-in on this device uploads local subjects and sessions to your account.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(func(ctx context.Context) error {
				return NewSessionCommand(r.app()).Login(ctx, token)
			})
		},
	}
	loginCmd.Flags().StringVar(&token, "token", "", "Access token (JWT)")
	_ = loginCmd.MarkFlagRequired("token")
	return loginCmd
}

func (r *RootCommand) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and use local data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(func(ctx context.Context) error {
				return NewSessionCommand(r.app()).Logout(ctx)
			})
		},
	}
}

func (r *RootCommand) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session and data source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(func(ctx context.Context) error {
				return NewSessionCommand(r.app()).Status(ctx)
			})
		},
	}
}

func (r *RootCommand) serveCommand() *cobra.Command {
	var addr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				r.config.Server.Addr = addr
			}
			// no app timeout: serve runs until interrupted
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return NewServeCommand(r.app(), r.backend).Execute(ctx)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides CLOCKEDIN_SERVER_ADDR)")
	return serveCmd
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

// getConfigFromFlags updates the configuration with values from command-line flags
func (r *RootCommand) getConfigFromFlags() error {
	if r.config == nil {
		return fmt.Errorf("configuration not initialized")
	}

	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	if v, _ := flags.GetString("cache-dir"); v != "" {
		overrides.CacheDir = &v
	}
	if v, _ := flags.GetString("cache-filename"); v != "" {
		overrides.CacheFilename = &v
	}
	if v, _ := flags.GetString("remote-url"); v != "" {
		overrides.RemoteURL = &v
	}
	if v, _ := flags.GetString("time-format"); v != "" {
		overrides.TimeFormat = &v
	}
	if v, _ := flags.GetInt("bar-width"); v > 0 {
		overrides.BarWidth = &v
	}
	if v, _ := flags.GetDuration("app-timeout"); v > 0 {
		overrides.Timeout = &v
	}
	if v, _ := flags.GetBool("verbose"); v {
		overrides.Verbose = &v
	}
	if v, _ := flags.GetBool("debug"); v {
		overrides.Debug = &v
	}

	overrides.Apply(r.config)
	return r.config.Validate()
}
