package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sadopc/pgscope/internal/config"
	"github.com/sadopc/pgscope/internal/executor"
	"github.com/sadopc/pgscope/internal/introspect"
	"github.com/sadopc/pgscope/internal/prompt"
	"github.com/sadopc/pgscope/internal/session"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var (
		hostFlag     string
		portFlag     int
		userFlag     string
		passwordFlag string
		databaseFlag string
		schemaFlag   string
		verboseFlag  bool
	)

	rootCmd := &cobra.Command{
		Use:   "pgscope",
		Short: "Interactive PostgreSQL schema explorer",
		Long: `pgscope reflects a PostgreSQL schema into memory and drives an
interactive table, column, and predicate loop over it.

Connection settings come from PGSCOPE_HOST, PGSCOPE_PORT, PGSCOPE_USER,
PGSCOPE_PASSWORD, and PGSCOPE_DATABASE; flags override the environment.

Examples:
  pgscope                                # localhost:5432 as postgres
  pgscope -H db.internal -d warehouse
  PGSCOPE_DATABASE=warehouse pgscope`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Host = hostFlag
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = portFlag
			}
			if cmd.Flags().Changed("user") {
				cfg.User = userFlag
			}
			if cmd.Flags().Changed("password") {
				cfg.Password = passwordFlag
			}
			if cmd.Flags().Changed("database") {
				cfg.Database = databaseFlag
			}

			log := newLogger(verboseFlag)
			return run(cmd.Context(), cfg, schemaFlag, log)
		},
	}

	rootCmd.Flags().StringVarP(&hostFlag, "host", "H", "localhost", "Database host")
	rootCmd.Flags().IntVarP(&portFlag, "port", "p", 5432, "Database port")
	rootCmd.Flags().StringVarP(&userFlag, "user", "u", "postgres", "Database user")
	rootCmd.Flags().StringVarP(&passwordFlag, "password", "P", "", "Database password")
	rootCmd.Flags().StringVarP(&databaseFlag, "database", "d", "postgres", "Database name")
	rootCmd.Flags().StringVarP(&schemaFlag, "schema", "s", "public", "Schema to reflect")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Debug logging")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pgscope %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
	rootCmd.AddCommand(versionCmd)

	// SIGTERM ends the process; SIGINT is handled per iteration inside the
	// session so it only abandons the current selection.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "pgscope: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func run(ctx context.Context, cfg *config.Config, schemaName string, log zerolog.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	start := time.Now()
	catalog, err := introspect.NewForSchema(pool, schemaName).Load(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Int("tables", catalog.Len()).
		Str("schema", schemaName).
		Dur("took", time.Since(start)).
		Msg("catalog loaded")

	ctl := session.New(catalog, prompt.New(), executor.New(pool), os.Stdout, log)
	if err := ctl.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return nil
}
