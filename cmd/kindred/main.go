package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/kindred-stories/kindred/cmd/kindred/cli"
	"github.com/kindred-stories/kindred/internal/access"
	"github.com/kindred-stories/kindred/internal/admin"
	"github.com/kindred-stories/kindred/internal/app"
	"github.com/kindred-stories/kindred/internal/auth"
	jobmetrics "github.com/kindred-stories/kindred/internal/jobs"
	"github.com/kindred-stories/kindred/internal/observability"
	"github.com/kindred-stories/kindred/internal/platform/cache"
	"github.com/kindred-stories/kindred/internal/platform/db"
	"github.com/kindred-stories/kindred/internal/rbac"
	"github.com/kindred-stories/kindred/internal/shared"
	"github.com/kindred-stories/kindred/internal/users"
	"github.com/kindred-stories/kindred/jobs"
	"github.com/kindred-stories/kindred/migrations"
)

// exitError carries a process exit code out of a cobra command.
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		var code exitError
		if errors.As(err, &code) {
			os.Exit(int(code))
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kindred",
		Short:         "Kindred admin API and operational tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(serveCmd(), migrateCmd(), rolesCmd(), jobsCmd())
	return cmd
}

func loadRuntime() (*app.Config, *slog.Logger, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, app.NewLogger(cfg), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{ApplicationName: "kindred-api"})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	usersRepo := users.NewRepository(dbpool)
	resolver := access.NewResolver(access.ResolverConfig{
		Source:   usersRepo,
		Redis:    redisClient,
		CacheTTL: cfg.RoleCacheTTL,
		Logger:   logger,
		Metrics:  access.NewMetrics(metrics.Registerer()),
	})

	tokens := auth.NewService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	authMiddleware := auth.Middleware{Service: tokens, Logger: logger}
	rbacMiddleware := rbac.Middleware{Resolver: resolver, Logger: logger}

	usersService := users.NewService(usersRepo, resolver, logger)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)
	adminHandler := admin.NewHandler(logger, rbacMiddleware, shared.NewAuditLogger(dbpool), usersHandler)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthMiddleware: authMiddleware,
		RBACMiddleware: rbacMiddleware,
		AdminHandler:   adminHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			pool, err := db.New(cmd.Context(), cfg.PGDSN, db.Options{ApplicationName: "kindred-migrate", MaxConns: 2})
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()
			applied, err := db.Migrate(cmd.Context(), pool, migrations.FS, logger)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "applied %d migrations\n", len(applied))
			return nil
		},
	}
}

func rolesCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Inspect the admin role model",
	}
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON output")

	opts := func(cmd *cobra.Command) cli.RolesOptions {
		return cli.RolesOptions{JSONOutput: jsonOutput, Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
	}
	exit := func(code int) error {
		if code != 0 {
			return exitError(code)
		}
		return nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Verify the role table and dashboard tab table are complete",
		RunE: func(cmd *cobra.Command, args []string) error {
			return exit(cli.CheckCommand(opts(cmd)))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "matrix",
		Short: "Print every role with its capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return exit(cli.MatrixCommand(opts(cmd)))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "scan",
		Short: "Scan stored user roles for values that no longer parse",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			pool, err := db.New(cmd.Context(), cfg.PGDSN, db.Options{ApplicationName: "kindred-scan", MaxConns: 2})
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()
			job := jobs.NewRoleIntegrityJob(users.NewRepository(pool), logger, jobmetrics.NewMetrics(nil))
			return exit(cli.ScanCommand(cmd.Context(), job, opts(cmd)))
		},
	})
	return cmd
}

func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage background jobs",
	}
	withCLI := func(fn func(cmd *cobra.Command, c *cli.JobsCLI, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadRuntime()
			if err != nil {
				return err
			}
			c, err := cli.NewJobsCLI(cfg.RedisAddr)
			if err != nil {
				return err
			}
			defer c.Close()
			return fn(cmd, c, args)
		}
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "trigger <task>",
		Short: "Enqueue a job now",
		Args:  cobra.ExactArgs(1),
		RunE: withCLI(func(cmd *cobra.Command, c *cli.JobsCLI, args []string) error {
			info, err := c.Trigger(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "inspect",
		Short: "Print default queue statistics",
		RunE: withCLI(func(cmd *cobra.Command, c *cli.JobsCLI, args []string) error {
			if code := c.InspectCommand(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr()); code != 0 {
				return exitError(code)
			}
			return nil
		}),
	})
	return cmd
}
