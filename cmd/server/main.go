// Command server runs the list sharing API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofiber/fiber/v3"
	redisstore "github.com/gofiber/storage/redis/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mdemena/lists-sharing-sub000/internal/auth"
	"github.com/mdemena/lists-sharing-sub000/internal/config"
	"github.com/mdemena/lists-sharing-sub000/internal/db"
	"github.com/mdemena/lists-sharing-sub000/internal/email"
	"github.com/mdemena/lists-sharing-sub000/internal/jobs"
	"github.com/mdemena/lists-sharing-sub000/internal/logging"
	"github.com/mdemena/lists-sharing-sub000/internal/metrics"
	"github.com/mdemena/lists-sharing-sub000/internal/objectstore"
	"github.com/mdemena/lists-sharing-sub000/internal/server"
	"github.com/mdemena/lists-sharing-sub000/internal/service"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
	"github.com/mdemena/lists-sharing-sub000/internal/store/memstore"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lists",
		Short:         "List sharing API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(serveCmd(), migrateCmd())
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireDatabase()
			if err != nil {
				return err
			}
			if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
				return err
			}
			slog.Info("migrations applied")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default 1 step)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				steps = n
			}
			cfg, err := requireDatabase()
			if err != nil {
				return err
			}
			if err := db.RollbackMigrations(cfg.DatabaseURL, steps); err != nil {
				return err
			}
			slog.Info("migrations rolled back", "steps", steps)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireDatabase()
			if err != nil {
				return err
			}
			version, dirty, err := db.MigrationVersion(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	})

	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := yamlCfg.Apply(cfg); err != nil {
		return nil, fmt.Errorf("applying config file: %w", err)
	}
	return cfg, nil
}

func requireDatabase() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, w := range cfg.Warnings() {
		slog.Warn(w)
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	var limiterStorage fiber.Storage
	var denylist auth.Denylist = auth.NewMemoryDenylist()
	if cfg.RedisURL != "" {
		redis := redisstore.New(redisstore.Config{URL: cfg.RedisURL})
		defer redis.Close()
		limiterStorage = redis
		denylist = auth.NewStorageDenylist(redis)
		slog.Info("using redis for rate limits and token revocation")
	}

	objects, err := objectstore.New(cfg.StorageDir, cfg.StoragePublicURL)
	if err != nil {
		return fmt.Errorf("opening object store: %w", err)
	}

	notifier, err := email.NewNotifier(cfg, email.NewService(cfg))
	if err != nil {
		return fmt.Errorf("loading email templates: %w", err)
	}

	metrics.Init(prometheus.DefaultRegisterer, st)

	svc := service.New(service.Deps{
		Store:    st,
		Tokens:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		Denylist: denylist,
		Mailer:   notifier,
		Objects:  objects,
	}, service.Options{
		AllowAnonymousShares: cfg.AllowAnonymousShares,
		MaxShareRecipients:   cfg.MaxShareRecipients,
		MaxUploadBytes:       cfg.MaxUploadBytes,
		AllowedImageTypes:    cfg.AllowedImageTypes,
	})

	if cfg.IsOIDCEnabled() {
		idp, err := auth.NewOIDCProvider(ctx, cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret, cfg.OIDCRedirectURL)
		if err != nil {
			slog.Warn("OIDC login disabled", "error", err)
		} else {
			svc.Auth.SetIdentityProvider(idp)
		}
	}

	srv := server.New(cfg, limiterStorage)
	srv.RegisterRoutes(server.Deps{
		Services: svc,
		Health:   st,
		Gatherer: prometheus.DefaultGatherer,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		return srv.Shutdown()
	})

	if cfg.ImageSweepInterval > 0 {
		sweeper := jobs.NewImageSweeper(objects, st, cfg.ImageSweepInterval, cfg.ImageSweepMinAge)
		g.Go(func() error {
			sweeper.Start(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server exited")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		return memstore.New(), nil
	}

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		database.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("migrations completed")
	return database, nil
}
