package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/term"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/config"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/infrastructure/providers"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/present/rest/presenter"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/telemetry"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:          "marketplace",
		Short:        "Housing marketplace API server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the YAML config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newMigrateCmd(&configPath))
	root.AddCommand(newSeedAdminCmd(&configPath))
	return root
}

func loadConfig(path string) (config.Config, *slog.Logger, error) {
	conf, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(conf.Server.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return conf, logger, nil
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdownTrace, err := telemetry.Setup(ctx, conf.Server.EnableTrace, conf.Server.TraceEndpoint)
			if err != nil {
				return errors.Wrap(err, "failed to setup tracing")
			}
			defer func() {
				if err := shutdownTrace(context.Background()); err != nil {
					logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
				}
			}()

			stores, err := providers.NewStores(ctx, conf, logger)
			if err != nil {
				return err
			}
			defer stores.Close()

			handler, err := providers.NewHandler(conf, stores)
			if err != nil {
				return err
			}

			e := echo.New()
			e.HideBanner = true
			e.HTTPErrorHandler = presenter.HTTPErrorHandler
			e.Use(middleware.Logger())
			e.Use(middleware.Recover())
			e.Use(middleware.CORS())
			e.Use(otelecho.Middleware(telemetry.ServiceName))
			handler.RegisterRoutes(e)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", slog.String("addr", conf.Server.Addr), slog.String("storage", conf.Server.Storage))
				if err := e.Start(conf.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if conf.Server.Storage != config.StoragePostgres {
				return errors.New("migrate requires the postgres storage driver")
			}
			db, err := providers.NewDatabase(conf.Server)
			if err != nil {
				return errors.Wrap(err, "failed to connect database")
			}
			if err := providers.MigrateDatabase(db); err != nil {
				return errors.Wrap(err, "failed to migrate database")
			}
			logger.Info("migrated")
			return nil
		},
	}
}

func newSeedAdminCmd(configPath *string) *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if conf.Server.Storage != config.StoragePostgres {
				return errors.New("seed-admin requires the postgres storage driver")
			}
			password, err := readPassword(cmd)
			if err != nil {
				return errors.Wrap(err, "failed to read password")
			}

			stores, err := providers.NewStores(cmd.Context(), conf, logger)
			if err != nil {
				return err
			}
			defer stores.Close()

			identities, _, err := providers.NewIdentityUsecase(conf.Auth, stores)
			if err != nil {
				return err
			}
			admin, err := identities.Register(cmd.Context(), usecase.SignupInput{
				Role:     domain.RoleAdministrator,
				Email:    email,
				Name:     name,
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created administrator %s (%s)\n", admin.Email, admin.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Administrator email")
	cmd.Flags().StringVar(&name, "name", "Administrator", "Administrator display name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// readPassword prompts without echo on a terminal and reads one line from
// stdin otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		pass, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.OutOrStdout())
		return string(pass), err
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
