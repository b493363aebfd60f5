package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"gorm.io/gorm"

	"github.com/totegamma/admindata/internal/config"
	"github.com/totegamma/admindata/internal/domain"
	"github.com/totegamma/admindata/internal/infra/cache"
	"github.com/totegamma/admindata/internal/infra/database"
	"github.com/totegamma/admindata/internal/infra/repository"
	"github.com/totegamma/admindata/internal/present/rest"
	authmw "github.com/totegamma/admindata/internal/present/rest/middleware"
	"github.com/totegamma/admindata/internal/service"
	"github.com/totegamma/admindata/internal/telemetry"
	"github.com/totegamma/admindata/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), conf)
		},
	}
}

func openDatabase(conf config.Server) (*gorm.DB, error) {
	if conf.PostgresDsn != "" {
		return database.NewPostgres(conf.PostgresDsn)
	}
	return database.NewSqlite(conf.SqlitePath)
}

func serve(ctx context.Context, conf config.Config) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if conf.Server.SessionSecret == "" {
		return errors.New("sessionSecret is not configured")
	}

	if conf.Server.EnableTrace {
		shutdown, err := telemetry.SetupTracer(ctx, conf.Server.TraceEndpoint, version)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Error("failed to shutdown tracer", slog.String("error", err.Error()))
			}
		}()
	}

	db, err := openDatabase(conf.Server)
	if err != nil {
		return errors.Wrap(err, "connect database")
	}
	if err := database.Migrate(db); err != nil {
		return errors.Wrap(err, "migrate database")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := cache.NewMetrics(registry)

	local := cache.NewLocal(conf.Server.TypeCacheTTL, metrics)
	var typeCache usecase.TypeCache = local
	if conf.Server.MemcachedAddr != "" {
		mc := database.NewMemcached(conf.Server.MemcachedAddr)
		typeCache = cache.NewTiered(local, cache.NewMemcached(mc, conf.Server.TypeCacheTTL, metrics))
	}

	var (
		signal        usecase.Signal
		signalService *service.SignalService
	)
	if conf.Server.RedisAddr != "" {
		rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)
		if err := database.PingRedis(ctx, rdb); err != nil {
			return err
		}
		defer rdb.Close()

		signalService = service.NewSignalService(rdb)
		signal = signalService
	}

	typeRepo := repository.NewTypeRepository(db)
	entityRepo := repository.NewEntityRepository(db)
	typeUsecase := usecase.NewTypeUsecase(typeRepo, typeCache, signal)
	entityUsecase := usecase.NewEntityUsecase(entityRepo, typeUsecase)

	if signalService != nil {
		go func() {
			err := signalService.Listen(ctx, func(event domain.Event) {
				typeUsecase.Forget(ctx, event.TypeID)
			})
			if err != nil {
				slog.Error("signal listener stopped", slog.String("error", err.Error()))
			}
		}()
	}

	authService := service.NewAuthService(conf.Server.SessionSecret)
	handler := rest.NewHandler(typeUsecase, entityUsecase, authmw.NewAuthMiddleware(authService))

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware(telemetry.ServiceName))
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	handler.RegisterRoutes(e)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server started", slog.String("addr", conf.Server.Addr))
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
}
