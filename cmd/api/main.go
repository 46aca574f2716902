package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tradedeskhq/tradedesk-backend/api/routes"
	"github.com/tradedeskhq/tradedesk-backend/internal/activity"
	"github.com/tradedeskhq/tradedesk-backend/internal/dashboard"
	"github.com/tradedeskhq/tradedesk-backend/internal/pdf"
	product "github.com/tradedeskhq/tradedesk-backend/internal/products"
	quotation "github.com/tradedeskhq/tradedesk-backend/internal/quotations"
	user "github.com/tradedeskhq/tradedesk-backend/internal/users"
	"github.com/tradedeskhq/tradedesk-backend/pkg/auth/session"
	"github.com/tradedeskhq/tradedesk-backend/pkg/config"
	"github.com/tradedeskhq/tradedesk-backend/pkg/db"
	"github.com/tradedeskhq/tradedesk-backend/pkg/logger"
	"github.com/tradedeskhq/tradedesk-backend/pkg/metrics"
	"github.com/tradedeskhq/tradedesk-backend/pkg/migrate"
	"github.com/tradedeskhq/tradedesk-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	productRepo := product.NewRepository(dbClient.DB())
	quotationRepo := quotation.NewRepository(dbClient.DB())
	userRepo := user.NewRepository(dbClient.DB())
	activityRepo := activity.NewRepository(dbClient.DB())

	productService, err := product.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	quotationService, err := quotation.NewService(quotationRepo, productRepo, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create quotation service", err)
		os.Exit(1)
	}

	assembler, err := quotation.NewAssembler(quotationRepo, productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create quotation assembler", err)
		os.Exit(1)
	}

	userService, err := user.NewService(userRepo, sessionManager, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	recorder, err := activity.NewRecorder(activityRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create activity recorder", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(productRepo, quotationRepo, productService, recorder)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	pdfMetrics := metrics.NewPDFMetrics(prometheus.DefaultRegisterer)
	chain, err := pdf.NewChain(
		[]pdf.Renderer{
			pdf.NewChromiumRenderer(cfg.PDF.ChromiumPath),
			pdf.NewLocalBrowserRenderer(cfg.PDF.AllowLocalBrowser),
			pdf.NewMarotoRenderer(),
		},
		cfg.PDF.StrategyTimeout,
		logg,
		pdfMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create pdf chain", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Redis:     redisClient,
			Sessions:  sessionManager,
			Users:     userService,
			Products:  productService,
			Quotes:    quotationService,
			Assembler: assembler,
			PDFChain:  chain,
			Recorder:  recorder,
			Dashboard: dashboardService,
		}),
	}

	stop, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
		recorder.Wait()
	}
}
