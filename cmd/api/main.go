package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"procurement-platform/internal/audit"
	"procurement-platform/internal/auth"
	"procurement-platform/internal/classify"
	"procurement-platform/internal/config"
	"procurement-platform/internal/entity"
	"procurement-platform/internal/httpapi"
	"procurement-platform/internal/notify"
	"procurement-platform/internal/reporting"
	"procurement-platform/internal/scoring"
	"procurement-platform/internal/workflow"
	"procurement-platform/pkg/logger"
	"procurement-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	entities := entity.NewPostgresRepo(db)
	recorder := audit.NewRecorder(audit.NewPostgresRepo(db))
	configs := scoring.NewPostgresStore(db)

	deps := workflow.Deps{
		ScoringConfigs: configs,
		RiskPolicy:     scoring.NewRiskPolicy(cfg.Governance.HighRiskCountries),
		Thresholds:     classify.DefaultThresholds(),
		Rules:          classify.DefaultIndicatorRules(),
		Predicate:      classify.DefaultPredicate,
	}
	engine := workflow.NewEngine(workflow.NewPostgresStore(db), notify.NewRedisPublisher(rdb), workflow.Tables(deps), log)

	var advisor classify.Advisor
	if cfg.Advisor.BaseURL != "" {
		advisor = classify.NewHTTPAdvisor(cfg.Advisor.BaseURL, cfg.Advisor.APIKey, cfg.Advisor.Timeout)
	}

	h := httpapi.Handlers{
		Auth:     authManager,
		Engine:   engine,
		Entities: entities,
		Audit:    recorder,
		Configs:  configs,
		Evals:    scoring.NewEvalCache(rdb, 10*time.Minute, log),
		Advisor:  advisor,
		Reports:  reporting.NewService(reporting.NewPostgresSource(db)),
		Locks:    httpapi.NewEntityLocker(rdb, 10*time.Second, log),

		Thresholds: deps.Thresholds,
		Rules:      deps.Rules,
		Predicate:  deps.Predicate,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireAccessToken(authManager), db)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
