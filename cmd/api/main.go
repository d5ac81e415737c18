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

	"callscreen/internal/attendant"
	"callscreen/internal/audit"
	"callscreen/internal/auth"
	"callscreen/internal/config"
	"callscreen/internal/httpapi"
	"callscreen/internal/registry"
	"callscreen/internal/reporting"
	"callscreen/internal/screening"
	"callscreen/internal/telephony"
	"callscreen/internal/voicemail"
	"callscreen/pkg/logger"
	"callscreen/pkg/utils"

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

	// Domain services
	callLog := screening.NewPostgresCallLog(db)
	registrySvc := registry.NewService(registry.NewPostgresRepo(db))

	signals := []screening.Signal{
		screening.NewRobocallPrefixSignal(cfg.Screening.RobocallPrefixes),
		screening.NewCallRateSignal(rdb, cfg.Screening.RateWindow, cfg.Screening.RateThreshold),
	}
	if cfg.Screening.CallerNamePattern != "" {
		nameSig, err := screening.NewCallerNameSignal(cfg.Screening.CallerNamePattern)
		if err != nil {
			log.Error("invalid caller name pattern", "err", err)
			os.Exit(1)
		}
		signals = append(signals, nameSig)
	}
	classifier := screening.NewClassifier(registrySvc, callLog, signals...)

	audioStore, err := voicemail.NewFSAudioStore(cfg.Voicemail.MessageFolder)
	if err != nil {
		log.Error("audio store init failed", "err", err)
		os.Exit(1)
	}
	messages := voicemail.NewStore(voicemail.NewPostgresRepo(db), callLog, audioStore)
	// The counter restore races service start against the database becoming
	// reachable, so give it a short retry budget.
	restoreCfg := utils.RetryConfig{Attempts: 5, Base: 500 * time.Millisecond, Max: 5 * time.Second}
	if err := utils.Retry(rootCtx, restoreCfg, nil, messages.Restore); err != nil {
		log.Error("unplayed counter restore failed", "err", err)
		os.Exit(1)
	}

	auditSvc := audit.NewService(audit.NewPostgresRepo(db))
	reports := reporting.NewService(reporting.NewPostgresRepo(db))

	// Telephony boundary + attendant loop
	modem := telephony.NewGatewayModem(cfg.Gateway.BaseURL, nil)
	att := attendant.New(modem, classifier, messages, audioStore, attendant.Options{
		Plans: map[screening.Action]attendant.ClassPlan{
			screening.ActionPermitted: {Rings: cfg.Voicemail.PermittedRings, Greeting: cfg.Voicemail.PermittedGreeting},
			screening.ActionFiltered:  {Rings: cfg.Voicemail.FilteredRings, Greeting: cfg.Voicemail.FilteredGreeting, Record: cfg.Voicemail.RecordFiltered},
			screening.ActionBlocked:   {Rings: cfg.Voicemail.BlockedRings, Greeting: cfg.Voicemail.BlockedGreeting, Record: cfg.Voicemail.RecordBlocked},
		},
	})
	go att.Run(rootCtx)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	handlers := httpapi.Handlers{
		Auth:      authManager,
		Screening: classifier,
		Messages:  messages,
		Registry:  registrySvc,
		Reports:   reports,
		Audit:     auditSvc,
	}
	registerRoutes(r, handlers, att, modem, auth.RequireAccessToken(authManager))

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
}
