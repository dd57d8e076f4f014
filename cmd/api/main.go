package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sitelog/internal/config"
	"sitelog/internal/handler"
	"sitelog/internal/httpserver"
	"sitelog/internal/repository"
	"sitelog/internal/service"
	"sitelog/pkg/circuitbreaker"
	"sitelog/pkg/db"
	"sitelog/pkg/logger"
	"sitelog/pkg/mq"
	"sitelog/pkg/otel"
	"sitelog/pkg/outbox"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	shutdownTracing, err := otel.Init(otel.Config{
		ServiceName:    "sitelog-api",
		ServiceVersion: "1.0.0",
		Endpoint:       cfg.OTel.Endpoint,
		Enabled:        cfg.OTel.Enabled,
		SampleRatio:    1.0,
	}, log)
	if err != nil {
		log.Fatal("Failed to init tracing", zap.Error(err))
	}
	defer shutdownTracing()

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// MQ Publisher，只给 outbox dispatcher 使用
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	loc, _ := cfg.Progress.Location()

	// Repositories
	projectRepo := repository.NewProjectRepository(dbConn, log)
	logRepo := repository.NewDailyLogRepository(dbConn, log)
	personnelRepo := repository.NewPersonnelRepository(dbConn)
	sopRepo := repository.NewSOPRepository(dbConn)
	alertRepo := repository.NewAlertRepository(dbConn, log)

	// Services
	projectService := service.NewProjectService(projectRepo, log)
	logService := service.NewDailyLogService(logRepo, projectRepo, log)
	progressService := service.NewProgressService(projectRepo, logRepo, log).
		WithClock(time.Now, loc).
		WithDefaultSteps(cfg.Progress.SCurveSteps)
	personnelService := service.NewPersonnelService(personnelRepo, projectRepo)
	sopService := service.NewSOPService(sopRepo)

	// Outbox
	outboxRepo := outbox.NewRepository(dbConn)
	replayService := outbox.NewReplayService(outboxRepo, publisher)

	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig())
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		log.Warn("Outbox publisher circuit changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	})
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log).
		WithInterval(cfg.Outbox.Interval()).
		WithBatchSize(cfg.Outbox.BatchSize).
		WithMaxRetries(cfg.Outbox.MaxRetries).
		WithBreaker(breaker)

	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()
	go dispatcher.Start(dispatchCtx)

	// Router
	router := httpserver.NewRouter(httpserver.Handlers{
		Projects:  handler.NewProjectHandler(projectService, log),
		Progress:  handler.NewProgressHandler(progressService, alertRepo, log),
		Logs:      handler.NewDailyLogHandler(logService, log),
		Personnel: handler.NewPersonnelHandler(personnelService, log),
		SOPs:      handler.NewSOPHandler(sopService, log),
		Admin:     handler.NewAdminHandler(replayService, log),
	}, log, dbConn, publisher)

	srv := &http.Server{
		Addr:              listenAddr(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting sitelog API", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down sitelog API gracefully...")
	stopDispatch()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("sitelog API shutdown complete")
}

func listenAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
