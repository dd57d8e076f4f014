package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	mqcontracts "sitelog/contracts/mq"
	"sitelog/internal/config"
	"sitelog/internal/mqhandler"
	"sitelog/internal/repository"
	"sitelog/internal/service"
	"sitelog/pkg/db"
	"sitelog/pkg/logger"
	"sitelog/pkg/mq"
	"sitelog/pkg/otel"
	"sitelog/pkg/redis"
	"sitelog/pkg/util"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	shutdownTracing, err := otel.Init(otel.Config{
		ServiceName:    "sitelog-worker",
		ServiceVersion: "1.0.0",
		Endpoint:       cfg.OTel.Endpoint,
		Enabled:        cfg.OTel.Enabled,
		SampleRatio:    1.0,
	}, log)
	if err != nil {
		log.Fatal("Failed to init tracing", zap.Error(err))
	}
	defer shutdownTracing()

	log.Info("Starting sitelog worker...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("redis_addr", cfg.Redis.Addr),
		zap.Float64("alert_threshold", cfg.Progress.AlertThreshold),
	)

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	rdb := redis.NewRedisClient(cfg.Redis, log)
	defer rdb.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	loc, _ := cfg.Progress.Location()

	projectRepo := repository.NewProjectRepository(dbConn, log)
	logRepo := repository.NewDailyLogRepository(dbConn, log)
	alertRepo := repository.NewAlertRepository(dbConn, log)

	progressService := service.NewProgressService(projectRepo, logRepo, log).WithClock(time.Now, loc)
	deduper := util.NewDeduper(rdb, cfg.Worker.DedupTTL(), log)
	alertService := service.NewAlertService(progressService, deduper, publisher, alertRepo, cfg.Progress.AlertThreshold, log)

	retries := util.NewRetryCounter(rdb, "sitelog", 24*time.Hour)

	progressHandler := mqhandler.NewProgressEventHandler(alertService, log)
	alertHandler := mqhandler.NewProgressAlertHandler(alertService, log)

	bindings := make(map[string]mq.MessageHandler, len(mqcontracts.ProgressAffectingKeys)+1)
	for _, key := range mqcontracts.ProgressAffectingKeys {
		bindings[key] = progressHandler.Handle
	}
	bindings[mqcontracts.RoutingKeyProgressAlert] = alertHandler.Handle

	consumers := make([]*mq.Consumer, 0, len(bindings))
	for routingKey, handle := range bindings {
		queue := "sitelog." + routingKey + ".q"
		log.Info("Initializing MQ consumer...",
			zap.String("queue", queue),
			zap.String("routing_key", routingKey),
		)

		consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, queue, routingKey, log)
		if err != nil {
			log.Fatal("Failed to init consumer", zap.String("routing_key", routingKey), zap.Error(err))
		}
		defer consumer.Close()

		consumer.SetHandler(handle)
		consumer.SetRetryPolicy(util.IsRetryableError, retries, cfg.Worker.MaxRetries)
		consumers = append(consumers, consumer)

		go func(c *mq.Consumer, key string) {
			if err := c.StartConsuming(); err != nil {
				log.Fatal("Consumer failed", zap.String("routing_key", key), zap.Error(err))
			}
		}(consumer, routingKey)
	}

	// 定时巡检，发现没有事件触发的逾期
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if interval := cfg.Worker.SweepInterval(); interval > 0 {
		sweeper := service.NewProgressSweeper(projectRepo, alertService, log)
		log.Info("Starting progress sweeper", zap.Duration("interval", interval))
		go sweeper.Run(sweepCtx, interval)
	}

	log.Info("sitelog worker is fully initialized and running", zap.Int("consumers", len(consumers)))

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down sitelog worker gracefully...")
	stopSweep()
	for _, c := range consumers {
		c.Stop()
	}
	log.Info("sitelog worker shutdown complete")
}
