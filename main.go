package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dynamictickets/config"
	"dynamictickets/db"
	"dynamictickets/message"
	"dynamictickets/service"
	observability "dynamictickets/trace"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Could not load config")
	}

	log.Init(cfg.LogrusLevel())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		logrus.WithError(err).Fatal("Service stopped with error")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	traceProvider, err := observability.ConfigureTraceProvider(cfg.JaegerEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.Shutdown(shutdownCtx, traceProvider); err != nil {
			logrus.WithError(err).Warn("Could not flush traces")
		}
	}()

	conn, err := db.NewDBConn(cfg.PostgresURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.MigrateSchema(ctx); err != nil {
		return err
	}

	redisClient := message.NewRedisClient(cfg.RedisAddr)
	defer redisClient.Close()

	svc, err := service.New(cfg, &conn, redisClient)
	if err != nil {
		return err
	}

	logrus.WithField("addr", cfg.HTTPAddr).Info("Starting service")

	return svc.Run(ctx)
}
