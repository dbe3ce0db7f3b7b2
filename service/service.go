package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"dynamictickets/booking"
	"dynamictickets/clock"
	"dynamictickets/config"
	"dynamictickets/db"
	ticketsHttp "dynamictickets/http"
	"dynamictickets/message"
	"dynamictickets/message/event"
	"dynamictickets/message/outbox"
	"dynamictickets/metrics"
	"dynamictickets/migrations"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	watermillMessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	watermillRouter *watermillMessage.Router
	echoRouter      *echo.Echo
	httpAddr        string

	rebuildReadModels func(ctx context.Context) error
}

func New(
	cfg config.Config,
	conn *db.DB,
	redisClient *redis.Client,
) (Service, error) {
	watermillLogger := log.NewWatermill(log.FromContext(context.Background()))

	redisPublisher := message.NewRedisPublisher(redisClient, watermillLogger)

	eventRepo := db.NewEventRepository(conn)
	bookingRepo := db.NewBookingRepository(conn)
	dataLake := db.NewDataLakeRepository(conn)
	eventSales := db.NewEventSalesReadModel(conn)

	coordinator := booking.NewCoordinator(
		db.NewInventoryStore(conn, cfg.DBLockTimeout),
		booking.WithClock(clock.NewSystem()),
		booking.WithMetrics(metrics.NewBookingMetrics(prometheus.DefaultRegisterer)),
		booking.WithRetries(cfg.BookingRetries, booking.DefaultInitialInterval, booking.DefaultMaxInterval),
	)

	pgSubscriber, err := outbox.SubscribeForPGMessages(conn.Conn, watermillLogger)
	if err != nil {
		return Service{}, err
	}

	watermillRouter, err := message.NewWatermillRouter(
		pgSubscriber,
		redisClient,
		redisPublisher,
		event.NewProcessorConfig(redisClient, watermillLogger),
		event.NewHandler(eventSales),
		dataLake,
		prometheus.DefaultRegisterer,
		watermillLogger,
	)
	if err != nil {
		return Service{}, err
	}

	echoRouter := ticketsHttp.NewHttpRouter(ticketsHttp.Dependencies{
		Bookings:    coordinator,
		BookingRepo: bookingRepo,
		EventRepo:   eventRepo,
		EventSales:  eventSales,
		APIKey:      cfg.APIKey,
	})

	s := Service{
		watermillRouter: watermillRouter,
		echoRouter:      echoRouter,
		httpAddr:        cfg.HTTPAddr,
	}
	if cfg.RebuildReadModels {
		s.rebuildReadModels = func(ctx context.Context) error {
			return migrations.RebuildEventSales(ctx, dataLake, eventSales)
		}
	}

	return s, nil
}

func (s Service) Run(
	ctx context.Context,
) error {
	errgrp, ctx := errgroup.WithContext(ctx)

	errgrp.Go(func() error {
		return s.watermillRouter.Run(ctx)
	})

	if s.rebuildReadModels != nil {
		errgrp.Go(func() error {
			<-s.watermillRouter.Running()

			if err := s.rebuildReadModels(ctx); err != nil {
				return fmt.Errorf("could not rebuild read models: %w", err)
			}
			return nil
		})
	}

	errgrp.Go(func() error {
		// we don't want to start HTTP server before Watermill router (so service won't be healthy before it's ready)
		<-s.watermillRouter.Running()

		err := s.echoRouter.Start(s.httpAddr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	errgrp.Go(func() error {
		<-ctx.Done()
		return s.echoRouter.Shutdown(context.Background())
	})

	return errgrp.Wait()
}
