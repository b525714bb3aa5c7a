package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"bookminton/internal/availability"
	"bookminton/internal/bookings/events"
	bookingshandler "bookminton/internal/bookings/handler"
	"bookminton/internal/bookings/refresher"
	"bookminton/internal/bookings/repository"
	"bookminton/internal/bookings/service"
	"bookminton/internal/bookings/validator"
	"bookminton/internal/catalog"
	healthhandler "bookminton/internal/health/handler"
	venueshandler "bookminton/internal/venues/handler"
	"bookminton/pkg/app"
	"bookminton/pkg/clock"
	"bookminton/pkg/config"
	"bookminton/pkg/contracts"
	"bookminton/pkg/kafka"
	kafka_config "bookminton/pkg/kafka/config"
	kafka_middleware "bookminton/pkg/kafka/middleware"
	"bookminton/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const ServiceName = "bookminton"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Bookminton service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.System(cfg.Location)

	cat, err := catalog.Load(ctx, cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to load catalog", "error", err)
	}

	publisher := initPublisher(cfg.Log)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	svc := wire(cfg, clk, cat, publisher)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.app.Run(gctx) })
	g.Go(func() error { return svc.upcoming.Start(gctx) })

	if err := g.Wait(); err != nil {
		cfg.Log.Fatal("Service stopped with error", "error", err)
	}
	cfg.Log.Info("Bookminton service stopped")
}

type bookminton struct {
	app      *app.Application
	upcoming *refresher.Refresher
}

func wire(cfg *config.Config, clk clock.Clock, cat *catalog.Catalog, publisher events.Publisher) *bookminton {
	bookingRepo := repository.NewMemoryBookingRepository()
	engine := availability.NewEngine(cat, bookingRepo, clk, availability.RulesFromConfig(cfg))
	bookingService := service.NewBookingService(
		bookingRepo,
		cat,
		engine,
		validator.NewBookingValidator(cfg.Log),
		publisher,
		clk,
		cfg,
	)
	upcoming := refresher.New(bookingService, clk, cfg.RefreshInterval, cfg.Log.Component("refresher"))

	serverApp := app.NewApplication(
		cfg,
		clk,
		healthhandler.NewHealthHandler(cat, upcoming, clk, 3*cfg.RefreshInterval, cfg.Log),
		contracts.Handlers{
			venueshandler.NewVenueHandler(cat, engine, cfg.Log),
			bookingshandler.NewBookingHandler(bookingService, upcoming, cfg.Log),
		},
	)
	return &bookminton{app: serverApp, upcoming: upcoming}
}

// initPublisher returns a Kafka-backed publisher when brokers are configured and a
// no-op one otherwise.
func initPublisher(log *logger.Logger) events.Publisher {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		log.Fatal("Invalid Kafka configuration", "error", err)
	}
	if !kafkaCfg.Enabled() {
		log.Info("Kafka disabled, booking events will not be published")
		return events.NewNoopPublisher()
	}

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.BookingsTopic, log)
	if err != nil {
		log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(log.Component("kafka")))
	}

	log.Info("Kafka publisher initialized", "brokers", kafkaCfg.Brokers, "topic", kafkaCfg.BookingsTopic)
	return events.NewKafkaPublisher(producer, kafkaCfg.PublishTimeout)
}
