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

	"staycal/internal/app/commands"
	availabilityapp "staycal/internal/app/handlers/availability"
	bookingapp "staycal/internal/app/handlers/booking"
	calendarapp "staycal/internal/app/handlers/calendar"
	pricingapp "staycal/internal/app/handlers/pricing"
	rulesapp "staycal/internal/app/handlers/rules"
	appoutbox "staycal/internal/app/outbox"
	"staycal/internal/app/queries"
	"staycal/internal/app/schedule"
	"staycal/internal/domain/booking"
	"staycal/internal/domain/calendar"
	"staycal/internal/domain/rules"
	"staycal/internal/infra/broker/kafka"
	"staycal/internal/infra/config"
	mongostore "staycal/internal/infra/db/mongo"
	ginserver "staycal/internal/infra/http/gin"
	"staycal/internal/infra/obs"
	infraoutbox "staycal/internal/infra/outbox"
	"staycal/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	stores, ready, err := buildStores(cfg)
	if err != nil {
		logger.Error("storage init failed", "error", err, "mode", cfg.StorageMode)
		os.Exit(1)
	}
	logger.Info("storage initialized", "mode", cfg.StorageMode)

	app := buildApplication(cfg, stores, logger)
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: ready}, app.handlers)

	go func() {
		if err := app.scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler stopped", "error", err)
		}
	}()

	if app.publisher != nil {
		go func() {
			if err := app.publisher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox publisher stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		if app.producer != nil {
			if err := app.producer.Close(); err != nil {
				logger.Error("kafka producer close failed", "error", err)
			}
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

// stores groups the repository interfaces so memory and Mongo modes wire
// identically from here on.
type stores struct {
	configs   rules.ConfigRepository
	seasons   rules.SeasonRepository
	overrides rules.OverrideRepository
	coupons   rules.CouponRepository
	calendars calendar.Repository
	bookings  booking.Repository
	outbox    appoutbox.Outbox
	source    infraoutbox.Source
}

func buildStores(cfg config.Config) (stores, func() error, error) {
	if cfg.StorageMode == "mongo" {
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return stores{}, nil, err
		}
		outboxStore := mongostore.NewOutboxStore(client.DB)
		s := stores{
			configs:   mongostore.NewConfigRepository(client.DB),
			seasons:   mongostore.NewSeasonRepository(client.DB),
			overrides: mongostore.NewOverrideRepository(client.DB),
			coupons:   mongostore.NewCouponRepository(client.DB),
			calendars: mongostore.NewCalendarRepository(client.DB),
			bookings:  mongostore.NewBookingRepository(client.DB),
			outbox:    outboxStore,
			source:    outboxStore,
		}
		ready := func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(ctx)
		}
		return s, ready, nil
	}

	ruleStore := memory.NewRuleStore()
	outboxStore := memory.NewOutboxStore()
	s := stores{
		configs:   ruleStore,
		seasons:   ruleStore,
		overrides: ruleStore,
		coupons:   ruleStore,
		calendars: memory.NewCalendarStore(),
		bookings:  memory.NewBookingStore(),
		outbox:    outboxStore,
		source:    outboxStore,
	}
	return s, func() error { return nil }, nil
}

type application struct {
	handlers  ginserver.Handlers
	scheduler *schedule.Worker
	publisher *infraoutbox.Worker
	producer  *kafka.Producer
}

func buildApplication(cfg config.Config, s stores, logger *slog.Logger) application {
	generator := calendar.NewGenerator()
	encoder := appoutbox.JSONEventEncoder{}

	availabilityHandler := &availabilityapp.CheckAvailabilityHandler{Calendars: s.calendars}
	pricingHandler := &pricingapp.GetQuoteHandler{
		Configs:      s.configs,
		Coupons:      s.coupons,
		Calendars:    s.calendars,
		Availability: availabilityHandler,
	}
	regenerateHandler := &calendarapp.RegenerateMonthHandler{
		Configs:   s.configs,
		Seasons:   s.seasons,
		Overrides: s.overrides,
		Bookings:  s.bookings,
		Calendars: s.calendars,
		Generator: generator,
		Outbox:    s.outbox,
		Encoder:   encoder,
	}
	patchDayHandler := &calendarapp.PatchDayHandler{
		Configs:   s.configs,
		Seasons:   s.seasons,
		Overrides: s.overrides,
		Calendars: s.calendars,
		Generator: generator,
		Outbox:    s.outbox,
		Encoder:   encoder,
		Logger:    logger,
	}
	clearDayHandler := &calendarapp.ClearDayHandler{
		Configs:   s.configs,
		Seasons:   s.seasons,
		Overrides: s.overrides,
		Calendars: s.calendars,
		Generator: generator,
		Outbox:    s.outbox,
		Encoder:   encoder,
		Logger:    logger,
	}
	getMonthHandler := &calendarapp.GetMonthHandler{Calendars: s.calendars}
	confirmHandler := &bookingapp.ConfirmBookingHandler{
		Pricing:   pricingHandler,
		Bookings:  s.bookings,
		Calendars: s.calendars,
		Overrides: s.overrides,
		Outbox:    s.outbox,
		Encoder:   encoder,
	}
	releaseHandler := &bookingapp.ReleaseBookingHandler{
		Bookings:  s.bookings,
		Calendars: s.calendars,
		Overrides: s.overrides,
		Outbox:    s.outbox,
		Encoder:   encoder,
	}
	expireHandler := &bookingapp.ExpireHoldsHandler{
		Bookings:  s.bookings,
		Calendars: s.calendars,
		Overrides: s.overrides,
		Outbox:    s.outbox,
		Encoder:   encoder,
		Logger:    logger,
	}
	saveConfigHandler := &rulesapp.SaveConfigHandler{
		Configs:     s.configs,
		Regenerator: regenerateHandler,
		Logger:      logger,
	}
	saveSeasonHandler := &rulesapp.SaveSeasonHandler{
		Seasons:     s.seasons,
		Regenerator: regenerateHandler,
		Logger:      logger,
	}
	disableSeasonHandler := &rulesapp.DisableSeasonHandler{
		Seasons:     s.seasons,
		Regenerator: regenerateHandler,
		Logger:      logger,
		Horizon:     cfg.HorizonMonths,
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, calendarapp.RegenerateMonthCommand{}.Key(), regenerateHandler)
	commands.RegisterHandler(commandBus, calendarapp.PatchDayCommand{}.Key(), patchDayHandler)
	commands.RegisterHandler(commandBus, calendarapp.ClearDayCommand{}.Key(), clearDayHandler)
	commands.RegisterHandler(commandBus, bookingapp.ConfirmBookingCommand{}.Key(), confirmHandler)
	commands.RegisterHandler(commandBus, bookingapp.ReleaseBookingCommand{}.Key(), releaseHandler)
	commands.RegisterHandler(commandBus, bookingapp.ExpireHoldsCommand{}.Key(), expireHandler)
	commands.RegisterHandler(commandBus, rulesapp.SaveConfigCommand{}.Key(), saveConfigHandler)
	commands.RegisterHandler(commandBus, rulesapp.SaveSeasonCommand{}.Key(), saveSeasonHandler)
	commands.RegisterHandler(commandBus, rulesapp.DisableSeasonCommand{}.Key(), disableSeasonHandler)

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.CheckAvailabilityQuery{}.Key(), availabilityHandler)
	queries.RegisterHandler(queryBus, pricingapp.GetQuoteQuery{}.Key(), pricingHandler)
	queries.RegisterHandler(queryBus, calendarapp.GetMonthQuery{}.Key(), getMonthHandler)

	scheduler := &schedule.Worker{
		Configs:      s.configs,
		Regenerate:   regenerateHandler,
		ExpireHolds:  expireHandler,
		Logger:       logger,
		Interval:     cfg.RegenInterval,
		HoldInterval: cfg.HoldSweepInterval,
		Horizon:      cfg.HorizonMonths,
	}

	app := application{
		handlers: ginserver.Handlers{
			Availability: ginserver.AvailabilityHandler{Queries: queryBus},
			Pricing:      ginserver.PricingHandler{Queries: queryBus},
			Calendar:     ginserver.CalendarHandler{Queries: queryBus},
			Booking:      ginserver.BookingHandler{Commands: commandBus, HoldTTL: cfg.HoldTTL},
			Admin: ginserver.AdminHandler{
				Commands:      commandBus,
				Configs:       s.configs,
				Seasons:       s.seasons,
				HorizonMonths: cfg.HorizonMonths,
			},
		},
		scheduler: scheduler,
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Error("kafka producer init failed, events stay queued", "error", err)
		} else {
			app.producer = producer
			app.publisher = &infraoutbox.Worker{
				Store:       s.source,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
			}
		}
	}
	return app
}
