package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/psiconecta/booking-api/internal/config"
	"github.com/psiconecta/booking-api/internal/handler"
	availabilityHandler "github.com/psiconecta/booking-api/internal/handler/availability"
	bookingHandler "github.com/psiconecta/booking-api/internal/handler/booking"
	therapistHandler "github.com/psiconecta/booking-api/internal/handler/therapist"
	"github.com/psiconecta/booking-api/internal/middleware"
	"github.com/psiconecta/booking-api/internal/repository/postgres"
	"github.com/psiconecta/booking-api/internal/router"
	availabilityService "github.com/psiconecta/booking-api/internal/service/availability"
	bookingService "github.com/psiconecta/booking-api/internal/service/booking"
	therapistService "github.com/psiconecta/booking-api/internal/service/therapist"
	"github.com/psiconecta/booking-api/pkg/logger"
	"github.com/psiconecta/booking-api/pkg/metrics"
	"github.com/psiconecta/booking-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	appLogger := logger.NewLogger(nil)

	// Repositories
	slotRepo := postgres.NewSlotRepository(db)
	therapistRepo := postgres.NewTherapistRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	m := metrics.NewMetrics("booking", "api")

	// Services
	availabilitySvc := availabilityService.NewService(slotRepo, therapistRepo, appLogger, m)
	bookingSvc := bookingService.NewService(slotRepo, outboxRepo, validator.New(), appLogger, m)
	therapistSvc := therapistService.NewService(therapistRepo, appLogger)

	// Handlers
	h := handler.NewHandler()
	availabilityH := availabilityHandler.NewHandler(availabilitySvc)
	bookingH := bookingHandler.NewHandler(bookingSvc)
	therapistH := therapistHandler.NewHandler(therapistSvc)

	r := router.NewRouter(
		availabilityH,
		bookingH,
		therapistH,
		h,
		router.Config{
			RateLimit:     rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:     cfg.RateLimit.Burst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: cfg.Monitoring.MetricsPrefix,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server exited")
}
