// README: Entry point; loads config, wires research collaborators, the scheduler and storage, and serves the schedule API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wayfare/internal/ai"
	"wayfare/internal/config"
	httptransport "wayfare/internal/http"
	"wayfare/internal/http/handlers"
	"wayfare/internal/infra"
	"wayfare/internal/maps"
	"wayfare/internal/modules/estimates"
	"wayfare/internal/modules/fare"
	"wayfare/internal/modules/itinerary"
	"wayfare/internal/modules/plans"
	"wayfare/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage is optional: without Postgres plans are not persisted and fares use the
	// built-in table.
	var planStore service.PlanStore
	var planReader handlers.PlanReader
	fareSvc := fare.NewService(nil)
	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Warn("postgres unavailable, plans will not be stored", zap.Error(err))
	} else {
		defer dbPool.Close()
		plansSvc := plans.NewService(plans.NewStore(dbPool))
		planStore, planReader = plansSvc, plansSvc
		fareSvc = fare.NewService(fare.NewStore(dbPool))
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()
	var quoteCache itinerary.QuoteCache = itinerary.NewMemoryQuoteCache()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, transit quotes cached in memory only", zap.Error(err))
	} else {
		quoteCache = estimates.NewStore(redisClient, cfg.Redis.QuoteTTL, logger.Named("estimates"))
	}

	var gemini *ai.GeminiProvider
	if cfg.AI.GeminiKey != "" {
		gemini, err = ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey,
			ai.WithModel(cfg.AI.Model),
			ai.WithRetry(cfg.AI.MaxRetries, cfg.AI.RetryInterval),
			ai.WithLogger(logger.Named("gemini")))
		if err != nil {
			logger.Fatal("gemini init", zap.Error(err))
		}
		defer gemini.Close()
	}

	var venues service.VenueResearcher
	switch cfg.Research.Venues {
	case config.SourceGemini:
		venues = gemini
	case config.SourcePlaces:
		places, err := maps.NewPlacesService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal("places init", zap.Error(err))
		}
		venues = places
	}

	var transit itinerary.TransitResearcher
	switch cfg.Research.Transit {
	case config.SourceGemini:
		transit = gemini
	case config.SourceDirections:
		routes, err := maps.NewRouteService(cfg.Maps.APIKey, fareSvc)
		if err != nil {
			logger.Fatal("directions init", zap.Error(err))
		}
		transit = routes
	}

	var allocator service.CostAllocator
	if gemini != nil {
		allocator = gemini
	}

	estimator := itinerary.NewEstimator(transit,
		itinerary.WithQuoteCache(quoteCache),
		itinerary.WithEstimateTimeout(cfg.Planner.EstimateTimeout),
		itinerary.WithMaxTransitMinutes(cfg.Planner.MaxTransitMinutes),
		itinerary.WithEstimatorLogger(logger.Named("transit")))
	scheduler := itinerary.NewScheduler(estimator,
		itinerary.WithConfig(cfg.Planner.Scheduler()),
		itinerary.WithLogger(logger.Named("scheduler")))
	planner := service.NewTripPlanner(venues, allocator, scheduler, planStore, logger.Named("planner"))

	server := httptransport.NewServer(cfg.HTTP.Addr, httptransport.RouterDeps{
		Planner:        planner,
		Plans:          planReader,
		Logger:         logger.Named("http"),
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})
	if err := server.Run(ctx); err != nil {
		logger.Fatal("http server", zap.Error(err))
	}
}
