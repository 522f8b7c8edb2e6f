package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sitewise/server/config"
	"sitewise/server/internal/analysis"
	"sitewise/server/internal/api"
	"sitewise/server/internal/database"
	"sitewise/server/internal/demographics"
	"sitewise/server/internal/geocoding"
	"sitewise/server/internal/places"
	"sitewise/server/internal/rental"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if cfg.Google.APIKey == "" {
		logger.Warn("GOOGLE_API_KEY is not set; geocoding, places, and air quality lookups will fall back")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := database.NewDatabase(ctx, cfg.Mongo.URI, cfg.Mongo.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			logger.WithError(err).Error("Failed to disconnect from MongoDB")
		}
	}()

	geocoder := geocoding.NewGeocoder(logger, cfg.Google.APIKey,
		time.Duration(cfg.Timeouts.Geocoding)*time.Second)
	finder := places.NewFinder(logger, cfg.Google.APIKey,
		time.Duration(cfg.Timeouts.Places)*time.Second)

	aggregator := demographics.NewAggregator(logger,
		demographics.NewCensusClient(logger, cfg.Google.APIKey,
			time.Duration(cfg.Timeouts.Census)*time.Second),
		demographics.NewWorldPopClient(logger,
			time.Duration(cfg.Timeouts.WorldPop)*time.Second),
		demographics.NewAirQualityClient(logger, cfg.Google.APIKey,
			time.Duration(cfg.Timeouts.AirQuality)*time.Second),
	)

	analyzer := analysis.NewAnalyzer(logger, geocoder, finder, aggregator, rental.NewEstimator(logger))
	handler := api.NewHandler(db, analyzer, logger)

	router := gin.Default()
	router.Use(cors.Default())
	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
