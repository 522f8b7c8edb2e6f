package config

import (
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Server struct {
		Port string `env:"PORT" envDefault:"8001"`
	}

	// Mongo configuration
	Mongo struct {
		URI      string `env:"MONGO_URL" envDefault:"mongodb://localhost:27017"`
		Database string `env:"MONGO_DB" envDefault:"location_intelligence"`
	}

	// Google configuration covers the Geocoding, Places, and Air Quality APIs
	Google struct {
		APIKey string `env:"GOOGLE_API_KEY"`
	}

	// External call timeouts (in seconds)
	Timeouts struct {
		Geocoding  int `env:"GEOCODING_TIMEOUT" envDefault:"10"`
		Places     int `env:"PLACES_TIMEOUT" envDefault:"10"`
		AirQuality int `env:"AIR_QUALITY_TIMEOUT" envDefault:"10"`
		Census     int `env:"CENSUS_TIMEOUT" envDefault:"15"`
		WorldPop   int `env:"WORLDPOP_TIMEOUT" envDefault:"30"`
	}
}

func LoadConfig() (*Config, error) {
	// A missing .env file is fine; environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
