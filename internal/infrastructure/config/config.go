package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	RateLimitPerMin int `env:"RATE_LIMIT_PER_MIN, default=120"`
	ProfileWorkers  int `env:"PROFILE_WORKERS,    default=4"`

	Campus CampusConfig
	Mongo  MongoConfig
	Redis  RedisConfig
}

// CampusConfig holds the geofence and cooldown parameters. The defaults are
// the UPSRJ campus point and the radii the mobile client enforces.
type CampusConfig struct {
	TargetLat      float64       `env:"CAMPUS_LAT,        default=20.552893815932485"`
	TargetLng      float64       `env:"CAMPUS_LNG,        default=-100.41876323329602"`
	AcceptRadiusKm float64       `env:"ACCEPT_RADIUS_KM,  default=0.25"`
	RejectRadiusKm float64       `env:"REJECT_RADIUS_KM,  default=0.5"`
	Cooldown       time.Duration `env:"COOLDOWN_INTERVAL, default=60s"`
	// Timezone is the zone in which calendar days are interpreted for the
	// once-per-day rule.
	Timezone string `env:"CAMPUS_TZ, default=America/Mexico_City"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=checkinupsrj"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// Location resolves the campus timezone. Falls back to the server's local
// zone when the name does not parse.
func (c CampusConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
