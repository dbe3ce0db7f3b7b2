package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	PostgresURL    string        `envconfig:"POSTGRES_URL" required:"true"`
	RedisAddr      string        `envconfig:"REDIS_ADDR" required:"true"`
	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8080"`
	APIKey         string        `envconfig:"API_KEY" required:"true"`
	DBLockTimeout  time.Duration `envconfig:"DB_LOCK_TIMEOUT" default:"5s"`
	BookingRetries uint64        `envconfig:"BOOKING_RETRIES" default:"3"`
	JaegerEndpoint string        `envconfig:"JAEGER_ENDPOINT"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`

	// RebuildReadModels replays the data lake into read models on startup.
	RebuildReadModels bool `envconfig:"REBUILD_READ_MODELS" default:"false"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("could not load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("could not process env config: %w", err)
	}

	return cfg, nil
}

func (c Config) LogrusLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
