// config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var ErrMissingSecret = errors.New("config: SESSION_SECRET is required")

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	MongoURI    string
	MongoDBName string
	RabbitURL   string

	StoreURL       string
	IdentityURL    string
	IdentityAPIKey string
	ImageHostURL   string
	ImageHostKey   string
	HTTPTimeout    time.Duration

	SessionSecret string
	SessionTTL    time.Duration
	CacheTTL      time.Duration
	SweepInterval time.Duration

	// SagaLease: una saga started más nueva que esto se considera en curso y
	// la recuperación no la toca.
	SagaLease time.Duration

	// RecoveryToken es la credencial con que se completan sagas pendientes al
	// arrancar. Vacío: la recuperación queda para POST /admin/sagas/recover.
	RecoveryToken string
}

// Load lee las variables de entorno; si existe un .env lo carga antes.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("config: could not load .env file")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		MongoURI:    getEnv("MONGO_URI", "mongodb://host.docker.internal:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "chef_lokal_gateway"),
		RabbitURL:   getEnv("RABBIT_URL", ""),

		StoreURL:       getEnv("STORE_URL", "http://host.docker.internal:3000"),
		IdentityURL:    getEnv("IDENTITY_URL", "https://identitytoolkit.googleapis.com/v1"),
		IdentityAPIKey: getEnv("IDENTITY_API_KEY", ""),
		ImageHostURL:   getEnv("IMAGE_HOST_URL", "https://api.imgbb.com/1/upload"),
		ImageHostKey:   getEnv("IMAGE_HOST_KEY", ""),
		HTTPTimeout:    getDuration("HTTP_TIMEOUT", 10*time.Second),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getDuration("SESSION_TTL", 24*time.Hour),
		CacheTTL:      getDuration("CACHE_TTL", 30*time.Second),
		SweepInterval: getDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		SagaLease:     getDuration("SAGA_LEASE", 2*time.Minute),

		RecoveryToken: getEnv("RECOVERY_TOKEN", ""),
	}

	if cfg.SessionSecret == "" {
		return nil, ErrMissingSecret
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getDuration acepta "30s", "5m" o un número de segundos.
func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Warn().Str("key", key).Str("value", raw).Msg("config: invalid duration, using default")
	return fallback
}
