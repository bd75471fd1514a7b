package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DevFallbackSecret is the signing secret used when none is configured in a
// non-production run. Production runs refuse to start with it.
const DevFallbackSecret = "kasku-dev-secret"

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	WhatsAppSubject     string
	JWTSecret           string
	JWTTTL              time.Duration
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	FundCacheTTL        time.Duration
	SchedulerInterval   time.Duration
	ProofMaxSizeMB      int
}

// Production reports whether the service runs with production hardening.
func (c Config) Production() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("KASKU")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "KasKu API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("jwt.ttl", "168h")
	v.SetDefault("whatsapp.subject", "kasku.whatsapp.outbound")
	v.SetDefault("cloudinary.folder", "kasku/proofs")
	v.SetDefault("fund.cache_ttl", "5m")
	v.SetDefault("scheduler.interval", "1h")
	v.SetDefault("proof_max_size_mb", 5)

	ttl, err := time.ParseDuration(v.GetString("jwt.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("fund.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid fund cache ttl: %w", err)
	}

	interval, err := time.ParseDuration(v.GetString("scheduler.interval"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid scheduler interval: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		WhatsAppSubject:     v.GetString("whatsapp.subject"),
		JWTSecret:           v.GetString("jwt.secret"),
		JWTTTL:              ttl,
		CloudinaryCloudName: v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:    v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret: v.GetString("cloudinary.api_secret"),
		CloudinaryFolder:    v.GetString("cloudinary.folder"),
		FundCacheTTL:        cacheTTL,
		SchedulerInterval:   interval,
		ProofMaxSizeMB:      v.GetInt("proof_max_size_mb"),
	}

	if cfg.JWTSecret == "" {
		if cfg.Production() {
			return Config{}, fmt.Errorf("jwt secret must be provided in production")
		}
		cfg.JWTSecret = DevFallbackSecret
	}

	if cfg.Production() && cfg.JWTSecret == DevFallbackSecret {
		return Config{}, fmt.Errorf("refusing to start: production run with development jwt secret")
	}

	if cfg.ProofMaxSizeMB <= 0 {
		cfg.ProofMaxSizeMB = 5
	}

	return cfg, nil
}
