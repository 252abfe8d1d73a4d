package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	AppPort       string `env:"APP_PORT" envDefault:"8080"`
	DBDSN         string `env:"DB_DSN,required"`
	JWTSecret     string `env:"JWT_SECRET,required"`
	JWTExpiresMin int    `env:"JWT_EXPIRES_MIN" envDefault:"10080"`

	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	FormConfigTTL time.Duration `env:"FORM_CONFIG_TTL" envDefault:"10m"`

	UploadDir string `env:"UPLOAD_DIR" envDefault:"./uploads"`

	SMSBaseURL string `env:"SMS_BASE_URL"`
	SMSAPIKey  string `env:"SMS_API_KEY"`
	SMSSender  string `env:"SMS_SENDER" envDefault:"10004321"`

	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://127.0.0.1:3000, http://localhost:3000"`

	// Bootstrap admin, created on first start when no admin exists.
	AdminMobile   string `env:"ADMIN_MOBILE"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
