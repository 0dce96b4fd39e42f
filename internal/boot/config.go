package boot

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env     string `env:"ENV,default=dev"`
	DataDir string `env:"DATA_DIR,default=./data"`
	Server  struct {
		Port        string `env:"PORT,default=8080"`
		MetricsPort string `env:"METRICS_PORT,default=8081"`
	}
	Admin struct {
		PasswordHash  string `env:"ADMIN_PASSWORD_HASH"`
		SessionSecret string `env:"SESSION_SECRET,default=dev-secret-change-me"`
	}
	Vestaboard struct {
		APIKey         string `env:"VESTABOARD_API_KEY"`
		APISecret      string `env:"VESTABOARD_API_SECRET"`
		SubscriptionID string `env:"VESTABOARD_SUBSCRIPTION_ID"`
	}
	SendGrid struct {
		APIKey    string `env:"SENDGRID_API_KEY"`
		FromEmail string `env:"SENDGRID_FROM_EMAIL,default=board@tillage.place"`
	}
}

func Load() (*Config, error) {
	config := &Config{}
	if err := envconfig.Process(context.Background(), config); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "dev"
}
