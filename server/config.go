package server

import "github.com/ilyakaznacheev/cleanenv"

// Config is the server configuration, read from the environment.
type Config struct {
	Addr          string `env:"FOLIO_ADDR" env-default:":8080"`
	DatabaseURL   string `env:"FOLIO_DATABASE_URL" env-default:"postgres://localhost:5432/folio?sslmode=disable"`
	AdminName     string `env:"FOLIO_ADMIN_NAME" env-default:"Admin"`
	AdminEmail    string `env:"FOLIO_ADMIN_EMAIL" env-default:"admin@localhost"`
	AdminPassword string `env:"FOLIO_ADMIN_PASSWORD" env-default:""`
	Metrics       bool   `env:"FOLIO_METRICS" env-default:"true"`
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
