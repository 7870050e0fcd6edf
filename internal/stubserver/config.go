package stubserver

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// Config controls the stub backend. Everything comes from the
// environment so `go run ./cmd/stubserver` works with no setup.
type Config struct {
	Addr          string `env:"STUB_ADDR, default=:8000"`
	DBPath        string `env:"STUB_DB, default=invstub.db"`
	AdminUser     string `env:"STUB_ADMIN_USER, default=admin"`
	AdminPassword string `env:"STUB_ADMIN_PASSWORD, default=admin123"`
	Debug         bool   `env:"STUB_DEBUG, default=false"`
}

// LoadConfig reads the stub configuration from environment variables.
func LoadConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
