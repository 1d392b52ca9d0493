// Package config holds all environment-driven configuration.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See the individual domain config files
// for available variables:
//   - database.go: control database and Redis configuration
//   - http.go: HTTP server configuration
//   - services.go: service mode, worker and sweeper configuration
//   - subscription.go: upstream webhook subscription configuration
package config

import (
	"os"
	"strings"
)

// AppConfig composes domain-specific configuration from separate files.
type AppConfig struct {
	// IsDev relaxes guardrails for local development. Set DEV=true.
	IsDev bool `env:"DEV" envDefault:"false"`

	// SecretsEncryptionKey encrypts destination credentials at rest.
	// Required outside development.
	SecretsEncryptionKey string `env:"SECRETS_ENCRYPTION_KEY"`

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	HTTP HTTPConfig

	// Services is a comma-delimited list of enabled services.
	// Valid values: http, worker, sweeper
	Services string `env:"SERVICES" envDefault:"http"`

	Subscription SubscriptionConfig
	Directory    DirectoryConfig
	Worker       WorkerConfig
	Sweeper      SweeperConfig
}

// Sanitize applies guardrails to values loaded from env.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Worker.Sanitize()
	c.Sweeper.Sanitize()
	c.Directory.Sanitize()
	c.detectDevMode()
}

func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		appEnv := strings.ToLower(os.Getenv("APP_ENV"))
		c.IsDev = appEnv == "development" || appEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsWorkerEnabled returns true if the delivery worker service is enabled.
func (c *AppConfig) IsWorkerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeWorker]
}

// IsSweeperEnabled returns true if the queue sweeper service is enabled.
func (c *AppConfig) IsSweeperEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeSweeper]
}
