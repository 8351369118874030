package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the configuration for the current environment.
// Production requires real secrets; development and test fall back to
// defaults so a local checkout runs without setup.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		errors = append(errors, fmt.Sprintf("unsupported DB_DRIVER %q (want postgres or sqlite)", cfg.DBDriver))
	}

	if cfg.JWTSecret == "" {
		if IsProduction() {
			errors = append(errors, "JWT_SECRET is required in production")
		} else {
			cfg.JWTSecret = "dev-insecure-secret"
		}
	}

	if IsProduction() {
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			errors = append(errors, "DB_PASSWORD is required in production")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
