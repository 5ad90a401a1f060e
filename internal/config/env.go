package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Credentials holds the scheduling-service API credential pair. Both values
// are supplied out-of-band via environment variables, never via the config
// file, so they cannot end up in a saved YAML.
type Credentials struct {
	UserName string `env:"USER_NAME,required,notEmpty"`
	APIKey   string `env:"API_KEY,required,notEmpty"`
}

// LoadCredentials loads Credentials from environment variables.
func LoadCredentials() (Credentials, error) {
	var c Credentials
	if err := env.Parse(&c); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials from env: %w", err)
	}
	return c, nil
}
