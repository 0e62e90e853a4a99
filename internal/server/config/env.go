package config

import "github.com/kelseyhightower/envconfig"

// EnvPrefix is prepended to every variable name, e.g. VOLUNTEERHUB_SECRET_KEY.
const EnvPrefix = "VOLUNTEERHUB"

// parseEnv overlays values from VOLUNTEERHUB_* environment variables.
// Variables that are not set leave the current value untouched.
// Malformed values (e.g. a non-numeric port) panic, like a broken JSON file.
func parseEnv(config *Config) {
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		panic(err)
	}
}
