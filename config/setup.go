package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Load builds a Config from field defaults, the environment and an optional
// YAML file, in that order of increasing precedence. An empty path skips
// the file.
//
//	cfg, err := config.Load("/etc/checkout/calltrace.yaml")
//
// Fields the file does not mention keep the value from the environment or
// their default.
func Load(path string) (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrEnvironment, err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrReadFile, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w %s: %w", ErrParseFile, path, err)
		}
	}

	cfg.propagateServiceName()
	return cfg, nil
}
