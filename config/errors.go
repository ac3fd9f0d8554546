package config

import "errors"

var (
	// ErrReadFile is returned when the configuration file cannot be read.
	ErrReadFile = errors.New("config: read file")

	// ErrParseFile is returned when the configuration file is not valid YAML
	// for Config.
	ErrParseFile = errors.New("config: parse file")

	// ErrEnvironment is returned when an environment variable cannot be
	// converted to its field type.
	ErrEnvironment = errors.New("config: environment")
)
