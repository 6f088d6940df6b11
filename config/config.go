/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name.
const Prefix = "ENTITYMETA"

// Config holds the settings consumed by the registry, its loaders and the CLI.
type Config struct {
	AllowExternal       bool `envconfig:"ALLOW_EXTERNAL" default:"true"`
	AllowInline         bool `envconfig:"ALLOW_INLINE" default:"true"`
	LenientMissingTypes bool `envconfig:"LENIENT_MISSING_TYPES" default:"false"`
	LoadPermitted       bool `envconfig:"LOAD_PERMITTED" default:"true"`
	RequireBackingTypes bool `envconfig:"REQUIRE_BACKING_TYPES" default:"true"`
	DefaultNullable     bool `envconfig:"DEFAULT_NULLABLE" default:"true"`

	// SweepPasses bounds the extra sweeps over files discovered while
	// initializing; 0 sweeps until no new files appear.
	SweepPasses int `envconfig:"SWEEP_PASSES" default:"2"`

	SkipStandardLibrary bool     `envconfig:"SKIP_STANDARD_LIBRARY" default:"true"`
	ReservedPrefixes    []string `envconfig:"RESERVED_PREFIXES"`
	DescriptorPattern   string   `envconfig:"DESCRIPTOR_PATTERN" default:"**/*.meta.yaml"`

	Logging LogConfig   `envconfig:"LOG"`
	Store   StoreConfig `envconfig:"STORE"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LEVEL" default:"info"`
	Development bool   `envconfig:"DEVELOPMENT" default:"false"`
}

// StoreConfig locates the DynamoDB table holding descriptor documents.
type StoreConfig struct {
	Table     string `envconfig:"TABLE"`
	Region    string `envconfig:"REGION" default:"us-east-1"`
	AccessKey string `envconfig:"ACCESS_KEY"`
	SecretKey string `envconfig:"SECRET_KEY"`
	Endpoint  string `envconfig:"ENDPOINT"`
}

// Enabled reports whether a descriptor table is configured.
func (s StoreConfig) Enabled() bool {
	return s.Table != ""
}

// Load reads configuration from the environment. Named env files are loaded
// first and must exist; without names an optional ".env" is read if present.
// Variables already set in the environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("failed to load env files: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from the environment or returns Default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns the default configuration without reading the environment.
func Default() *Config {
	return &Config{
		AllowExternal:       true,
		AllowInline:         true,
		LoadPermitted:       true,
		RequireBackingTypes: true,
		DefaultNullable:     true,
		SweepPasses:         2,
		SkipStandardLibrary: true,
		DescriptorPattern:   "**/*.meta.yaml",
		Logging: LogConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Region: "us-east-1",
		},
	}
}
