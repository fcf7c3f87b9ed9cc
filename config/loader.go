package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts file operations so the loader is testable without
// touching the real working directory.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderOptions holds dependencies and optional file overrides.
type LoaderOptions struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderOptions)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lo *LoaderOptions) { lo.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lo *LoaderOptions) { lo.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lo *LoaderOptions) { lo.EnvFile = path }
}

// configSearchPaths are tried in order when no explicit config file is given.
var configSearchPaths = []string{
	"./config.yml",
	"./config/config.yml",
	"../config/config.yml",
}

// envSearchPaths are tried in order when no explicit .env file is given.
var envSearchPaths = []string{
	"./.env",
	"../.env",
}

// Load fills cfg from config.yml, a .env file, and process environment
// variables, then applies defaults and validates. Environment variables win
// over file values: TOKEN_SECRET overrides token.secret from YAML.
func Load(cfg *Config, opts ...LoaderOption) error {
	var lo LoaderOptions
	for _, opt := range opts {
		opt(&lo)
	}
	if lo.FileSystem == nil {
		lo.FileSystem = &RealFileSystem{}
	}

	v := viper.New()

	configFile := lo.ConfigFile
	if configFile == "" {
		configFile = firstExisting(lo.FileSystem, configSearchPaths)
	}
	if configFile != "" && lo.FileSystem.Exists(configFile) {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	envFile := lo.EnvFile
	if envFile == "" {
		envFile = firstExisting(lo.FileSystem, envSearchPaths)
	}
	if envFile != "" && lo.FileSystem.Exists(envFile) {
		if err := lo.FileSystem.LoadEnv(envFile); err != nil {
			return fmt.Errorf("config: load %s: %w", envFile, err)
		}
		// Re-bind to pick up variables the .env file introduced.
		bindEnvVars(v)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.ApplyDefaults()
	return cfg.Validate()
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, path := range paths {
		if fs.Exists(path) {
			return path
		}
	}
	return ""
}

// envPrefix namespaces this service's environment variables. AUTHKIT_TOKEN_SECRET
// and TOKEN_SECRET both bind to token.secret; the prefixed form wins.
const envPrefix = "AUTHKIT_"

// bindEnvVars maps UPPER_SNAKE environment variables onto Viper's nested
// keys, e.g. TOKEN_ACCESS_TOKEN_TTL -> token.access_token_ttl.
func bindEnvVars(v *viper.Viper) {
	// Unprefixed first so prefixed values take precedence.
	for _, prefixed := range []bool{false, true} {
		for _, env := range os.Environ() {
			pair := strings.SplitN(env, "=", 2)
			if len(pair) != 2 {
				continue
			}
			key := pair[0]
			if prefixed != strings.HasPrefix(key, envPrefix) {
				continue
			}
			if prefixed {
				key = strings.TrimPrefix(key, envPrefix)
			}
			for _, variant := range envKeyVariants(key) {
				v.Set(variant, pair[1])
			}
		}
	}
}

// envKeyVariants generates the nested-key spellings an env var may refer
// to. TOKEN_ACCESS_TOKEN_TTL yields token.access_token_ttl as well as
// token.access.token.ttl, because the loader cannot know which underscores
// separate sections and which belong to a field name.
func envKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")
	if len(parts) == 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.Join(parts, "."),
	}
	// Split only on the first underscore: section.rest_of_field.
	variants = append(variants, parts[0]+"."+strings.Join(parts[1:], "_"))
	return variants
}
