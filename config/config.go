// Package config holds the settings that shape the generated schema and the
// server exposing it.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// APIScope selects which domain types are exposed.
type APIScope string

const (
	// ScopeAll exposes entities and view models.
	ScopeAll APIScope = "all"
	// ScopeViewModels exposes view models only.
	ScopeViewModels APIScope = "view_models"
)

// APIVariant selects how mutating interactions are exposed.
type APIVariant string

const (
	// QueryOnly exposes no mutating interactions.
	QueryOnly APIVariant = "query_only"
	// QueryAndMutations adds a Mutation root for non-safe actions and
	// property edits.
	QueryAndMutations APIVariant = "query_and_mutations"
	// QueryWithMutationsNonSpecCompliant exposes mutating interactions
	// inline in the query tree (set, invokeNonSafe).
	QueryWithMutationsNonSpecCompliant APIVariant = "query_with_mutations_non_spec_compliant"
)

// EnvPrefix prefixes the environment variables overriding file settings,
// e.g. GQLV_API_VARIANT.
const EnvPrefix = "GQLV"

// Config is the complete configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Meta     MetaConfig     `mapstructure:"meta"`
	Lookup   LookupConfig   `mapstructure:"lookup"`
	Scenario ScenarioConfig `mapstructure:"scenario"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// APIConfig shapes the schema.
type APIConfig struct {
	Scope   APIScope   `mapstructure:"scope"`
	Variant APIVariant `mapstructure:"variant"`
}

// MetaConfig configures the metadata field of domain objects.
type MetaConfig struct {
	FieldName string `mapstructure:"field_name"`
}

// LookupConfig configures the lookup fields of the query root.
type LookupConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ScenarioConfig configures the Scenario testing affordance.
type ScenarioConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Path string `mapstructure:"path"`
}

// Addr is the host:port to listen on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

var defaults = map[string]interface{}{
	"api.scope":           string(ScopeAll),
	"api.variant":         string(QueryAndMutations),
	"meta.field_name":     "_gqlv_meta",
	"lookup.enabled":      true,
	"scenario.enabled":    false,
	"server.host":         "localhost",
	"server.port":         8080,
	"server.path":         "/graphql",
	"logging.level":       "info",
	"logging.development": false,
}

// Default returns the default configuration without reading files or the
// environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Errorf("config: defaults do not decode: %w", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Load reads the configuration from path, or from gqlv.yaml in the working
// directory when path is empty, and applies GQLV_* environment overrides.
// A missing gqlv.yaml is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gqlv")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings and names.
func (c *Config) Validate() error {
	switch c.API.Scope {
	case ScopeAll, ScopeViewModels:
	default:
		return fmt.Errorf("api.scope must be one of %q, %q, got %q", ScopeAll, ScopeViewModels, c.API.Scope)
	}
	switch c.API.Variant {
	case QueryOnly, QueryAndMutations, QueryWithMutationsNonSpecCompliant:
	default:
		return fmt.Errorf("api.variant must be one of %q, %q, %q, got %q",
			QueryOnly, QueryAndMutations, QueryWithMutationsNonSpecCompliant, c.API.Variant)
	}
	if !isName(c.Meta.FieldName) {
		return fmt.Errorf("meta.field_name must be a GraphQL name, got %q", c.Meta.FieldName)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("server.path must start with '/', got: %s", c.Server.Path)
	}
	return nil
}

// MutationsInline reports whether mutating sub-fields are exposed in the
// query tree.
func (c *Config) MutationsInline() bool {
	return c.API.Variant == QueryWithMutationsNonSpecCompliant
}

// MutationRoot reports whether a Mutation root type is generated.
func (c *Config) MutationRoot() bool {
	return c.API.Variant == QueryAndMutations
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
