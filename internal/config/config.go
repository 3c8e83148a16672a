package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// placeholderAPIKey is the template value shipped in example configs. It is
// treated the same as a missing credential.
const placeholderAPIKey = "YOUR_GOOGLE_MAPS_API_KEY_HERE"

// Config holds the full application configuration.
type Config struct {
	BaseAddress      string   `yaml:"base_address" mapstructure:"base_address"`
	GoogleMapsAPIKey string   `yaml:"google_maps_api_key" mapstructure:"google_maps_api_key"`
	SearchRadiusMile float64  `yaml:"search_radius_miles" mapstructure:"search_radius_miles"`
	MinRatingsSource int      `yaml:"min_ratings_source" mapstructure:"min_ratings_source"`
	SearchKeywords   []string `yaml:"search_keywords" mapstructure:"search_keywords"`

	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Places  PlacesConfig  `yaml:"places" mapstructure:"places"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SearchConfig bounds the pagination loop.
type SearchConfig struct {
	PageLimit       int `yaml:"page_limit" mapstructure:"page_limit"`
	SettleDelaySecs int `yaml:"settle_delay_secs" mapstructure:"settle_delay_secs"`
}

// GeocodeConfig configures the Nominatim client.
type GeocodeConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// PlacesConfig configures the Places API client.
type PlacesConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// OutputConfig configures the lead sink.
type OutputConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Format string `yaml:"format" mapstructure:"format"` // csv or xlsx
}

// StoreConfig configures optional SQLite run history.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // empty disables persistence
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys without a meaningful default still need registering so
	// AutomaticEnv can bind them during Unmarshal.
	v.SetDefault("base_address", "")
	v.SetDefault("google_maps_api_key", "")
	v.SetDefault("search_radius_miles", 5.0)
	v.SetDefault("min_ratings_source", 0)
	v.SetDefault("search.page_limit", 10)
	v.SetDefault("search.settle_delay_secs", 2)
	v.SetDefault("geocode.base_url", "")
	v.SetDefault("geocode.rate_limit_rps", 1.0)
	v.SetDefault("places.base_url", "")
	v.SetDefault("store.path", "")
	v.SetDefault("output.path", "google_maps_leads.csv")
	v.SetDefault("output.format", "csv")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the preconditions the pipeline cannot run without. These
// are fatal before any output is produced.
func (c *Config) Validate() error {
	if c.GoogleMapsAPIKey == "" || c.GoogleMapsAPIKey == placeholderAPIKey {
		return eris.New("config: google_maps_api_key is missing or still the placeholder; set it in config.yaml or LEADGEN_GOOGLE_MAPS_API_KEY")
	}
	if c.BaseAddress == "" {
		return eris.New("config: base_address is required")
	}
	if c.SearchRadiusMile <= 0 {
		return eris.New("config: search_radius_miles must be positive")
	}
	if c.MinRatingsSource < 0 {
		return eris.New("config: min_ratings_source must not be negative")
	}
	switch c.Output.Format {
	case "csv", "xlsx":
	default:
		return eris.Errorf("config: unknown output format %q (valid: csv, xlsx)", c.Output.Format)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
