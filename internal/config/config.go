package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/sokoni-market/sokoni-cli/internal/geo"
	"github.com/sokoni-market/sokoni-cli/internal/locate"
)

// EnvPrefix namespaces environment overrides: SOKONI_API_BASE_URL → api.base_url
const EnvPrefix = "SOKONI"

// Geolocation providers
const (
	ProviderIP     = "ip"
	ProviderStatic = "static"
	ProviderNone   = "none"
)

// Config holds all application configuration.
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Geo    GeoConfig    `mapstructure:"geo"`
	Search SearchConfig `mapstructure:"search"`
	Map    MapConfig    `mapstructure:"map"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Log    LogConfig    `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type GeoConfig struct {
	Provider     string        `mapstructure:"provider"`
	IPURL        string        `mapstructure:"ip_url"`
	Static       string        `mapstructure:"static"`
	Timeout      time.Duration `mapstructure:"timeout"`
	HighAccuracy bool          `mapstructure:"high_accuracy"`
	MaximumAge   time.Duration `mapstructure:"maximum_age"`
}

// LocateOptions converts the policy into acquirer options
func (g GeoConfig) LocateOptions() locate.Options {
	return locate.Options{
		Timeout:            g.Timeout,
		EnableHighAccuracy: g.HighAccuracy,
		MaximumAge:         g.MaximumAge,
	}
}

// StaticCoordinate parses geo.static ("lat,lng")
func (g GeoConfig) StaticCoordinate() (geo.Coordinate, bool) {
	c, ok := geo.ParsePair(g.Static)
	if !ok || !c.InRange() {
		return geo.Coordinate{}, false
	}
	return c, true
}

type SearchConfig struct {
	RadiusKm float64 `mapstructure:"radius_km"`
	Limit    int     `mapstructure:"limit"`
}

type MapConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Zoom    int    `mapstructure:"zoom"`
}

// Builder returns the map URL builder for this configuration
func (m MapConfig) Builder() geo.MapURLBuilder {
	return geo.NewMapURLBuilder(m.BaseURL).WithZoom(m.Zoom)
}

type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	TTL       time.Duration `mapstructure:"ttl"`
	NearbyTTL time.Duration `mapstructure:"nearby_ttl"`
	Dir       string        `mapstructure:"dir"`
	RedisURL  string        `mapstructure:"redis_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000/api")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("geo.provider", ProviderIP)
	v.SetDefault("geo.ip_url", locate.DefaultIPURL)
	v.SetDefault("geo.static", "")
	v.SetDefault("geo.timeout", locate.DefaultTimeout)
	v.SetDefault("geo.high_accuracy", false)
	v.SetDefault("geo.maximum_age", time.Duration(0))
	v.SetDefault("search.radius_km", 10.0)
	v.SetDefault("search.limit", 20)
	v.SetDefault("map.base_url", geo.DefaultMapBaseURL)
	v.SetDefault("map.zoom", geo.DefaultZoom)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 60*time.Second)
	v.SetDefault("cache.nearby_ttl", 15*time.Second)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// Load reads configuration from defaults, an optional config file, a .env
// file and environment variables, in increasing precedence. An empty path
// searches ./config.yaml and $XDG_CONFIG_HOME/sokoni/config.yaml.
func Load(path string) (*Config, error) {
	// .env never overrides variables that are already set
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "sokoni"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Geo.Provider = strings.ToLower(strings.TrimSpace(cfg.Geo.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that configuration values are present and sane. All
// problems are reported together.
func (c *Config) Validate() error {
	var err error

	if c.API.BaseURL == "" {
		err = multierr.Append(err, errors.New("api.base_url is required"))
	}
	if c.API.Timeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout))
	}

	switch c.Geo.Provider {
	case ProviderIP, ProviderNone:
	case ProviderStatic:
		if _, ok := c.Geo.StaticCoordinate(); !ok {
			err = multierr.Append(err, fmt.Errorf("geo.static must be \"lat,lng\" within range, got %q", c.Geo.Static))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("geo.provider must be ip, static or none, got %q", c.Geo.Provider))
	}
	if c.Geo.Timeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("geo.timeout must be positive, got %s", c.Geo.Timeout))
	}
	if c.Geo.MaximumAge < 0 {
		err = multierr.Append(err, errors.New("geo.maximum_age must not be negative"))
	}

	if c.Search.RadiusKm <= 0 {
		err = multierr.Append(err, fmt.Errorf("search.radius_km must be positive, got %v", c.Search.RadiusKm))
	}
	if c.Search.Limit <= 0 {
		err = multierr.Append(err, fmt.Errorf("search.limit must be positive, got %d", c.Search.Limit))
	}

	if c.Map.Zoom < geo.MinZoom || c.Map.Zoom > geo.MaxZoom {
		err = multierr.Append(err, fmt.Errorf("map.zoom must be %d-%d, got %d", geo.MinZoom, geo.MaxZoom, c.Map.Zoom))
	}

	if c.Cache.TTL < 0 {
		err = multierr.Append(err, errors.New("cache.ttl must not be negative"))
	}
	if c.Cache.NearbyTTL < 0 {
		err = multierr.Append(err, errors.New("cache.nearby_ttl must not be negative"))
	}

	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		err = multierr.Append(err, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}

	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
