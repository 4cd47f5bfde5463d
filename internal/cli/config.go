package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/matzehuels/transfocator/pkg/geometry"
	"github.com/matzehuels/transfocator/pkg/pipeline"
	"github.com/matzehuels/transfocator/pkg/server"
)

// envPrefix scopes environment overrides, e.g. TFCALC_CACHE_BACKEND=redis.
const envPrefix = "TFCALC"

// Backend names accepted in the configuration.
const (
	backendFile   = "file"
	backendRedis  = "redis"
	backendNone   = "none"
	backendMemory = "memory"
	backendMongo  = "mongo"
)

// Config is the application configuration. Values come from built-in
// defaults, then the config file, then TFCALC_* environment variables.
// Command-line flags override all of them.
type Config struct {
	Convention string            `mapstructure:"convention"`
	Geometry   geometry.Settings `mapstructure:"geometry"`
	Cache      CacheConfig       `mapstructure:"cache"`
	Materials  MaterialsConfig   `mapstructure:"materials"`
	Store      StoreConfig       `mapstructure:"store"`
	Server     ServerConfig      `mapstructure:"server"`
}

// CacheConfig selects the report and constants cache.
type CacheConfig struct {
	Backend       string `mapstructure:"backend"` // file, redis or none
	Dir           string `mapstructure:"dir"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// MaterialsConfig selects the optical-constants provider. URL wins over
// Table; with neither the built-in table is used.
type MaterialsConfig struct {
	Table string `mapstructure:"table"`
	URL   string `mapstructure:"url"`
}

// StoreConfig selects the run archive.
type StoreConfig struct {
	Backend       string `mapstructure:"backend"` // file, memory or mongo
	Dir           string `mapstructure:"dir"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
}

// ServerConfig configures `tfcalc serve`.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	g := geometry.DefaultSettings()
	v.SetDefault("convention", pipeline.DefaultConvention)
	v.SetDefault("geometry.pitch", g.Pitch)
	v.SetDefault("geometry.web", g.Web)
	v.SetDefault("geometry.vacuum_gap", g.VacuumGap)
	v.SetDefault("geometry.air_gap", g.AirGap)
	v.SetDefault("geometry.housing_length", g.HousingLength)
	v.SetDefault("geometry.housing_gap", g.HousingGap)
	v.SetDefault("geometry.max_per_housing", g.MaxPerHousing)
	v.SetDefault("geometry.vacuum_nominal_length", g.VacuumNominalLength)
	v.SetDefault("geometry.air_nominal_length", g.AirNominalLength)

	v.SetDefault("cache.backend", backendFile)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	v.SetDefault("materials.table", "")
	v.SetDefault("materials.url", "")

	v.SetDefault("store.backend", backendFile)
	v.SetDefault("store.dir", "")
	v.SetDefault("store.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("store.mongo_database", "tfcalc")

	v.SetDefault("server.addr", server.DefaultAddr)
}

// loadConfig reads the configuration. An explicit path must exist; without
// one, config.toml in the user config directory is read if present.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if dir, err := configDir(); err == nil {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case backendFile, backendRedis, backendNone:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q (want file, redis or none)", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case backendFile, backendMemory, backendMongo:
	default:
		return fmt.Errorf("store.backend: unknown backend %q (want file, memory or mongo)", c.Store.Backend)
	}
	return c.Geometry.Validate()
}

// configDir returns the config directory using XDG standard (~/.config/tfcalc/).
func configDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
