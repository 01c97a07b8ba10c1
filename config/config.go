package config

import (
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug|release|test
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite|postgres
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type StorageConfig struct {
	Bucket string `mapstructure:"bucket"`
	// Token is a bearer token with write access to the bucket.
	Token string `mapstructure:"token"`
}

type VisionConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
}

type KnowledgeConfig struct {
	WikidataAPI     string `mapstructure:"wikidata_api"`
	SPARQLEndpoint  string `mapstructure:"sparql_endpoint"`
	WikipediaAPI    string `mapstructure:"wikipedia_api"`
	Language        string `mapstructure:"language"`
	CacheTTLMinutes int    `mapstructure:"cache_ttl_minutes"`
}

type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

type TracingConfig struct {
	Endpoint string `mapstructure:"endpoint"` // OTLP/HTTP collector, empty disables
}

type MaintenanceConfig struct {
	Schedule string `mapstructure:"schedule"` // cron expression, empty disables
}

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Vision      VisionConfig      `mapstructure:"vision"`
	Knowledge   KnowledgeConfig   `mapstructure:"knowledge"`
	Sentry      SentryConfig      `mapstructure:"sentry"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// Load reads config.yaml (if present) and LOCACONNE_* env overrides.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "locaconne.db")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("storage.bucket", "locaconne_bucket")
	v.SetDefault("vision.endpoint", "https://vision.googleapis.com/v1/images:annotate")
	v.SetDefault("knowledge.wikidata_api", "https://www.wikidata.org/w/api.php")
	v.SetDefault("knowledge.sparql_endpoint", "https://query.wikidata.org/sparql")
	v.SetDefault("knowledge.wikipedia_api", "https://ja.wikipedia.org/api/rest_v1")
	v.SetDefault("knowledge.language", "ja")
	v.SetDefault("knowledge.cache_ttl_minutes", 60)
	v.SetDefault("maintenance.schedule", "")

	v.SetEnvPrefix("LOCACONNE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// config file is optional; defaults + env are enough for local runs
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
