package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Environment   string `mapstructure:"ENVIRONMENT" validate:"required,oneof=development production test"`
	LogLevel      string `mapstructure:"LOG_LEVEL" validate:"required,oneof=trace debug info warn error"`
	DBSource      string `mapstructure:"DB_SOURCE" validate:"required"`
	ServerAddress string `mapstructure:"SERVER_ADDRESS" validate:"required,hostname_port"`

	RedisAddress  string        `mapstructure:"REDIS_ADDRESS" validate:"omitempty,hostname_port"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB" validate:"gte=0"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL" validate:"gt=0"`

	TypesenseURL        string `mapstructure:"TYPESENSE_URL" validate:"omitempty,url"`
	TypesenseAPIKey     string `mapstructure:"TYPESENSE_API_KEY" validate:"required_with=TypesenseURL"`
	TypesenseCollection string `mapstructure:"TYPESENSE_COLLECTION" validate:"required"`

	CompletionBackend string `mapstructure:"COMPLETION_BACKEND" validate:"oneof=postgres typesense"`
	TrieWarmLimit     int    `mapstructure:"TRIE_WARM_LIMIT" validate:"gte=0"`
	DefaultRegion     string `mapstructure:"DEFAULT_PHONE_REGION" validate:"required,len=2"`

	APIBaseURL     string  `mapstructure:"API_BASE_URL" validate:"required,url"`
	RequestsPerSec float64 `mapstructure:"REQUESTS_PER_SECOND" validate:"gt=0"`
	RequestBurst   int     `mapstructure:"REQUEST_BURST" validate:"gt=0"`
	Language       string  `mapstructure:"LANGUAGE" validate:"required"`
	DeviceLat      float64 `mapstructure:"DEVICE_LATITUDE" validate:"gte=-90,lte=90"`
	DeviceLon      float64 `mapstructure:"DEVICE_LONGITUDE" validate:"gte=-180,lte=180"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", 24*time.Hour)
	v.SetDefault("TYPESENSE_COLLECTION", "places")
	v.SetDefault("COMPLETION_BACKEND", "postgres")
	v.SetDefault("TRIE_WARM_LIMIT", 50000)
	v.SetDefault("DEFAULT_PHONE_REGION", "US")
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("REQUESTS_PER_SECOND", 10)
	v.SetDefault("REQUEST_BURST", 5)
	v.SetDefault("LANGUAGE", "en")
}

// LoadConfig reads configuration from app.env in path, overridden by environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Every key must be known to viper for AutomaticEnv to reach Unmarshal.
	for _, key := range []string{"DB_SOURCE", "REDIS_ADDRESS", "REDIS_PASSWORD", "TYPESENSE_URL", "TYPESENSE_API_KEY", "DEVICE_LATITUDE", "DEVICE_LONGITUDE"} {
		if err = v.BindEnv(key); err != nil {
			return config, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config, fmt.Errorf("config: read: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err = validator.New().Struct(config); err != nil {
		return config, fmt.Errorf("config: invalid: %w", err)
	}
	return config, nil
}
