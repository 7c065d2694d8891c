// Ininicializing common application configuration
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Session   SessionConfig   `mapstructure:"session"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

type ServerConfig struct {
	AppVersion   string        `mapstructure:"app_version"`
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Idle_timeout time.Duration `mapstructure:"idle_timeout"`
	Env          string        `mapstructure:"environment"`
	Mode         string        `mapstructure:"mode"`
}

// BackendConfig describes where the echo services and the negative-image
// proxy live. Paths are relative to BaseURL.
type BackendConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Service1Path  string        `mapstructure:"service1_path"`
	Service2Path  string        `mapstructure:"service2_path"`
	NegativePath  string        `mapstructure:"negative_path"`
	Service1Probe string        `mapstructure:"service1_probe"`
	Service2Probe string        `mapstructure:"service2_probe"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxUploadSize int64         `mapstructure:"max_upload_size"`

	// MaxResponseSize caps the proxy reply read into memory. Zero disables it.
	MaxResponseSize int64 `mapstructure:"max_response_size"`
}

type ArtifactsConfig struct {
	StoragePath string `mapstructure:"storage_path"`
	PreviewSize int    `mapstructure:"preview_size"`
}

type SessionConfig struct {
	CookieName      string        `mapstructure:"cookie_name"`
	IdleTTL         time.Duration `mapstructure:"idle_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func LoadConfig() (*viper.Viper, error) {

	viperInstance := newViper()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	err := viperInstance.ReadInConfig()

	if err != nil {
		return nil, err
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &c, nil
}

// Default builds a configuration from defaults and environment only,
// without reading a file.
func Default() *Config {
	c, _ := ParseConfig(newViper())
	return c
}

// newViper returns an instance with defaults set and env overrides on:
// backend.base_url is read from BACKEND_BASE_URL and so on.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.app_version", "1.0.0")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.service1_path", "/api/service1/hello/")
	v.SetDefault("backend.service2_path", "/api/service2/evening/")
	v.SetDefault("backend.negative_path", "/api/service1/negative-image/")
	v.SetDefault("backend.service1_probe", "/api/service1/")
	v.SetDefault("backend.service2_probe", "/api/service2/")
	v.SetDefault("backend.timeout", 0)
	v.SetDefault("backend.max_upload_size", 20<<20)
	v.SetDefault("backend.max_response_size", 50<<20)

	v.SetDefault("artifacts.storage_path", "./storage")
	v.SetDefault("artifacts.preview_size", 256)

	v.SetDefault("session.cookie_name", "sid")
	v.SetDefault("session.idle_ttl", 30*time.Minute)
	v.SetDefault("session.cleanup_interval", time.Minute)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9094")
	v.SetDefault("kafka.topic", "artifact-events")
	v.SetDefault("kafka.group_id", "negative-web-eventlog")

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Hour)
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
