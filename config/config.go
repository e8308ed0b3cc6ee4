// Application configuration: config/config.yaml read through viper,
// with environment overrides for the infrastructure addresses.
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/ds124wfegd/ocrsynth/internal/pkg/generator"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig            `mapstructure:"server"`
	Generator     GeneratorConfig         `mapstructure:"generator"`
	Kafka         KafkaConfig             `mapstructure:"kafka"`
	Redis         RedisConfig             `mapstructure:"redis"`
	Storage       StorageConfig           `mapstructure:"storage"`
	Specification generator.Specification `mapstructure:"specification"`
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

type GeneratorConfig struct {
	Seed      uint64 `mapstructure:"seed"`
	Workers   int    `mapstructure:"workers"`
	TextsFile string `mapstructure:"texts_file"`
	Count     int    `mapstructure:"count"`
	Start     uint64 `mapstructure:"start"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	SyncInterval time.Duration `mapstructure:"sync_interval"`
}

type StorageConfig struct {
	BasePath      string `mapstructure:"base_path"`
	FontDir       string `mapstructure:"font_dir"`
	BackgroundDir string `mapstructure:"background_dir"`
}

func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	err := viperInstance.ReadInConfig()

	if err != nil {
		return nil, err
	}
	return viperInstance, nil
}

// ParseConfig starts from Defaults so the YAML only has to name what it
// changes, then applies environment overrides.
func ParseConfig(v *viper.Viper) (*Config, error) {

	c := Defaults()

	// lists in the YAML replace the default lists instead of overlaying them
	err := v.Unmarshal(c, func(dc *mapstructure.DecoderConfig) {
		dc.ZeroFields = true
	})
	if err != nil {
		log.Printf("unable to decode config into struct, %v", err)
		return nil, err
	}

	if brokers := GetEnv("KAFKA_BROKERS", ""); brokers != "" {
		c.Kafka.Brokers = strings.Split(brokers, ",")
	}
	c.Kafka.Topic = GetEnv("KAFKA_TOPIC", c.Kafka.Topic)
	c.Kafka.GroupID = GetEnv("KAFKA_GROUP_ID", c.Kafka.GroupID)
	c.Redis.Addr = GetEnv("REDIS_ADDR", c.Redis.Addr)
	c.Storage.BasePath = GetEnv("STORAGE_PATH", c.Storage.BasePath)
	return c, nil
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         "8080",
			Timeout:      30 * time.Second,
			Idle_timeout: 60 * time.Second,
			Mode:         "debug",
		},
		Generator: GeneratorConfig{
			Workers: 4,
			Count:   100,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9094"},
			Topic:   "render-tasks",
			GroupID: "ocrsynth-renderer",
		},
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			SyncInterval: 30 * time.Second,
		},
		Storage: StorageConfig{
			BasePath:      "./storage",
			FontDir:       "fonts",
			BackgroundDir: "backgrounds",
		},
		Specification: generator.DefaultSpecification(),
	}
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
