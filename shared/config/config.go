// shared/config/config.go
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// CommonConfig holds infrastructure details used by MULTIPLE services.
type CommonConfig struct {
	// Database (PostgreSQL)
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string
	DB_HOST     string
	DB_PORT     string
	DB_SSLMODE  string
	// Kafka
	KAFKA_TOPIC   string
	KAFKA_BROKERS []string
	// RabbitMQ
	RABBITMQ_USER     string
	RABBITMQ_PASSWORD string
	RABBITMQ_HOST     string
	RABBITMQ_PORT     string
	// Redis (optional, login rate limiting)
	REDIS_URL string

	LOG_LEVEL string
}

// NewViper returns a viper instance reading from the environment with the
// shared defaults applied. Services add their own defaults on top.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_TOPIC", "access-requests")
	v.SetDefault("RABBITMQ_HOST", "localhost")
	v.SetDefault("RABBITMQ_PORT", "5672")
	v.SetDefault("LOG_LEVEL", "info")
	return v
}

// LoadCommonConfig reads the shared infrastructure config from v.
func LoadCommonConfig(v *viper.Viper) *CommonConfig {
	return &CommonConfig{
		DB_USER:     v.GetString("DB_USER"),
		DB_PASSWORD: v.GetString("DB_PASSWORD"),
		DB_HOST:     v.GetString("DB_HOST"),
		DB_PORT:     v.GetString("DB_PORT"),
		DB_NAME:     v.GetString("DB_NAME"),
		DB_SSLMODE:  v.GetString("DB_SSLMODE"),

		KAFKA_TOPIC:   v.GetString("KAFKA_TOPIC"),
		KAFKA_BROKERS: splitList(v.GetString("KAFKA_BROKERS")),

		RABBITMQ_USER:     v.GetString("RABBITMQ_USER"),
		RABBITMQ_PASSWORD: v.GetString("RABBITMQ_PASSWORD"),
		RABBITMQ_HOST:     v.GetString("RABBITMQ_HOST"),
		RABBITMQ_PORT:     v.GetString("RABBITMQ_PORT"),

		REDIS_URL: v.GetString("REDIS_URL"),
		LOG_LEVEL: v.GetString("LOG_LEVEL"),
	}
}

// GetDBURL formats the config into a PostgreSQL connection string.
func (c *CommonConfig) GetDBURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB_USER, c.DB_PASSWORD),
		Host:     c.DB_HOST + ":" + c.DB_PORT,
		Path:     "/" + c.DB_NAME,
		RawQuery: "sslmode=" + c.DB_SSLMODE,
	}
	return u.String()
}

// GetRabbitMQURL formats the config into an AMQP connection string.
func (c *CommonConfig) GetRabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		url.QueryEscape(c.RABBITMQ_USER), url.QueryEscape(c.RABBITMQ_PASSWORD), c.RABBITMQ_HOST, c.RABBITMQ_PORT)
}

// KafkaEnabled reports whether brokers and a topic are configured.
func (c *CommonConfig) KafkaEnabled() bool {
	return len(c.KAFKA_BROKERS) > 0 && c.KAFKA_TOPIC != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
