package config

import (
	"os"
	"strconv"
	"time"
)

type SafetyServiceConfig struct {
	Port        string
	PostgresCfg PostgresConfig
	RedisCfg    RedisConfig
	RabbitMQCfg RabbitMQConfig
	MQTTCfg     MQTTConfig
	Thresholds  ThresholdConfig

	// FeedInterval is the cadence of the /ws/zones broadcast loop.
	FeedInterval time.Duration
	// RecheckInterval is the cadence of the background alert recheck.
	RecheckInterval time.Duration
	// TopologyRefreshInterval is how often the datastream->zone cache is reloaded.
	TopologyRefreshInterval time.Duration
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	Host     string
	Username string
	Password string
	Port     string
}

type MQTTConfig struct {
	Broker   string
	ClientID string
	Topic    string
}

// ThresholdConfig holds the alerting limits. Numeric comparisons are strict
// greater-than; a value equal to the limit does not alert.
type ThresholdConfig struct {
	Heat     float64
	Pression float64
	Smoke    float64
}

func New() *SafetyServiceConfig {
	return &SafetyServiceConfig{
		Port: getEnvOrDefault("SAFETY_SERVICE_PORT", "8000"),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "safeindustech"),
			Username: getEnvOrDefault("POSTGRES_USER", "user"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "password"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvIntOrDefault("REDIS_DB", 0),
		},
		RabbitMQCfg: RabbitMQConfig{
			Host:     getEnvOrDefault("RABBITMQ_HOST", "rabbitmq"),
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		MQTTCfg: MQTTConfig{
			Broker:   getEnvOrDefault("MQTT_BROKER", "tcp://localhost:1883"),
			ClientID: getEnvOrDefault("MQTT_CLIENT_ID", "safety-service"),
			Topic:    getEnvOrDefault("MQTT_SENSOR_TOPIC", "iot_safeindustech/sensors/#"),
		},
		Thresholds: ThresholdConfig{
			Heat:     getEnvFloatOrDefault("THRESHOLD_HEAT", 70),
			Pression: getEnvFloatOrDefault("THRESHOLD_PRESSION", 5.0),
			Smoke:    getEnvFloatOrDefault("THRESHOLD_SMOKE", 5.0),
		},
		FeedInterval:            getEnvDurationOrDefault("ZONE_FEED_INTERVAL", time.Second),
		RecheckInterval:         getEnvDurationOrDefault("ALERT_RECHECK_INTERVAL", 10*time.Second),
		TopologyRefreshInterval: getEnvDurationOrDefault("TOPOLOGY_REFRESH_INTERVAL", time.Minute),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
