package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Session  SessionConfig
	Kafka    KafkaConfig
	Observ   ObservabilityConfig
	Business BusinessConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DataConfig struct {
	Dir string
}

type SessionConfig struct {
	// Backend selects the session store: "memory" or "redis".
	Backend       string
	CookieName    string
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	TopicOrder    string
	ConsumerGroup string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

type BusinessConfig struct {
	FreeShippingThreshold float64
	FlatShippingRate      float64
	TaxRate               float64
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("SESSION_REDIS_DB", "0"))
	sessionTTL, _ := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "1440"))
	kafkaEnabled, _ := strconv.ParseBool(getEnv("KAFKA_ENABLED", "false"))
	freeShipping, _ := strconv.ParseFloat(getEnv("FREE_SHIPPING_THRESHOLD", "100"), 64)
	flatRate, _ := strconv.ParseFloat(getEnv("FLAT_SHIPPING_RATE", "9.99"), 64)
	taxRate, _ := strconv.ParseFloat(getEnv("TAX_RATE", "0.08"), 64)

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Data: DataConfig{
			Dir: getEnv("DATA_DIR", "data"),
		},
		Session: SessionConfig{
			Backend:       getEnv("SESSION_BACKEND", "memory"),
			CookieName:    getEnv("SESSION_COOKIE_NAME", "sid"),
			TTL:           time.Duration(sessionTTL) * time.Minute,
			RedisAddr:     getEnv("SESSION_REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("SESSION_REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Kafka: KafkaConfig{
			Enabled:       kafkaEnabled,
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicOrder:    getEnv("KAFKA_TOPIC_ORDER_EVENTS", "order-events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "shop-service-notifier"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		Business: BusinessConfig{
			FreeShippingThreshold: freeShipping,
			FlatShippingRate:      flatRate,
			TaxRate:               taxRate,
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, data=%s", cfg.Server.Env, cfg.Server.Port, cfg.Data.Dir)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
