package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

var (
	config     *Config
	configOnce sync.Once
)

// Config stores all configuration of the application
type Config struct {
	// Environment type
	EnvType string

	// Database
	DBDriver        string // mysql, postgres, sqlite
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBPath          string // sqlite file, ":memory:" in tests
	DBMigrationMode string // "auto"(default) or "drop"
	SeedDemo        bool

	// Server
	ServerPort string
	CORSOrigin string

	// Redis
	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MQTT notification push
	MQTTEnabled     bool
	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTQoS         int
	MQTTTopicPrefix string

	// JWT Authentication
	JWTSecretKey     string
	JWTTokenLifetime time.Duration

	// Clients poll chat and notification counters with this interval
	PollInterval time.Duration

	// Subscription
	FreePlanUnitLimit int
	PayPalClientID    string
	PayPalSecret      string
	PayPalMode        string // sandbox, live
}

// environmentConfig holds the variables that are read with the LOCAL_ / SERVER_ prefix.
type environmentConfig struct {
	DBDriver        string `env:"DB_DRIVER" envDefault:"mysql"`
	DBHost          string `env:"DB_HOST" envDefault:"localhost"`
	DBUser          string `env:"DB_USER" envDefault:"immofox"`
	DBPassword      string `env:"DB_PASSWORD"`
	DBName          string `env:"DB_NAME" envDefault:"immofox"`
	DBPort          string `env:"DB_PORT" envDefault:"3306"`
	DBPath          string `env:"DB_PATH" envDefault:"immofox.db"`
	DBMigrationMode string `env:"DB_MIGRATION_MODE" envDefault:"auto"`
	ServerPort      string `env:"SERVER_PORT" envDefault:"8080"`
	RedisHost       string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort       string `env:"REDIS_PORT" envDefault:"6379"`
}

// sharedConfig holds the variables that are the same for every environment.
type sharedConfig struct {
	SeedDemo          bool          `env:"SEED_DEMO" envDefault:"false"`
	CORSOrigin        string        `env:"CORS_ORIGIN" envDefault:"http://localhost:3000"`
	RedisEnabled      bool          `env:"REDIS_ENABLED" envDefault:"false"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	MQTTEnabled       bool          `env:"MQTT_ENABLED" envDefault:"false"`
	MQTTBrokerURL     string        `env:"MQTT_BROKER_URL" envDefault:"tcp://localhost:1883"`
	MQTTClientID      string        `env:"MQTT_CLIENT_ID" envDefault:"immofox_server"`
	MQTTUsername      string        `env:"MQTT_USERNAME"`
	MQTTPassword      string        `env:"MQTT_PASSWORD"`
	MQTTQoS           int           `env:"MQTT_QOS" envDefault:"1"`
	MQTTTopicPrefix   string        `env:"MQTT_TOPIC_PREFIX" envDefault:"immofox"`
	JWTSecretKey      string        `env:"JWT_SECRET_KEY"`
	JWTTokenLifetime  time.Duration `env:"JWT_TOKEN_LIFETIME" envDefault:"24h"`
	PollInterval      time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`
	FreePlanUnitLimit int           `env:"FREE_PLAN_UNIT_LIMIT" envDefault:"5"`
	PayPalClientID    string        `env:"PAYPAL_CLIENT_ID"`
	PayPalSecret      string        `env:"PAYPAL_SECRET"`
	PayPalMode        string        `env:"PAYPAL_MODE" envDefault:"sandbox"`
}

const localJWTSecret = "immofox-local-secret-change-in-production"

// LoadConfig loads config from environment variables based on ENV_TYPE
func LoadConfig() (*Config, error) {
	envType := strings.ToUpper(strings.TrimSpace(lookupEnvType()))
	switch envType {
	case "LOCAL", "SERVER":
	default:
		fmt.Printf("Warning: Unknown ENV_TYPE '%s', defaulting to LOCAL environment\n", envType)
		envType = "LOCAL"
	}

	var perEnv environmentConfig
	if err := env.ParseWithOptions(&perEnv, env.Options{Prefix: envType + "_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	var shared sharedConfig
	if err := env.Parse(&shared); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if shared.JWTSecretKey == "" {
		if envType == "SERVER" {
			return nil, fmt.Errorf("JWT_SECRET_KEY is required in SERVER environment")
		}
		shared.JWTSecretKey = localJWTSecret
	}

	cfg := &Config{
		EnvType: envType,

		DBDriver:        strings.ToLower(perEnv.DBDriver),
		DBHost:          perEnv.DBHost,
		DBUser:          perEnv.DBUser,
		DBPassword:      perEnv.DBPassword,
		DBName:          perEnv.DBName,
		DBPort:          perEnv.DBPort,
		DBPath:          perEnv.DBPath,
		DBMigrationMode: perEnv.DBMigrationMode,
		SeedDemo:        shared.SeedDemo,

		ServerPort: perEnv.ServerPort,
		CORSOrigin: shared.CORSOrigin,

		RedisEnabled:  shared.RedisEnabled,
		RedisHost:     perEnv.RedisHost,
		RedisPort:     perEnv.RedisPort,
		RedisPassword: shared.RedisPassword,
		RedisDB:       shared.RedisDB,

		MQTTEnabled:     shared.MQTTEnabled,
		MQTTBrokerURL:   shared.MQTTBrokerURL,
		MQTTClientID:    shared.MQTTClientID,
		MQTTUsername:    shared.MQTTUsername,
		MQTTPassword:    shared.MQTTPassword,
		MQTTQoS:         shared.MQTTQoS,
		MQTTTopicPrefix: shared.MQTTTopicPrefix,

		JWTSecretKey:     shared.JWTSecretKey,
		JWTTokenLifetime: shared.JWTTokenLifetime,
		PollInterval:     shared.PollInterval,

		FreePlanUnitLimit: shared.FreePlanUnitLimit,
		PayPalClientID:    shared.PayPalClientID,
		PayPalSecret:      shared.PayPalSecret,
		PayPalMode:        shared.PayPalMode,
	}

	fmt.Printf("Loading configuration for environment: %s\n", envType)
	return cfg, nil
}

// GetConfig returns the application configuration as a singleton.
// It panics when the environment cannot be parsed.
func GetConfig() *Config {
	configOnce.Do(func() {
		cfg, err := LoadConfig()
		if err != nil {
			panic(err)
		}
		config = cfg
	})
	return config
}

// GetDSN returns the database connection string for the configured driver
func (c *Config) GetDSN() string {
	switch c.DBDriver {
	case "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Europe/Berlin",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	case "sqlite":
		return c.DBPath
	default:
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local"
	}
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// IsServer reports whether the SERVER environment is active.
func (c *Config) IsServer() bool {
	return c.EnvType == "SERVER"
}

func lookupEnvType() string {
	var e struct {
		EnvType string `env:"ENV_TYPE" envDefault:"LOCAL"`
	}
	if err := env.Parse(&e); err != nil {
		return "LOCAL"
	}
	return e.EnvType
}
