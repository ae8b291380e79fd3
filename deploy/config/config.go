package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Storage    Storage
	Redis      Redis
	HTTPServer HTTPServer
	Rates      Rates
}

type Storage struct {
	Timeout  time.Duration `env:"BD_TIMEOUT" env-default:"10s"`
	Host     string        `env:"BD_HOST" env-required:"true"`
	Port     int           `env:"BD_PORT" env-required:"true"`
	User     string        `env:"BD_USER" env-required:"true"`
	Password string        `env:"BD_PASSWORD" env-required:"true"`
	DBName   string        `env:"BD_DBNAME" env-required:"true"`
	SSLMode  string        `env:"BD_SSL_MODE" env-default:"disable"`
	Schema   string        `env:"BD_SCHEMA" env-default:"public"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type HTTPServer struct {
	Port        string        `env:"HTTP_PORT" env-default:"8082"`
	Timeout     time.Duration `env:"HTTP_TIMEOUT" env-default:"2m"`
	IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type Rates struct {
	// RemoteURL is the rate-source procedure endpoint. It accepts
	// {"action":"refresh"} and {"action":"convert",...} POST bodies.
	RemoteURL       string        `env:"RATES_REMOTE_URL" env-required:"true"`
	RemoteTimeout   time.Duration `env:"RATES_REMOTE_TIMEOUT" env-default:"15s"`
	StaleAfter      time.Duration `env:"RATES_STALE_AFTER" env-default:"24h"`
	CheckInterval   time.Duration `env:"RATES_CHECK_INTERVAL" env-default:"1h"`
	DefaultCurrency string        `env:"RATES_DEFAULT_CURRENCY" env-default:"USD"`
}

func NewConfig() *Config {
	cfg := &Config{}

	_ = godotenv.Load(".env")

	if err := cleanenv.ReadEnv(cfg); err != nil {
		log.Fatal("Error reading env: ", err)
	}

	return cfg
}
