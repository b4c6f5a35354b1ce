package config

import (
	"log"
	"os"

	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env            string `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath    string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	RedisAddr      string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	ClinicTimezone string `yaml:"clinic_timezone" env:"CLINIC_TIMEZONE" env-default:"Europe/Paris"`
	HTTPServer     `yaml:"http_server"`
	Grid           Grid `yaml:"grid"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

// Grid mirrors timegrid.Config; the defaults are 40px slots of 30 minutes
// over a 06:00-22:00 day.
type Grid struct {
	SlotHeight      float64 `yaml:"slot_height" env-default:"40"`
	IntervalMinutes int     `yaml:"interval_minutes" env-default:"30"`
	StartHour       int     `yaml:"start_hour" env-default:"6"`
	EndHour         int     `yaml:"end_hour" env-default:"22"`
}

func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	return &cfg
}
