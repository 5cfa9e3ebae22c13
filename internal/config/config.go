package config

import (
	"os"
	"strconv"
)

type Config struct {
	BaseURL               string
	RequestTimeoutSeconds int
	StatePath             string
	Debug                 bool
}

func Load() Config {
	timeout, err := strconv.Atoi(getEnv("BANHANG_TIMEOUT_SECONDS", "15"))
	if err != nil || timeout < 1 {
		timeout = 15
	}

	return Config{
		BaseURL:               getEnv("BANHANG_API_URL", "http://127.0.0.1:8080/api/v1"),
		RequestTimeoutSeconds: timeout,
		StatePath:             os.Getenv("BANHANG_STATE_PATH"),
		Debug:                 getEnv("BANHANG_DEBUG", "") != "",
	}
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
