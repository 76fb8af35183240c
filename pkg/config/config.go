package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort int

	DatabaseDSN string

	MarketplaceBaseURL string
	ShippingBaseURL    string
	StripeSecretKey    string

	DefaultCurrency string
}

func Load() Config {
	return Config{
		AppEnv:             getEnv("APP_ENV", "dev"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		HTTPPort:           getEnvInt("HTTP_PORT", 8080),
		DatabaseDSN:        getEnv("DATABASE_DSN", "host=localhost user=storefront password=storefront dbname=storefront port=5432 sslmode=disable"),
		MarketplaceBaseURL: getEnv("MARKETPLACE_BASE_URL", "http://localhost:9001"),
		ShippingBaseURL:    getEnv("SHIPPING_BASE_URL", "http://localhost:9002"),
		StripeSecretKey:    getEnv("STRIPE_SECRET_KEY", ""),
		DefaultCurrency:    getEnv("DEFAULT_CURRENCY", "EUR"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}
