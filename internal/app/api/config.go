package api

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	shippingcache "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/cache"
	shippingamqp "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/events/amqp"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	RouteCacheTTL     time.Duration
	AMQPURL           string
	EventsExchange    string

	// RouteCacheDisabled reads every route from storage. Short-lived processes such as shipmentctl set it.
	RouteCacheDisabled bool
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		RouteCacheTTL:     shippingcache.DefaultTTL,
		AMQPURL:           strings.TrimSpace(os.Getenv("AMQP_URL")),
		EventsExchange:    envDefault("SHIPMENT_EVENTS_EXCHANGE", shippingamqp.DefaultExchange),
	}
	cfg.RouteCacheDisabled = isTruthy(os.Getenv("ROUTE_CACHE_DISABLED"))
	if raw := strings.TrimSpace(os.Getenv("ROUTE_CACHE_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("ROUTE_CACHE_TTL must be a positive duration such as 30m")
		}
		cfg.RouteCacheTTL = ttl
	}
	return cfg, nil
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string {
	return ":" + c.Port
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
