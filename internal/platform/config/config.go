package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Allocation policy
	CategoryPriority  domain.CategoryPriority
	OverpaymentPolicy domain.OverpaymentPolicy

	// Room release eventing
	KafkaBrokers     []string
	RoomReleaseTopic string

	// Requests per period for the rate limit middleware, e.g. "100-M".
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("CATEGORY_PRIORITY", "")
	viper.SetDefault("OVERPAYMENT_POLICY", string(domain.OverpaymentFloating))
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("ROOM_RELEASE_TOPIC", "room.release")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}
	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.RoomReleaseTopic = viper.GetString("ROOM_RELEASE_TOPIC")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	if brokers := viper.GetString("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	priority, err := parseCategoryPriority(viper.GetString("CATEGORY_PRIORITY"))
	if err != nil {
		return nil, err
	}
	cfg.CategoryPriority = priority

	policy := domain.OverpaymentPolicy(viper.GetString("OVERPAYMENT_POLICY"))
	switch policy {
	case domain.OverpaymentFloating, domain.OverpaymentCreditBalance:
		cfg.OverpaymentPolicy = policy
	default:
		return nil, fmt.Errorf("invalid OVERPAYMENT_POLICY %q", policy)
	}

	return cfg, nil
}

// parseCategoryPriority parses a comma separated category list, e.g.
// "RENT,ADMIN_FEE,UTILITY,DEPOSIT,PENALTY". An empty value keeps the default
// ordering. Every category must appear exactly once so the allocation order
// is total.
func parseCategoryPriority(raw string) (domain.CategoryPriority, error) {
	if raw == "" {
		return domain.DefaultCategoryPriority, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) != len(domain.DefaultCategoryPriority) {
		return nil, fmt.Errorf("CATEGORY_PRIORITY must list all %d categories, got %d", len(domain.DefaultCategoryPriority), len(parts))
	}
	priority := make(domain.CategoryPriority, 0, len(parts))
	seen := make(map[domain.Category]bool, len(parts))
	for _, part := range parts {
		category, err := domain.ParseCategory(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid CATEGORY_PRIORITY entry %q: %w", part, err)
		}
		if seen[category] {
			return nil, fmt.Errorf("duplicate CATEGORY_PRIORITY entry %q", category)
		}
		seen[category] = true
		priority = append(priority, category)
	}
	return priority, nil
}
