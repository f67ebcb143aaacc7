package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	Env         string `mapstructure:"ENV"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// Window a client has to pay after provider approval, in hours.
	ApprovalWindowHours int `mapstructure:"APPROVAL_WINDOW_HOURS"`

	// Payment gateway.
	GatewayBaseURL       string `mapstructure:"GATEWAY_BASE_URL"`
	GatewayAPIKey        string `mapstructure:"GATEWAY_API_KEY"`
	GatewayIntegrationID string `mapstructure:"GATEWAY_INTEGRATION_ID"`
	GatewayFrameBase     string `mapstructure:"GATEWAY_FRAME_BASE"`
	GatewayFrameID       string `mapstructure:"GATEWAY_FRAME_ID"`
	GatewayHMACSecret    string `mapstructure:"GATEWAY_HMAC_SECRET"`
	GatewayTimeoutSec    int    `mapstructure:"GATEWAY_TIMEOUT_SEC"`
	Currency             string `mapstructure:"CURRENCY"`
}

var AppConfig Config

func LoadConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	// AutomaticEnv alone is not enough for Unmarshal: keys that have
	// neither a default nor a config-file entry are unknown to viper,
	// so env-only secrets must be bound explicitly.
	for _, key := range []string{
		"JWT_SECRET",
		"GATEWAY_API_KEY",
		"GATEWAY_INTEGRATION_ID",
		"GATEWAY_HMAC_SECRET",
		"GATEWAY_FRAME_ID",
	} {
		_ = viper.BindEnv(key)
	}

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APPROVAL_WINDOW_HOURS", 24)
	viper.SetDefault("GATEWAY_BASE_URL", "https://accept.paymob.com/api")
	viper.SetDefault("GATEWAY_FRAME_BASE", "https://accept.paymob.com/api/acceptance/iframes")
	viper.SetDefault("GATEWAY_TIMEOUT_SEC", 20)
	viper.SetDefault("CURRENCY", "SAR")
	viper.SetDefault("DATABASE_URL", "tourbook.db")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func (c Config) ApprovalWindow() time.Duration {
	return time.Duration(c.ApprovalWindowHours) * time.Hour
}

func (c Config) GatewayTimeout() time.Duration {
	return time.Duration(c.GatewayTimeoutSec) * time.Second
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
