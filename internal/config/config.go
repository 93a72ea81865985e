package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the server-level settings. Backend DSNs (DB_URL, REDIS_URL)
// stay with the infrastructure adapters that consume them.
type Config struct {
	HTTPAddr     string
	LogLevel     string
	LogFormat    string
	ResponderURL string
}

// Load reads configuration from the environment with sane defaults.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("RESPONDER_URL", "")

	return Config{
		HTTPAddr:     v.GetString("HTTP_ADDR"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		LogFormat:    v.GetString("LOG_FORMAT"),
		ResponderURL: v.GetString("RESPONDER_URL"),
	}
}
