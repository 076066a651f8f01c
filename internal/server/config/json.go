package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/library/internal/flagx"
	"github.com/dmitrijs2005/library/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// strings such as "336h" or integer nanoseconds. Absent fields leave the
// current value untouched, so booleans are pointers.
type JsonConfig struct {
	EndpointAddrHTTP            string          `json:"endpoint_addr_http"`
	DatabaseDSN                 string          `json:"database_dsn"`
	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	SaltLength                  int             `json:"salt_length"`
	PasswordHashScheme          string          `json:"password_hash_scheme"`
	LibraryAddRequiresAuth      *bool           `json:"library_add_requires_auth"`
	EnableHashDemo              *bool           `json:"enable_hash_demo"`
	RedisAddr                   string          `json:"redis_addr"`
	RateLimitRequests           int             `json:"rate_limit_requests"`
	RateLimitWindow             *timex.Duration `json:"rate_limit_window"`
	LogLevel                    string          `json:"log_level"`
	ShutdownTimeout             *timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads the file named by -c/-config, if any, and copies the
// fields it sets into config. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.PasswordHashScheme, c.PasswordHashScheme)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RateLimitWindow != nil {
		config.RateLimitWindow = c.RateLimitWindow.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.SaltLength != 0 {
		config.SaltLength = c.SaltLength
	}
	if c.RateLimitRequests != 0 {
		config.RateLimitRequests = c.RateLimitRequests
	}
	if c.LibraryAddRequiresAuth != nil {
		config.LibraryAddRequiresAuth = *c.LibraryAddRequiresAuth
	}
	if c.EnableHashDemo != nil {
		config.EnableHashDemo = *c.EnableHashDemo
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
