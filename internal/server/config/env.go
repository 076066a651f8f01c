package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/library/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays values from environment variables. A dotenv file
// (-env-file, default ".env") is loaded first when it exists; variables
// already set in the process environment take precedence over it.
//
// Recognised variables: ADDRESS, DATABASE_DSN, JWT_SECRET, ACCESS_TOKEN_TTL,
// SALT_LENGTH, PASSWORD_HASH_SCHEME, LIBRARY_ADD_REQUIRES_AUTH,
// ENABLE_HASH_DEMO, REDIS_ADDR, RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW,
// LOG_LEVEL. Malformed numeric, boolean or duration values panic, the same
// way a malformed JSON config does.
func parseEnv(config *Config) {
	if err := godotenv.Load(flagx.EnvFileFlag()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString("ADDRESS", &config.EndpointAddrHTTP)
	envString("DATABASE_DSN", &config.DatabaseDSN)
	envString("JWT_SECRET", &config.SecretKey)
	envDuration("ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	envInt("SALT_LENGTH", &config.SaltLength)
	envString("PASSWORD_HASH_SCHEME", &config.PasswordHashScheme)
	envBool("LIBRARY_ADD_REQUIRES_AUTH", &config.LibraryAddRequiresAuth)
	envBool("ENABLE_HASH_DEMO", &config.EnableHashDemo)
	envString("REDIS_ADDR", &config.RedisAddr)
	envInt("RATE_LIMIT_REQUESTS", &config.RateLimitRequests)
	envDuration("RATE_LIMIT_WINDOW", &config.RateLimitWindow)
	envString("LOG_LEVEL", &config.LogLevel)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	*dst = n
}

func envBool(key string, dst *bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(err)
	}
	*dst = b
}

func envDuration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
