package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/library/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, hours
//	-n int      salt length, bytes
//	-m string   password hash scheme (sha256 | argon2id)
//	-x bool     require a bearer token for POST /library/add
//	-z bool     enable GET /hash_demo
//	-r string   Redis address for the rate limiter
//	-q int      rate limit requests per window
//	-w int      rate limit window, seconds
//	-l string   log level
//
// Boolean flags take an explicit value ("-x false" or "-x=false").
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-n", "-m", "-x", "-z", "-r", "-q", "-w", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Hours()), "access token validity (in hours)")

	fs.IntVar(&config.SaltLength, "n", config.SaltLength, "salt length (in bytes)")
	fs.StringVar(&config.PasswordHashScheme, "m", config.PasswordHashScheme, "password hash scheme")

	addRequiresAuth := fs.String("x", strconv.FormatBool(config.LibraryAddRequiresAuth), "require auth for adding books")
	enableHashDemo := fs.String("z", strconv.FormatBool(config.EnableHashDemo), "enable hash demo endpoint")

	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.IntVar(&config.RateLimitRequests, "q", config.RateLimitRequests, "rate limit requests per window")
	rateLimitWindow := fs.Int("w", int(config.RateLimitWindow.Seconds()), "rate limit window (in seconds)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Conversions only apply to flags that were given, so a sub-hour
	// duration from the environment or JSON survives.
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Hour
		case "w":
			config.RateLimitWindow = time.Duration(*rateLimitWindow) * time.Second
		case "x":
			config.LibraryAddRequiresAuth, err = strconv.ParseBool(*addRequiresAuth)
		case "z":
			config.EnableHashDemo, err = strconv.ParseBool(*enableHashDemo)
		}
	})
	if err != nil {
		panic(err)
	}
}
