package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs, int64 for money amounts expressed in cents.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	DefaultDailyRateCents int64 // daily rate applied when a vehicle type has no configured rate

	DiscrepancySmallCents int64 // cash delta at or below this magnitude counts as balanced
	DiscrepancyLargeCents int64 // cash delta above this magnitude counts as a major discrepancy

	OverstayEnabled        bool    // whether the overstay penalty applies at all
	OverstayThresholdHours int     // parked hours beyond which the penalty kicks in
	OverstayMultiplier     float64 // rate multiplier for penalised days
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The overstay knobs
// are optional and fall back to a disabled policy.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),                   // environment (dev/test/prod)
		Port:           must("APP_PORT"),                  // port to bind the HTTP server
		DBUser:         must("DB_USER"),                   // database user
		DBPass:         os.Getenv("DB_PASS"),              // database password (empty allowed)
		DBHost:         must("DB_HOST"),                   // database host
		DBPort:         must("DB_PORT"),                   // database port
		DBName:         must("DB_NAME"),                   // database name
		JWTSecret:      must("JWT_SECRET"),                // secret used for signing JWTs
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),   // TTL for access tokens in minutes
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"), // TTL for refresh tokens in days
		BcryptCost:     mustInt("BCRYPT_COST"),            // bcrypt cost factor

		DefaultDailyRateCents: mustInt64("DEFAULT_DAILY_RATE_CENTS"), // fallback daily rate in cents

		DiscrepancySmallCents: mustInt64("DISCREPANCY_SMALL_CENTS"), // balanced threshold in cents
		DiscrepancyLargeCents: mustInt64("DISCREPANCY_LARGE_CENTS"), // major threshold in cents

		OverstayEnabled:        boolOr("OVERSTAY_PENALTY_ENABLED", false), // penalty disabled unless switched on
		OverstayThresholdHours: intOr("OVERSTAY_THRESHOLD_HOURS", 24),     // default threshold of one billable day
		OverstayMultiplier:     floatOr("OVERSTAY_MULTIPLIER", 1.5),       // default penalty multiplier
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// mustInt64 is like mustInt but for 64-bit values such as cent amounts.
func mustInt64(key string) int64 {
	s := must(key)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Fatalf("invalid int64 for %s: %q", key, s)
	}
	return n
}

// boolOr returns the boolean value of an optional environment variable or
// the provided default when the variable is unset.  Invalid values are fatal.
func boolOr(key string, def bool) bool {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("invalid bool for %s: %q", key, s)
	}
	return b
}

// intOr returns the integer value of an optional environment variable or
// the provided default when the variable is unset.
func intOr(key string, def int) int {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// floatOr returns the float value of an optional environment variable or
// the provided default when the variable is unset.
func floatOr(key string, def float64) float64 {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Fatalf("invalid float for %s: %q", key, s)
	}
	return f
}
