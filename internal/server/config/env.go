package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "COMPLAINTDESK_"

// parseEnv loads envFile (if present) into the process environment without
// overriding variables that are already set, then applies COMPLAINTDESK_*
// variables to config.
func parseEnv(config *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return applyEnv(config, os.LookupEnv)
}

// applyEnv overlays values found through lookup. Malformed numbers,
// durations and booleans are reported rather than silently ignored.
func applyEnv(config *Config, lookup func(string) (string, bool)) error {
	e := envReader{lookup: lookup}

	e.str("ADDR", &config.HTTPAddr)
	e.str("DATABASE_DSN", &config.DatabaseDSN)
	e.str("SECRET_KEY", &config.SecretKey)
	e.duration("SESSION_TTL", &config.SessionTTL)
	e.duration("TOKEN_TTL", &config.TokenTTL)
	e.duration("RATE_LIMIT_WINDOW", &config.RateLimitWindow)
	e.integer("RATE_LIMIT_MAX", &config.RateLimitMax)
	e.integer("BCRYPT_COST", &config.BcryptCost)
	e.str("SESSION_BACKEND", &config.SessionBackend)
	e.str("REDIS_ADDR", &config.RedisAddr)
	e.str("REDIS_PASSWORD", &config.RedisPassword)
	e.integer("REDIS_DB", &config.RedisDB)
	e.str("UPLOAD_BACKEND", &config.UploadBackend)
	e.str("UPLOAD_DIR", &config.UploadDir)
	e.int64("MAX_UPLOAD_SIZE", &config.MaxUploadSize)
	e.str("S3_ACCESS_KEY", &config.S3AccessKey)
	e.str("S3_SECRET_KEY", &config.S3SecretKey)
	e.str("S3_BUCKET", &config.S3Bucket)
	e.str("S3_REGION", &config.S3Region)
	e.str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	e.boolean("COOKIE_SECURE", &config.CookieSecure)
	e.list("TRUSTED_PROXIES", &config.TrustedProxies)
	e.str("LOG_LEVEL", &config.LogLevel)

	return errors.Join(e.errs...)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(envPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envReader) fail(key string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if v, ok := e.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = d
	}
}

func (e *envReader) integer(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) int64(key string, dst *int64) {
	if v, ok := e.get(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) list(key string, dst *[]string) {
	if v, ok := e.get(key); ok {
		var out []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		*dst = out
	}
}
