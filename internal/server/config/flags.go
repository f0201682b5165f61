package config

import (
	"io"

	"github.com/dmitrijs2005/complaintdesk/internal/flagx"
	"github.com/spf13/pflag"
)

// parseFlags overlays command-line flags onto config. Arguments that do not
// belong to this flag set are filtered out first with flagx.FilterFlagSet,
// so tools that add their own flags (cmd/adduser) can share os.Args.
//
// Short forms:
//
//	-a  HTTP bind address
//	-d  PostgreSQL DSN
//	-s  JWT HMAC secret key
//	-t  token validity
//	-u  upload directory
func parseFlags(config *Config, args []string) error {
	fs := newFlagSet(config)
	return fs.Parse(flagx.FilterFlagSet(args, fs))
}

func newFlagSet(config *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("complaintdesk", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVarP(&config.HTTPAddr, "addr", "a", config.HTTPAddr, "address and port to run server")
	fs.StringVarP(&config.DatabaseDSN, "database-dsn", "d", config.DatabaseDSN, "database DSN")
	fs.StringVarP(&config.SecretKey, "secret-key", "s", config.SecretKey, "JWT signing secret")

	fs.DurationVar(&config.SessionTTL, "session-ttl", config.SessionTTL, "session lifetime")
	fs.DurationVarP(&config.TokenTTL, "token-ttl", "t", config.TokenTTL, "token lifetime")
	fs.DurationVar(&config.RateLimitWindow, "rate-limit-window", config.RateLimitWindow, "login rate limit window")
	fs.IntVar(&config.RateLimitMax, "rate-limit-max", config.RateLimitMax, "login attempts allowed per window")
	fs.IntVar(&config.BcryptCost, "bcrypt-cost", config.BcryptCost, "bcrypt work factor")

	fs.StringVar(&config.SessionBackend, "session-backend", config.SessionBackend, "session store: memory or redis")
	fs.StringVar(&config.RedisAddr, "redis-addr", config.RedisAddr, "redis address")
	fs.StringVar(&config.RedisPassword, "redis-password", config.RedisPassword, "redis password")
	fs.IntVar(&config.RedisDB, "redis-db", config.RedisDB, "redis database number")

	fs.StringVar(&config.UploadBackend, "upload-backend", config.UploadBackend, "upload storage: local or s3")
	fs.StringVarP(&config.UploadDir, "upload-dir", "u", config.UploadDir, "local upload directory")
	fs.Int64Var(&config.MaxUploadSize, "max-upload-size", config.MaxUploadSize, "maximum request body size for complaint uploads, bytes")
	fs.StringVar(&config.S3AccessKey, "s3-access-key", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "s3-secret-key", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "s3-bucket", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "s3-region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "s3-base-endpoint", config.S3BaseEndpoint, "S3 base endpoint (e.g. http://127.0.0.1:9000/)")

	fs.BoolVar(&config.CookieSecure, "cookie-secure", config.CookieSecure, "mark auth cookies Secure")
	fs.StringSliceVar(&config.TrustedProxies, "trusted-proxies", config.TrustedProxies, "comma-separated proxy addresses or CIDRs whose X-Forwarded-For is trusted")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "debug, info, warn or error")

	return fs
}
