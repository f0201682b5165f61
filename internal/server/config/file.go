package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/complaintdesk/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of a configuration file. Pointer fields
// distinguish "absent" from "zero", so a file only overrides what it names.
// Durations accept "90s" style strings or integer nanoseconds.
type FileConfig struct {
	HTTPAddr    *string `json:"http_addr" yaml:"http_addr"`
	DatabaseDSN *string `json:"database_dsn" yaml:"database_dsn"`
	SecretKey   *string `json:"secret_key" yaml:"secret_key"`

	SessionTTL      *timex.Duration `json:"session_ttl" yaml:"session_ttl"`
	TokenTTL        *timex.Duration `json:"token_ttl" yaml:"token_ttl"`
	RateLimitWindow *timex.Duration `json:"rate_limit_window" yaml:"rate_limit_window"`
	RateLimitMax    *int            `json:"rate_limit_max" yaml:"rate_limit_max"`
	BcryptCost      *int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`

	SessionBackend *string `json:"session_backend" yaml:"session_backend"`
	RedisAddr      *string `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword  *string `json:"redis_password" yaml:"redis_password"`
	RedisDB        *int    `json:"redis_db" yaml:"redis_db"`

	UploadBackend  *string `json:"upload_backend" yaml:"upload_backend"`
	UploadDir      *string `json:"upload_dir" yaml:"upload_dir"`
	MaxUploadSize  *int64  `json:"max_upload_size" yaml:"max_upload_size"`
	S3AccessKey    *string `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey    *string `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3Bucket       *string `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region       *string `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`

	CookieSecure   *bool    `json:"cookie_secure" yaml:"cookie_secure"`
	TrustedProxies []string `json:"trusted_proxies" yaml:"trusted_proxies"`
	LogLevel       *string  `json:"log_level" yaml:"log_level"`
}

// parseFile reads path and overlays its values onto config. An empty path is
// a no-op. Files ending in .yaml or .yml are decoded as YAML, everything
// else as JSON.
func parseFile(config *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(config *Config) {
	setString(&config.HTTPAddr, fc.HTTPAddr)
	setString(&config.DatabaseDSN, fc.DatabaseDSN)
	setString(&config.SecretKey, fc.SecretKey)

	if fc.SessionTTL != nil {
		config.SessionTTL = fc.SessionTTL.Duration
	}
	if fc.TokenTTL != nil {
		config.TokenTTL = fc.TokenTTL.Duration
	}
	if fc.RateLimitWindow != nil {
		config.RateLimitWindow = fc.RateLimitWindow.Duration
	}
	setInt(&config.RateLimitMax, fc.RateLimitMax)
	setInt(&config.BcryptCost, fc.BcryptCost)

	setString(&config.SessionBackend, fc.SessionBackend)
	setString(&config.RedisAddr, fc.RedisAddr)
	setString(&config.RedisPassword, fc.RedisPassword)
	setInt(&config.RedisDB, fc.RedisDB)

	setString(&config.UploadBackend, fc.UploadBackend)
	setString(&config.UploadDir, fc.UploadDir)
	if fc.MaxUploadSize != nil {
		config.MaxUploadSize = *fc.MaxUploadSize
	}
	setString(&config.S3AccessKey, fc.S3AccessKey)
	setString(&config.S3SecretKey, fc.S3SecretKey)
	setString(&config.S3Bucket, fc.S3Bucket)
	setString(&config.S3Region, fc.S3Region)
	setString(&config.S3BaseEndpoint, fc.S3BaseEndpoint)

	if fc.CookieSecure != nil {
		config.CookieSecure = *fc.CookieSecure
	}
	if fc.TrustedProxies != nil {
		config.TrustedProxies = fc.TrustedProxies
	}
	setString(&config.LogLevel, fc.LogLevel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
