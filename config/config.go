// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	migrate        = pflag.Bool("migrate", true, "Runs database migrations on startup")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDBDrivers = []string{"sqlite", "postgres"}
)

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("jwt.access_secret", "jwt_access_secret")
	v.BindEnv("jwt.refresh_secret", "jwt_refresh_secret")
	v.BindEnv("jwt.access_ttl", "jwt_access_ttl")
	v.BindEnv("jwt.refresh_ttl", "jwt_refresh_ttl")

	v.BindEnv("cloudflare.account_id", "cloudflare_account_id")
	v.BindEnv("cloudflare.access_key_id", "cloudflare_access_key_id")
	v.BindEnv("cloudflare.secret_access_key", "cloudflare_secret_access_key")
	v.BindEnv("cloudflare.bucket", "cloudflare_bucket")
	v.BindEnv("cloudflare.public_url", "cloudflare_public_url")

	v.BindEnv("upload.max_size", "upload_max_size")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	// Access tokens are short-lived, refresh tokens survive for weeks
	v.SetDefault("jwt.access_ttl", "15m")
	v.SetDefault("jwt.refresh_ttl", "720h")

	v.SetDefault("upload.max_size", 8)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("database dsn can't be empty")
	}

	if v.GetString("jwt.access_secret") == "" {
		return errors.New("jwt.access_secret can't be empty")
	}

	if v.GetString("jwt.refresh_secret") == "" {
		return errors.New("jwt.refresh_secret can't be empty")
	}

	// A shared secret would let a refresh token pass as an access token
	if v.GetString("jwt.access_secret") == v.GetString("jwt.refresh_secret") {
		return errors.New("jwt.access_secret and jwt.refresh_secret must differ")
	}

	if v.GetDuration("jwt.access_ttl") <= 0 {
		return errors.New("jwt.access_ttl must be bigger than 0")
	}

	if v.GetDuration("jwt.refresh_ttl") <= v.GetDuration("jwt.access_ttl") {
		return errors.New("jwt.refresh_ttl must be bigger than jwt.access_ttl")
	}

	if v.GetString("cloudflare.account_id") == "" {
		return errors.New("account id can't be empty")
	}
	if v.GetString("cloudflare.access_key_id") == "" {
		return errors.New("account access id can't be empty")
	}
	if v.GetString("cloudflare.secret_access_key") == "" {
		return errors.New("secret access key can't be empty")
	}
	if v.GetString("cloudflare.bucket") == "" {
		return errors.New("bucket can't be empty")
	}
	if v.GetString("cloudflare.public_url") == "" {
		return errors.New("public url for the media bucket can't be empty")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	v.Set("db.migrate", *migrate)
	return nil
}
