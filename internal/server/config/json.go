package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/recipekeeper/internal/flagx"
	"github.com/dmitrijs2005/recipekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted. Pointer
// fields distinguish "absent" from "false/zero".
type JsonConfig struct {
	EndpointAddrHTTP        string          `json:"endpoint_addr_http"`
	EndpointAddrGRPC        string          `json:"endpoint_addr_grpc"`
	DatabaseDSN             string          `json:"database_dsn"`
	JWTKey                  string          `json:"jwt_key"`
	JWTIssuer               string          `json:"jwt_issuer"`
	JWTAudience             string          `json:"jwt_audience"`
	TokenValidityDuration   *timex.Duration `json:"token_validity_duration"`
	LockoutOnFailure        *bool           `json:"lockout_on_failure"`
	MaxFailedAccessAttempts *int            `json:"max_failed_access_attempts"`
	LockoutDuration         *timex.Duration `json:"lockout_duration"`
	Development             *bool           `json:"development"`
	SeedData                *bool           `json:"seed_data"`
	AllowedOrigins          []string        `json:"allowed_origins"`
	S3RootUser              string          `json:"s3_root_user"`
	S3RootPassword          string          `json:"s3_root_password"`
	S3Bucket                string          `json:"s3_bucket"`
	S3Region                string          `json:"s3_region"`
	S3BaseEndpoint          string          `json:"s3_base_endpoint"`
	S3PublicBaseURL         string          `json:"s3_public_base_url"`
}

// parseJson overlays values from the file named by -c / -config. Keys that
// are missing from the file leave the current value untouched. Without the
// flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.JWTKey, c.JWTKey)
	setString(&config.JWTIssuer, c.JWTIssuer)
	setString(&config.JWTAudience, c.JWTAudience)
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.LockoutOnFailure != nil {
		config.LockoutOnFailure = *c.LockoutOnFailure
	}
	if c.MaxFailedAccessAttempts != nil {
		config.MaxFailedAccessAttempts = *c.MaxFailedAccessAttempts
	}
	if c.LockoutDuration != nil {
		config.LockoutDuration = c.LockoutDuration.Duration
	}
	if c.Development != nil {
		config.Development = *c.Development
	}
	if c.SeedData != nil {
		config.SeedData = *c.SeedData
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicBaseURL, c.S3PublicBaseURL)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
