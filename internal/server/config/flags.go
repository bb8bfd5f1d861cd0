package config

import (
	"flag"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/flagx"
)

var knownFlags = []string{
	"-a", "-g", "-d", "-k", "-iss", "-aud", "-t", "-l", "-dev", "-seed", "-origins",
	"-s3-user", "-s3-password", "-s3-bucket", "-s3-region", "-s3-endpoint", "-s3-public-url",
}

// parseFlags populates Config fields from command-line flags.
//
//	-a string    HTTP bind address (e.g. ":8080")
//	-g string    gRPC health bind address
//	-d string    PostgreSQL DSN
//	-k string    JWT HMAC signing key
//	-iss string  JWT issuer
//	-aud string  JWT audience
//	-t int       token validity, minutes
//	-l           enable lockout on failed logins
//	-dev         development mode
//	-seed        seed sample recipes into an empty catalog
//	-origins     comma separated CORS origins
//	-s3-*        object storage settings
//
// Boolean flags must use the "-l=false" form to be switched off.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run gRPC health server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTKey, "k", config.JWTKey, "JWT signing key")
	fs.StringVar(&config.JWTIssuer, "iss", config.JWTIssuer, "JWT issuer")
	fs.StringVar(&config.JWTAudience, "aud", config.JWTAudience, "JWT audience")
	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity duration (in minutes)")
	fs.BoolVar(&config.LockoutOnFailure, "l", config.LockoutOnFailure, "count failed logins toward lockout")
	fs.BoolVar(&config.Development, "dev", config.Development, "development mode")
	fs.BoolVar(&config.SeedData, "seed", config.SeedData, "seed sample recipes")
	origins := fs.String("origins", strings.Join(config.AllowedOrigins, ","), "comma separated CORS origins")

	fs.StringVar(&config.S3RootUser, "s3-user", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "s3-password", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "s3-bucket", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "s3-region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "s3-endpoint", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicBaseURL, "s3-public-url", config.S3PublicBaseURL, "public base URL of uploaded images")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.AllowedOrigins = splitOrigins(*origins)
	return nil
}

func splitOrigins(s string) []string {
	out := []string{}
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
