package s3

import "fmt"

// Config holds settings for NewFromConfig.
type Config struct {
	// Bucket is the bucket holding the objects (required).
	Bucket string

	// Prefix nests every key under a namespace within the bucket.
	Prefix string

	// Region overrides the region from the shared AWS configuration.
	Region string

	// Endpoint overrides the service endpoint, e.g. for S3-compatible
	// services or local emulators.
	Endpoint string

	// UsePathStyle addresses buckets as path segments instead of
	// subdomains. Most S3-compatible services require it.
	UsePathStyle bool

	// AccessKey, SecretKey and SessionToken configure static credentials.
	// When AccessKey is empty the default credential chain is used.
	AccessKey    string
	SecretKey    string
	SessionToken string

	// MaxAttempts bounds SDK-level attempts per request. Zero means one
	// attempt, leaving retries to the caller.
	MaxAttempts int
}

func (c *Config) validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if c.AccessKey != "" && c.SecretKey == "" {
		return fmt.Errorf("secret key is required when access key is set")
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max attempts must not be negative")
	}
	return nil
}
