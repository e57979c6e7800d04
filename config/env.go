package config

import (
	"strconv"
	"time"

	"github.com/jmgilman/go/fs/storefs/errors"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "STOREFS_"

type binding struct {
	names []string // first match wins
	set   func(s *Settings, v string) error
}

func str(field func(*Settings) *string) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		*field(s) = v
		return nil
	}
}

func boolean(field func(*Settings) *bool) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(s) = b
		return nil
	}
}

func integer(field func(*Settings) *int) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(s) = n
		return nil
	}
}

func env(name string, set func(*Settings, string) error, aliases ...string) binding {
	return binding{names: append([]string{EnvPrefix + name}, aliases...), set: set}
}

var bindings = []binding{
	env("BACKEND", str(func(s *Settings) *string { return &s.Backend })),
	env("SCHEME", str(func(s *Settings) *string { return &s.Scheme })),
	env("SERVER", str(func(s *Settings) *string { return &s.Server }), "CHFS_SERVER"),
	env("DELETE_CONCURRENCY", integer(func(s *Settings) *int { return &s.DeleteConcurrency })),
	env("LOG_LEVEL", str(func(s *Settings) *string { return &s.LogLevel })),

	env("LOCAL_DIR", str(func(s *Settings) *string { return &s.Local.Dir })),

	env("MINIO_ENDPOINT", str(func(s *Settings) *string { return &s.MinIO.Endpoint })),
	env("MINIO_BUCKET", str(func(s *Settings) *string { return &s.MinIO.Bucket })),
	env("MINIO_ACCESS_KEY", str(func(s *Settings) *string { return &s.MinIO.AccessKey })),
	env("MINIO_SECRET_KEY", str(func(s *Settings) *string { return &s.MinIO.SecretKey })),
	env("MINIO_USE_SSL", boolean(func(s *Settings) *bool { return &s.MinIO.UseSSL })),
	env("MINIO_PREFIX", str(func(s *Settings) *string { return &s.MinIO.Prefix })),

	env("S3_BUCKET", str(func(s *Settings) *string { return &s.S3.Bucket })),
	env("S3_PREFIX", str(func(s *Settings) *string { return &s.S3.Prefix })),
	env("S3_REGION", str(func(s *Settings) *string { return &s.S3.Region }), "AWS_REGION"),
	env("S3_ENDPOINT", str(func(s *Settings) *string { return &s.S3.Endpoint })),
	env("S3_USE_PATH_STYLE", boolean(func(s *Settings) *bool { return &s.S3.UsePathStyle })),
	env("S3_ACCESS_KEY", str(func(s *Settings) *string { return &s.S3.AccessKey })),
	env("S3_SECRET_KEY", str(func(s *Settings) *string { return &s.S3.SecretKey })),
	env("S3_SESSION_TOKEN", str(func(s *Settings) *string { return &s.S3.SessionToken })),
	env("S3_MAX_ATTEMPTS", integer(func(s *Settings) *int { return &s.S3.MaxAttempts })),

	env("SFTP_ADDR", str(func(s *Settings) *string { return &s.SFTP.Addr })),
	env("SFTP_USER", str(func(s *Settings) *string { return &s.SFTP.User })),
	env("SFTP_PASSWORD", str(func(s *Settings) *string { return &s.SFTP.Password })),
	env("SFTP_PRIVATE_KEY_FILE", str(func(s *Settings) *string { return &s.SFTP.PrivateKeyFile })),
	env("SFTP_KNOWN_HOSTS_FILE", str(func(s *Settings) *string { return &s.SFTP.KnownHostsFile })),
	env("SFTP_INSECURE_IGNORE_HOST_KEY", boolean(func(s *Settings) *bool { return &s.SFTP.Insecure })),
	env("SFTP_DIR", str(func(s *Settings) *string { return &s.SFTP.Dir })),
	env("SFTP_TIMEOUT", func(s *Settings, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		s.SFTP.Timeout = Duration{d}
		return nil
	}),
}

// applyEnv overrides settings from the variables visible through lookup.
func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	for _, b := range bindings {
		for _, name := range b.names {
			v, ok := lookup(name)
			if !ok {
				continue
			}
			if err := b.set(s, v); err != nil {
				return errors.Wrapf(err, errors.CodeInvalidConfig, "invalid value for %s", name)
			}
			break
		}
	}
	return nil
}
