// Package config loads storefs settings for command line tools.
//
// Settings are merged from several sources, lowest priority first:
//
//  1. built-in defaults
//  2. a TOML file
//  3. one or more .env files
//  4. the process environment
//
// Environment variables use the STOREFS_ prefix, for example
// STOREFS_BACKEND=minio or STOREFS_MINIO_BUCKET=data. CHFS_SERVER is
// accepted as an alias for STOREFS_SERVER.
package config

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/jmgilman/go/fs/storefs/errors"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Backend names accepted in Settings.Backend.
const (
	BackendMemory = "memory"
	BackendLocal  = "local"
	BackendMinIO  = "minio"
	BackendS3     = "s3"
	BackendSFTP   = "sftp"
)

// Backends lists every supported backend.
var Backends = []string{BackendMemory, BackendLocal, BackendMinIO, BackendS3, BackendSFTP}

// Settings selects and configures a backing store.
type Settings struct {
	// Backend names the store implementation (default: memory).
	Backend string `toml:"backend"`

	// Scheme is the path scheme (default: store).
	Scheme string `toml:"scheme"`

	// Server is the address of the remote store. It fills in the endpoint
	// or address of the selected backend when that is not set explicitly.
	Server string `toml:"server"`

	// DeleteConcurrency bounds parallel deletions during rmtree.
	DeleteConcurrency int `toml:"delete_concurrency"`

	// LogLevel is one of debug, info, warn or error (default: info).
	LogLevel string `toml:"log_level"`

	Local LocalSettings `toml:"local"`
	MinIO MinIOSettings `toml:"minio"`
	S3    S3Settings    `toml:"s3"`
	SFTP  SFTPSettings  `toml:"sftp"`
}

// LocalSettings configures the local directory backend.
type LocalSettings struct {
	Dir string `toml:"dir"`
}

// MinIOSettings configures the MinIO backend.
type MinIOSettings struct {
	Endpoint  string `toml:"endpoint"`
	Bucket    string `toml:"bucket"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Prefix    string `toml:"prefix"`
}

// S3Settings configures the AWS S3 backend.
type S3Settings struct {
	Bucket       string `toml:"bucket"`
	Prefix       string `toml:"prefix"`
	Region       string `toml:"region"`
	Endpoint     string `toml:"endpoint"`
	UsePathStyle bool   `toml:"use_path_style"`
	AccessKey    string `toml:"access_key"`
	SecretKey    string `toml:"secret_key"`
	SessionToken string `toml:"session_token"`
	MaxAttempts  int    `toml:"max_attempts"`
}

// SFTPSettings configures the SFTP backend.
type SFTPSettings struct {
	Addr           string   `toml:"addr"`
	User           string   `toml:"user"`
	Password       string   `toml:"password"`
	PrivateKeyFile string   `toml:"private_key_file"`
	KnownHostsFile string   `toml:"known_hosts_file"`
	Insecure       bool     `toml:"insecure_ignore_host_key"`
	Dir            string   `toml:"dir"`
	Timeout        Duration `toml:"timeout"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Backend:           BackendMemory,
		Scheme:            "store",
		DeleteConcurrency: 10,
		LogLevel:          "info",
		Local:             LocalSettings{Dir: "."},
		S3:                S3Settings{Region: "us-east-1"},
		SFTP:              SFTPSettings{Dir: "."},
	}
}

// Options controls where Load looks for settings.
type Options struct {
	// File is an optional TOML file. A missing file is an error.
	File string

	// EnvFiles are optional .env files. Missing files are an error.
	EnvFiles []string

	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load merges defaults, the TOML file, .env files and the environment.
func Load(opts Options) (*Settings, error) {
	s := Default()

	if opts.File != "" {
		if err := s.decodeFile(opts.File); err != nil {
			return nil, err
		}
	}

	dotenv := map[string]string{}
	if len(opts.EnvFiles) > 0 {
		var err error
		dotenv, err = godotenv.Read(opts.EnvFiles...)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "read env files")
		}
	}

	lookupEnv := opts.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	lookup := func(name string) (string, bool) {
		if v, ok := lookupEnv(name); ok {
			return v, true
		}
		v, ok := dotenv[name]
		return v, ok
	}

	if err := s.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.CodeInvalidConfig, "read config file %s", path)
	}
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		return errors.Wrapf(err, errors.CodeInvalidConfig, "parse config file %s", path)
	}
	return nil
}

// Validate checks the settings that do not depend on the backend.
// Backend specific checks happen when the store is constructed.
func (s *Settings) Validate() error {
	if !slices.Contains(Backends, s.Backend) {
		return errors.Newf(errors.CodeInvalidConfig, "unknown backend %q (want one of %v)", s.Backend, Backends)
	}
	if s.DeleteConcurrency < 0 {
		return errors.New(errors.CodeInvalidConfig, "delete_concurrency must not be negative")
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.Newf(errors.CodeInvalidConfig, "unknown log level %q", s.LogLevel)
	}
	return nil
}

// MinIOEndpoint returns the MinIO endpoint, falling back to Server.
func (s *Settings) MinIOEndpoint() string {
	return firstNonEmpty(s.MinIO.Endpoint, s.Server)
}

// S3Endpoint returns the S3 endpoint, falling back to Server.
func (s *Settings) S3Endpoint() string {
	return firstNonEmpty(s.S3.Endpoint, s.Server)
}

// SFTPAddr returns the SFTP address, falling back to Server.
func (s *Settings) SFTPAddr() string {
	return firstNonEmpty(s.SFTP.Addr, s.Server)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// String summarizes the settings without secrets.
func (s *Settings) String() string {
	return fmt.Sprintf("backend=%s scheme=%s server=%s", s.Backend, s.Scheme, s.Server)
}
