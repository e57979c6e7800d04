package main

import (
	"context"
	"fmt"

	"github.com/jmgilman/go/fs/storefs/config"
	"github.com/jmgilman/go/fs/storefs/store"
	billystore "github.com/jmgilman/go/fs/storefs/store/billy"
	"github.com/jmgilman/go/fs/storefs/store/memory"
	miniostore "github.com/jmgilman/go/fs/storefs/store/minio"
	s3store "github.com/jmgilman/go/fs/storefs/store/s3"
	sftpstore "github.com/jmgilman/go/fs/storefs/store/sftp"
)

// openStore builds the store client selected by s.Backend.
func openStore(ctx context.Context, s *config.Settings) (store.Client, error) {
	switch s.Backend {
	case config.BackendMemory:
		return memory.New(), nil

	case config.BackendLocal:
		st, err := billystore.NewLocal(s.Local.Dir)
		if err != nil {
			return nil, err
		}
		return st, nil

	case config.BackendMinIO:
		st, err := miniostore.New(miniostore.Config{
			Endpoint:  s.MinIOEndpoint(),
			Bucket:    s.MinIO.Bucket,
			AccessKey: s.MinIO.AccessKey,
			SecretKey: s.MinIO.SecretKey,
			UseSSL:    s.MinIO.UseSSL,
			Prefix:    s.MinIO.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return st, nil

	case config.BackendS3:
		st, err := s3store.NewFromConfig(ctx, s3store.Config{
			Bucket:       s.S3.Bucket,
			Prefix:       s.S3.Prefix,
			Region:       s.S3.Region,
			Endpoint:     s.S3Endpoint(),
			UsePathStyle: s.S3.UsePathStyle,
			AccessKey:    s.S3.AccessKey,
			SecretKey:    s.S3.SecretKey,
			SessionToken: s.S3.SessionToken,
			MaxAttempts:  s.S3.MaxAttempts,
		})
		if err != nil {
			return nil, err
		}
		return st, nil

	case config.BackendSFTP:
		cfg := sftpstore.Config{
			Addr:                  s.SFTPAddr(),
			User:                  s.SFTP.User,
			Password:              s.SFTP.Password,
			KnownHostsFile:        s.SFTP.KnownHostsFile,
			InsecureIgnoreHostKey: s.SFTP.Insecure,
			Dir:                   s.SFTP.Dir,
			Timeout:               s.SFTP.Timeout.Duration,
		}
		if s.SFTP.PrivateKeyFile != "" {
			key, err := sftpstore.ReadPrivateKey(s.SFTP.PrivateKeyFile)
			if err != nil {
				return nil, err
			}
			cfg.PrivateKey = key
		}
		st, err := sftpstore.Dial(cfg)
		if err != nil {
			return nil, err
		}
		return st, nil
	}

	return nil, fmt.Errorf("unknown backend %q", s.Backend)
}
