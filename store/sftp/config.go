package sftp

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultTimeout bounds the TCP connect and SSH handshake.
const DefaultTimeout = 30 * time.Second

// Config contains connection settings for an SFTP-backed store.
type Config struct {
	// Addr is the host:port of the SSH server (required).
	Addr string

	// User is the SSH user name (required).
	User string

	// Password enables password authentication when set.
	Password string

	// PrivateKey is a PEM encoded private key enabling public key
	// authentication when set.
	PrivateKey []byte

	// KnownHostsFile verifies the server host key against an OpenSSH
	// known_hosts file.
	KnownHostsFile string

	// HostKeyCallback verifies the server host key. It takes precedence over
	// KnownHostsFile.
	HostKeyCallback ssh.HostKeyCallback

	// InsecureIgnoreHostKey disables host key verification. Test use only.
	InsecureIgnoreHostKey bool

	// Dir is the remote directory holding the objects (required).
	Dir string

	// Timeout bounds connection setup. Zero means DefaultTimeout.
	Timeout time.Duration
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.User == "" {
		return fmt.Errorf("user is required")
	}
	if c.Password == "" && len(c.PrivateKey) == 0 {
		return fmt.Errorf("password or private key is required")
	}
	if c.HostKeyCallback == nil && c.KnownHostsFile == "" && !c.InsecureIgnoreHostKey {
		return fmt.Errorf("host key verification is required (HostKeyCallback, KnownHostsFile or InsecureIgnoreHostKey)")
	}
	if c.Dir == "" {
		return fmt.Errorf("dir is required")
	}
	return nil
}

func (c *Config) clientConfig() (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if len(c.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey(c.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if c.Password != "" {
		auth = append(auth, ssh.Password(c.Password))
	}

	hostKey := c.HostKeyCallback
	switch {
	case hostKey != nil:
	case c.KnownHostsFile != "":
		cb, err := knownhosts.New(c.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("load known hosts: %w", err)
		}
		hostKey = cb
	default:
		hostKey = ssh.InsecureIgnoreHostKey() //nolint:gosec // explicitly requested
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &ssh.ClientConfig{
		User:            c.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         timeout,
	}, nil
}

// ReadPrivateKey loads a PEM private key file for Config.PrivateKey.
func ReadPrivateKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	return data, nil
}
