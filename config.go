package storefs

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmgilman/go/fs/storefs/store"
	"github.com/jmgilman/go/fs/storefs/storepath"
)

const (
	// DefaultScheme is used when Config.Scheme is empty.
	DefaultScheme = "store"

	// DefaultDeleteConcurrency bounds parallel deletions in RmTree.
	DefaultDeleteConcurrency = 10
)

// Config holds adapter configuration.
type Config struct {
	// Scheme is the path scheme handled by the adapter (default: "store").
	Scheme string

	// Client serves paths without an authority or with the "." authority.
	Client store.Client

	// Servers maps additional authority names to their clients. A path such
	// as "store://archive/x" is served by Servers["archive"].
	Servers map[string]store.Client

	// Logger receives debug logs for mutating operations and warnings for
	// store faults. Defaults to a logger that discards everything.
	Logger *slog.Logger

	// MaxDeleteConcurrency limits concurrent deletions during RmTree.
	// Default: 10
	MaxDeleteConcurrency int
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.Client == nil {
		return fmt.Errorf("client is required")
	}
	if strings.ContainsAny(strings.TrimSuffix(c.Scheme, "://"), ":/\\") {
		return fmt.Errorf("scheme %q must not contain ':', '/' or '\\'", c.Scheme)
	}
	for name, client := range c.Servers {
		switch {
		case name == "" || name == storepath.DefaultAuthority:
			return fmt.Errorf("server name %q is reserved for the default client", name)
		case strings.ContainsAny(name, "/\\"):
			return fmt.Errorf("server name %q must not contain a separator", name)
		case client == nil:
			return fmt.Errorf("server %q has no client", name)
		}
	}
	if c.MaxDeleteConcurrency < 0 {
		return fmt.Errorf("max delete concurrency must not be negative")
	}
	return nil
}
