package storepath

import (
	"slices"
	"strings"

	"github.com/jmgilman/go/fs/storefs/errors"
)

// DefaultAuthority is the authority written by callers to mean "the
// configured default server", as in "store://./data".
const DefaultAuthority = "."

// Parser parses raw paths for a single scheme.
type Parser struct {
	scheme      string
	authorities []string
}

// NewParser returns a parser for scheme. The authorities list names the
// servers that may appear after "//"; any other leading element is treated
// as the first path segment.
func NewParser(scheme string, authorities ...string) *Parser {
	return &Parser{
		scheme:      strings.TrimSuffix(scheme, "://"),
		authorities: slices.Clone(authorities),
	}
}

// Scheme returns the scheme handled by the parser.
func (p *Parser) Scheme() string { return p.scheme }

// Parse normalizes raw into a Path.
//
// The raw path must start with "<scheme>://". Backslashes are treated as
// separators, empty and "." segments are dropped and ".." removes the
// previous segment. Climbing above the root is an error.
func (p *Parser) Parse(raw string) (Path, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || scheme == "" {
		return Path{}, errors.Newf(errors.CodeInvalidPath, "path %q has no scheme", raw)
	}
	if scheme != p.scheme {
		return Path{}, errors.Newf(errors.CodeInvalidPath, "path %q has unrecognized scheme %q", raw, scheme)
	}
	if strings.ContainsRune(rest, 0) {
		return Path{}, errors.Newf(errors.CodeInvalidPath, "path %q contains a NUL byte", raw)
	}

	rest = strings.ReplaceAll(rest, "\\", Separator)
	dirHint := strings.HasSuffix(rest, Separator)

	first, remainder, _ := strings.Cut(rest, Separator)
	authority := ""
	switch {
	case first == "" || first == DefaultAuthority:
	case slices.Contains(p.authorities, first):
		authority = first
	default:
		// Not a known server: the element is part of the path.
		remainder = rest
	}

	segments, err := normalize(remainder)
	if err != nil {
		return Path{}, errors.Wrapf(err, errors.CodeInvalidPath, "path %q", raw)
	}

	return Path{
		scheme:    scheme,
		authority: authority,
		segments:  segments,
		dirHint:   dirHint && len(segments) > 0,
	}, nil
}

// normalize splits a slash-separated path and resolves "." and "..".
func normalize(rest string) ([]string, error) {
	var segments []string
	for _, segment := range strings.Split(rest, Separator) {
		switch segment {
		case "", ".":
			continue
		case "..":
			if len(segments) == 0 {
				return nil, errors.New(errors.CodeInvalidPath, "path escapes the root")
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, segment)
		}
	}
	return segments, nil
}
