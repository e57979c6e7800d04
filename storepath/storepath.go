// Package storepath provides the path model of the storefs adapter: parsing,
// normalization and comparison of scheme-qualified paths such as
// "store://server/a/b.txt".
package storepath

import (
	"slices"
	"strings"

	"github.com/jmgilman/go/fs/storefs/errors"
)

// Separator separates path segments and store key components.
const Separator = "/"

// Path is a normalized, scheme-qualified path.
// The zero value is not a valid path; use Parser.Parse or Root.
type Path struct {
	scheme    string
	authority string
	segments  []string
	dirHint   bool
}

// Root returns the root path of the given scheme and authority.
func Root(scheme, authority string) Path {
	return Path{scheme: scheme, authority: authority}
}

// Scheme returns the path scheme without the "://" suffix.
func (p Path) Scheme() string { return p.scheme }

// Authority returns the server named by the path, or "" for the default server.
func (p Path) Authority() string { return p.authority }

// Segments returns a copy of the path segments.
func (p Path) Segments() []string { return slices.Clone(p.segments) }

// Depth returns the number of segments.
func (p Path) Depth() int { return len(p.segments) }

// IsRoot reports whether p has no segments.
func (p Path) IsRoot() bool { return len(p.segments) == 0 }

// DirHint reports whether the raw path ended with a slash.
// The hint does not take part in equality.
func (p Path) DirHint() bool { return p.dirHint }

// Base returns the last segment, or "" for the root.
func (p Path) Base() string {
	if p.IsRoot() {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Key returns the segments joined by Separator. The root has the empty key.
func (p Path) Key() string {
	return strings.Join(p.segments, Separator)
}

// String returns the canonical form "<scheme>://<authority>/<key>".
func (p Path) String() string {
	var b strings.Builder
	b.WriteString(p.scheme)
	b.WriteString("://")
	b.WriteString(p.authority)
	b.WriteString(Separator)
	b.WriteString(p.Key())
	if p.dirHint && !p.IsRoot() {
		b.WriteString(Separator)
	}
	return b.String()
}

// Join returns the child of p named name.
// The name must be a single, non-empty segment.
func (p Path) Join(name string) (Path, error) {
	if err := validateName(name); err != nil {
		return Path{}, err
	}
	segments := make([]string, len(p.segments), len(p.segments)+1)
	copy(segments, p.segments)
	return Path{
		scheme:    p.scheme,
		authority: p.authority,
		segments:  append(segments, name),
	}, nil
}

// Parent returns the parent of p. It returns false for the root.
func (p Path) Parent() (Path, bool) {
	if p.IsRoot() {
		return Path{}, false
	}
	return Path{
		scheme:    p.scheme,
		authority: p.authority,
		segments:  slices.Clone(p.segments[:len(p.segments)-1]),
		dirHint:   true,
	}, true
}

// Ancestors returns every proper ancestor of p except the root, top-down.
func (p Path) Ancestors() []Path {
	if len(p.segments) < 2 {
		return nil
	}
	ancestors := make([]Path, 0, len(p.segments)-1)
	for i := 1; i < len(p.segments); i++ {
		ancestors = append(ancestors, Path{
			scheme:    p.scheme,
			authority: p.authority,
			segments:  slices.Clone(p.segments[:i]),
			dirHint:   true,
		})
	}
	return ancestors
}

// HasPrefix reports whether prefix is p or an ancestor of p on the same server.
func (p Path) HasPrefix(prefix Path) bool {
	if p.scheme != prefix.scheme || p.authority != prefix.authority {
		return false
	}
	if len(prefix.segments) > len(p.segments) {
		return false
	}
	return slices.Equal(p.segments[:len(prefix.segments)], prefix.segments)
}

// Equal reports whether p and o name the same entry. The directory hint is ignored.
func (p Path) Equal(o Path) bool {
	return p.scheme == o.scheme &&
		p.authority == o.authority &&
		slices.Equal(p.segments, o.segments)
}

// Compare orders paths by scheme, authority and then segment by segment using
// byte-wise string comparison. A path sorts before its descendants.
func (p Path) Compare(o Path) int {
	if c := strings.Compare(p.scheme, o.scheme); c != 0 {
		return c
	}
	if c := strings.Compare(p.authority, o.authority); c != 0 {
		return c
	}
	return slices.Compare(p.segments, o.segments)
}

// Sort sorts paths in place using Compare.
func Sort(paths []Path) {
	slices.SortFunc(paths, Path.Compare)
}

// validateName checks a single segment passed to Join.
func validateName(name string) error {
	switch {
	case name == "":
		return errors.New(errors.CodeInvalidPath, "empty name")
	case name == "." || name == "..":
		return errors.Newf(errors.CodeInvalidPath, "name %q is not a valid entry name", name)
	case strings.ContainsAny(name, "/\\"):
		return errors.Newf(errors.CodeInvalidPath, "name %q contains a path separator", name)
	case strings.ContainsRune(name, 0):
		return errors.Newf(errors.CodeInvalidPath, "name %q contains a NUL byte", name)
	}
	return nil
}
