package storepath

import (
	"testing"

	"github.com/jmgilman/go/fs/storefs/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	parser := NewParser("store", "cache01")

	tests := []struct {
		name          string
		raw           string
		wantAuthority string
		wantKey       string
		wantDirHint   bool
	}{
		{name: "default authority dot", raw: "store://./test_write_read", wantKey: "test_write_read"},
		{name: "empty authority", raw: "store:///a/b", wantKey: "a/b"},
		{name: "known authority", raw: "store://cache01/a/b", wantAuthority: "cache01", wantKey: "a/b"},
		{name: "unknown authority is a segment", raw: "store://testfile", wantKey: "testfile"},
		{name: "unknown authority with children", raw: "store://data/x.txt", wantKey: "data/x.txt"},
		{name: "root", raw: "store://", wantKey: ""},
		{name: "root with slash", raw: "store:///", wantKey: ""},
		{name: "trailing slash hint", raw: "store://./a/b/", wantKey: "a/b", wantDirHint: true},
		{name: "duplicate slashes", raw: "store://./a//b///c", wantKey: "a/b/c"},
		{name: "dot segments", raw: "store://./a/./b/../c", wantKey: "a/c"},
		{name: "backslashes", raw: "store://./a\\b", wantKey: "a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := parser.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, "store", p.Scheme())
			assert.Equal(t, tt.wantAuthority, p.Authority())
			assert.Equal(t, tt.wantKey, p.Key())
			assert.Equal(t, tt.wantDirHint, p.DirHint())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	parser := NewParser("store://")

	tests := []struct {
		name string
		raw  string
	}{
		{name: "no scheme", raw: "/a/b"},
		{name: "empty scheme", raw: "://a/b"},
		{name: "wrong scheme", raw: "s3://bucket/a"},
		{name: "escapes root", raw: "store://./a/../../b"},
		{name: "leading dotdot", raw: "store://../x"},
		{name: "nul byte", raw: "store://./a\x00b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.raw)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidPath, errors.GetCode(err))
		})
	}
}

func TestPath_String(t *testing.T) {
	parser := NewParser("store", "cache01")

	p, err := parser.Parse("store://./a//b/")
	require.NoError(t, err)
	assert.Equal(t, "store:///a/b/", p.String())

	p, err = parser.Parse("store://cache01/x")
	require.NoError(t, err)
	assert.Equal(t, "store://cache01/x", p.String())

	assert.Equal(t, "store:///", Root("store", "").String())
}

func TestPath_Join(t *testing.T) {
	root := Root("store", "")

	child, err := root.Join("a")
	require.NoError(t, err)
	grandchild, err := child.Join("b.txt")
	require.NoError(t, err)
	assert.Equal(t, "a/b.txt", grandchild.Key())
	assert.Equal(t, "a", child.Key(), "join must not alias the parent's segments")

	for _, name := range []string{"", ".", "..", "a/b", "a\\b", "a\x00"} {
		_, err := root.Join(name)
		require.Error(t, err, "name %q", name)
		assert.True(t, errors.Is(err, errors.ErrInvalidPath))
	}
}

func TestPath_Parent(t *testing.T) {
	parser := NewParser("store")
	p, err := parser.Parse("store://./a/b/c")
	require.NoError(t, err)

	parent, ok := p.Parent()
	require.True(t, ok)
	assert.Equal(t, "a/b", parent.Key())

	root := Root("store", "")
	_, ok = root.Parent()
	assert.False(t, ok)

	ancestors := p.Ancestors()
	require.Len(t, ancestors, 2)
	assert.Equal(t, "a", ancestors[0].Key())
	assert.Equal(t, "a/b", ancestors[1].Key())
	assert.Empty(t, root.Ancestors())
}

func TestPath_EqualIgnoresDirHint(t *testing.T) {
	parser := NewParser("store")
	a, err := parser.Parse("store://./dir/")
	require.NoError(t, err)
	b, err := parser.Parse("store://./dir")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, 0, a.Compare(b))
}

func TestPath_CompareAndSort(t *testing.T) {
	parser := NewParser("store")
	raw := []string{
		"store://./b",
		"store://./a/z",
		"store://./B",
		"store://./a",
		"store://./a-b",
	}
	paths := make([]Path, 0, len(raw))
	for _, r := range raw {
		p, err := parser.Parse(r)
		require.NoError(t, err)
		paths = append(paths, p)
	}

	Sort(paths)

	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		keys = append(keys, p.Key())
	}
	// Byte order: uppercase before lowercase, a parent before its children.
	assert.Equal(t, []string{"B", "a", "a/z", "a-b", "b"}, keys)
}

func TestPath_HasPrefix(t *testing.T) {
	parser := NewParser("store", "other")
	p, err := parser.Parse("store://./a/b/c")
	require.NoError(t, err)
	prefix, err := parser.Parse("store://./a/b")
	require.NoError(t, err)
	sibling, err := parser.Parse("store://./a/bc")
	require.NoError(t, err)
	remote, err := parser.Parse("store://other/a")
	require.NoError(t, err)

	assert.True(t, p.HasPrefix(prefix))
	assert.True(t, p.HasPrefix(p))
	assert.True(t, p.HasPrefix(Root("store", "")))
	assert.False(t, p.HasPrefix(sibling))
	assert.False(t, prefix.HasPrefix(p))
	assert.False(t, p.HasPrefix(remote))
}
