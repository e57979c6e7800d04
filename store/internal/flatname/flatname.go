// Package flatname encodes store keys as single file names so that
// file-backed stores can keep every object in one flat directory.
//
// The encoding is url.PathEscape followed by escaping of the characters
// PathEscape leaves alone but some file systems treat specially. Listing by
// prefix decodes every name and compares decoded keys.
package flatname

import (
	"fmt"
	"net/url"
	"strings"
)

// Ext is appended to every encoded name so hidden and reserved names
// ("", ".", "..") cannot occur.
const Ext = ".obj"

var extra = strings.NewReplacer(
	".", "%2E",
	"~", "%7E",
	"\\", "%5C",
	":", "%3A",
	"*", "%2A",
	"?", "%3F",
	"\"", "%22",
	"<", "%3C",
	">", "%3E",
	"|", "%7C",
)

// Encode returns the file name for key.
func Encode(key string) string {
	return extra.Replace(url.PathEscape(key)) + Ext
}

// Decode returns the key encoded in name. Names that were not produced by
// Encode are reported as errors.
func Decode(name string) (string, error) {
	trimmed, ok := strings.CutSuffix(name, Ext)
	if !ok {
		return "", fmt.Errorf("flatname: %q lacks %s suffix", name, Ext)
	}
	key, err := url.PathUnescape(trimmed)
	if err != nil {
		return "", fmt.Errorf("flatname: decode %q: %w", name, err)
	}
	return key, nil
}
