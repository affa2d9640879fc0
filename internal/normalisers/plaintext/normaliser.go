// Package plaintext is the fallback normaliser: content passes through
// unchanged and the title is derived from the filename.
package plaintext

import (
	"path/filepath"
	"strings"
)

// Normalise returns the raw bytes as content with a filename-derived
// title.
func Normalise(path string, raw []byte) (string, string) {
	return TitleFromPath(path), string(raw)
}

// TitleFromPath turns a file path into a human-readable title: the
// base name without extension, with separators spaced out.
func TitleFromPath(path string) string {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}
