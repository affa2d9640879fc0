// Package normalisers converts file formats into plain text suitable
// for chunking. Each format lives in its own subpackage; this package
// selects one by file extension, falling back to plaintext.
package normalisers

import (
	"path/filepath"
	"strings"

	"github.com/mnemo-labs/mnemo-cli/internal/normalisers/html"
	"github.com/mnemo-labs/mnemo-cli/internal/normalisers/markdown"
	"github.com/mnemo-labs/mnemo-cli/internal/normalisers/plaintext"
)

// NormaliseFunc converts raw file bytes into a title and plain text
// content. The path is used only for title fallback.
type NormaliseFunc func(path string, raw []byte) (title, content string)

// ForPath returns the normaliser for a file path based on its
// extension. Unknown extensions are treated as plain text.
func ForPath(path string) NormaliseFunc {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return markdown.Normalise
	case ".html", ".htm", ".xhtml":
		return html.Normalise
	default:
		return plaintext.Normalise
	}
}
