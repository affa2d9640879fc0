// Package chunker splits document text into overlapping segments along
// a separator hierarchy. Splitting is pure and deterministic: identical
// input always yields byte-identical chunks, which is what makes
// content-addressed deduplication of re-ingested documents meaningful.
package chunker

import "strings"

// DefaultTargetSize is the default number of characters per chunk.
const DefaultTargetSize = 2000

// DefaultOverlap is the default number of overlapping characters
// between adjacent chunks.
const DefaultOverlap = 200

// separators is the split-point preference order: paragraph break,
// line break, sentence end, plain space.
var separators = []string{"\n\n", "\n", ". ", " "}

// minSplitFraction is how far into the window a separator must sit to
// be accepted. Splits earlier than this would produce pathologically
// short leading chunks, so we fall through to the next separator or a
// hard cut.
const minSplitFraction = 0.3

// Chunker splits text into overlapping chunks.
type Chunker struct {
	targetSize int
	overlap    int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithTargetSize sets the chunk size in characters.
func WithTargetSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.targetSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		targetSize: DefaultTargetSize,
		overlap:    DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.targetSize {
		c.overlap = c.targetSize / 4
	}

	return c
}

// Split divides text into chunks of at most the target size, preferring
// to cut on paragraph, line, sentence, or word boundaries. Adjacent
// chunks share overlap characters of the original text. A trailing
// remainder below the minimum viable length (the overlap plus a tenth
// of the target size) is merged into the previous chunk rather than
// emitted as a degenerate fragment.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	// Short documents are never over-split.
	if len(text) <= c.targetSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	prevStart := 0

	for start < len(text) {
		end := start + c.targetSize
		if end >= len(text) {
			remainder := text[start:]
			if len(remainder) < c.minViable() && len(chunks) > 0 {
				// Extend the previous chunk to the end of the text
				// instead of emitting a tiny trailing fragment.
				chunks[len(chunks)-1] = text[prevStart:]
			} else {
				chunks = append(chunks, remainder)
			}
			break
		}

		cut := start + c.splitPoint(text[start:end])
		chunks = append(chunks, text[start:cut])
		prevStart = start

		// Rewind so the next chunk shares overlap characters with
		// this one, clamped to keep the window advancing.
		next := cut - c.overlap
		if next <= start {
			next = cut
		}
		start = next
	}

	return chunks
}

// splitPoint returns the cut offset within the window: the end of the
// last occurrence of the most-preferred separator that sits at least
// minSplitFraction into the window, or the full window length when no
// separator qualifies (hard cut).
func (c *Chunker) splitPoint(window string) int {
	minPos := int(float64(len(window)) * minSplitFraction)

	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx >= minPos {
			return idx + len(sep)
		}
	}

	return len(window)
}

// minViable is the smallest remainder worth emitting as its own chunk.
// The remainder always begins with overlap characters shared with the
// previous chunk, so the threshold is the overlap plus a tenth of the
// target size of genuinely new text.
func (c *Chunker) minViable() int {
	n := c.overlap + c.targetSize/10
	if n < 1 {
		n = 1
	}
	return n
}

// Split is a convenience wrapper for one-off chunking with explicit
// parameters.
func Split(text string, targetSize, overlap int) []string {
	return New(WithTargetSize(targetSize), WithOverlap(overlap)).Split(text)
}
