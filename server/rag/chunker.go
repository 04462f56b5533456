// Package rag turns documents into searchable chunks and answers
// questions against them by retrieval-augmented generation: embed the
// question, scan the in-memory vector index for the most similar chunks,
// and condition answer synthesis on them.
package rag

import (
	"strings"

	"github.com/pkg/errors"
)

// Default chunking parameters.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// ErrInvalidChunking is returned for a degenerate chunker configuration.
// The walk only terminates when size > overlap >= 0, so anything else is a
// caller bug surfaced immediately.
var ErrInvalidChunking = errors.New("invalid chunking config: require size > overlap >= 0")

// ChunkDraft is a chunk before embedding: a text slice and its position
// within the document.
type ChunkDraft struct {
	Text  string
	Index int
}

// Chunker splits document text into overlapping, word-boundary-respecting
// segments of at most size characters.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a Chunker.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, errors.Wrapf(ErrInvalidChunking, "size %d, overlap %d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk walks text in windows of the configured size. A window that would
// split inside a word is backed off to the nearest preceding space, but
// only when that space is still after the window start, so long unspaced
// runs cannot stall the walk. Empty windows are skipped but still consume
// an index. The next window starts overlap characters before the previous
// end; the final window ends the walk.
func (c *Chunker) Chunk(text string) []ChunkDraft {
	var chunks []ChunkDraft

	start := 0
	index := 0
	for start < len(text) {
		end := start + c.size
		last := end >= len(text)
		if last {
			end = len(text)
		} else if lastSpace := strings.LastIndexByte(text[:end+1], ' '); lastSpace > start {
			end = lastSpace
		}

		if slice := strings.TrimSpace(text[start:end]); slice != "" {
			chunks = append(chunks, ChunkDraft{Text: slice, Index: index})
		}
		index++

		if last {
			break
		}
		next := end - c.overlap
		if next <= start {
			// A deep space back-off can put the overlapped start at or
			// before the current one; drop the overlap for this step so
			// the walk always advances.
			next = end
		}
		start = next
	}

	return chunks
}
