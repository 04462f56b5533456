package rag

import "sync"

// Chunk is the unit of embedding and retrieval: a bounded slice of a
// document's text with its vector. Chunks live until their document is
// deleted or re-indexed.
type Chunk struct {
	ID         string
	DocumentID string
	Text       string
	Index      int
	Embedding  []float32
}

// VectorIndex is the per-document chunk store. It is the only shared
// mutable state in the retrieval core: a single RWMutex guards a map of
// document to chunk list, and every mutation swaps a whole per-document
// slice, so readers never observe a mix of old and new chunks for one
// document. Scan order is document insertion order, then chunk index
// order within a document, and is stable across calls for a fixed index
// state.
type VectorIndex struct {
	mu    sync.RWMutex
	docs  map[string][]Chunk
	order []string
}

// NewVectorIndex creates an empty index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		docs: make(map[string][]Chunk),
	}
}

// Put atomically replaces all chunks for documentID. A re-indexed document
// keeps its position in scan order.
func (x *VectorIndex) Put(documentID string, chunks []Chunk) {
	stored := make([]Chunk, len(chunks))
	copy(stored, chunks)

	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.docs[documentID]; !ok {
		x.order = append(x.order, documentID)
	}
	x.docs[documentID] = stored
}

// Delete removes all chunks for documentID.
func (x *VectorIndex) Delete(documentID string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.docs[documentID]; !ok {
		return
	}
	delete(x.docs, documentID)
	for i, id := range x.order {
		if id == documentID {
			x.order = append(x.order[:i], x.order[i+1:]...)
			break
		}
	}
}

// AllChunks returns a snapshot of every stored chunk in scan order.
func (x *VectorIndex) AllChunks() []Chunk {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var all []Chunk
	for _, id := range x.order {
		all = append(all, x.docs[id]...)
	}
	return all
}

// DocumentCount returns the number of indexed documents.
func (x *VectorIndex) DocumentCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docs)
}
