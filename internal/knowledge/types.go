package knowledge

import "time"

// Metadata keys stored with every document.
const (
	// MetaSource is the source identifier (article URL) a chunk came from.
	MetaSource = "source"

	// MetaSection is the document section title a chunk belongs to.
	MetaSection = "section"
)

// Document is an indexed chunk: content plus metadata. The store owns the
// embedding vector; documents are only inserted or replaced, never
// mutated in place.
type Document struct {
	ID        string            // deterministic chunk identifier
	Content   string            // chunk text
	Metadata  map[string]string // source, section
	CreatedAt time.Time
}

// Result is a single search hit.
//
// Score convention: Similarity is cosine similarity derived from the
// pgvector cosine distance operator as 1 - (embedding <=> query), so
// HIGHER means more similar, nominally in [0,1] for normalized
// embeddings. Confidence arithmetic in the pipeline depends on this
// direction; keep it consistent with any schema change.
type Result struct {
	Document   Document
	Similarity float64
}
