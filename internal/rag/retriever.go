package rag

import (
	"context"
	"fmt"

	"github.com/finaipro/colombiagpt/internal/knowledge"
	"github.com/finaipro/colombiagpt/internal/log"
)

// Searcher is the nearest-neighbor surface the retriever needs.
// *knowledge.Store satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]knowledge.Result, error)
}

const (
	// DefaultTopK is how many chunks a query retrieves when the caller
	// does not say otherwise. Higher values raise recall but dilute the
	// context window and drag the confidence average down.
	DefaultTopK = 5

	maxTopK = 20
)

// Retriever converts a query into ranked chunk matches.
type Retriever struct {
	searcher Searcher
	topK     int
	logger   log.Logger
}

// NewRetriever creates a Retriever. topK outside [1, 20] falls back to
// DefaultTopK.
func NewRetriever(searcher Searcher, topK int, logger log.Logger) (*Retriever, error) {
	if searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	if topK < 1 || topK > maxTopK {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Retriever{searcher: searcher, topK: topK, logger: logger}, nil
}

// Retrieve returns up to topK results ordered most similar first. An
// empty index yields an empty slice, not an error. Backend failures are
// wrapped with ErrRetrieval.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]knowledge.Result, error) {
	results, err := r.searcher.Search(ctx, query, r.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	r.logger.Debug("retrieved chunks", "query", query, "count", len(results))
	return results, nil
}
