package rag

import (
	"context"
	"fmt"

	"github.com/finaipro/colombiagpt/internal/knowledge"
	"github.com/finaipro/colombiagpt/internal/log"
	"github.com/finaipro/colombiagpt/internal/segment"
)

// Fetcher retrieves the raw article text. *extract.Extractor satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
	URL() string
}

// Indexer stores chunks for retrieval. *knowledge.Store satisfies it.
type Indexer interface {
	Add(ctx context.Context, doc knowledge.Document) error
	DeleteBySource(ctx context.Context, sourceID string) (int, error)
}

// Ingestor runs the offline pipeline: fetch the article, segment it by
// section and index every chunk. Re-ingesting a source replaces its
// previous chunks.
type Ingestor struct {
	fetcher  Fetcher
	splitter *segment.Splitter
	indexer  Indexer
	logger   log.Logger
}

// NewIngestor creates an Ingestor.
func NewIngestor(fetcher Fetcher, splitter *segment.Splitter, indexer Indexer, logger log.Logger) (*Ingestor, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if splitter == nil {
		return nil, fmt.Errorf("splitter is required")
	}
	if indexer == nil {
		return nil, fmt.Errorf("indexer is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Ingestor{fetcher: fetcher, splitter: splitter, indexer: indexer, logger: logger}, nil
}

// Ingest fetches, segments and indexes the source document, returning
// the number of chunks stored. Extraction failures abort the run;
// chunks indexed before a storage failure are left in place and the
// next successful run replaces them.
func (i *Ingestor) Ingest(ctx context.Context) (int, error) {
	source := i.fetcher.URL()
	i.logger.Info("ingestion started", "source", source)

	text, err := i.fetcher.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching %s: %w", source, err)
	}

	chunks := i.splitter.BySection(text, source)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no chunks produced from %s", source)
	}

	removed, err := i.indexer.DeleteBySource(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("clearing previous chunks for %s: %w", source, err)
	}
	if removed > 0 {
		i.logger.Info("previous chunks removed", "source", source, "count", removed)
	}

	for idx, chunk := range chunks {
		doc := knowledge.Document{
			ID:      chunkID(source, chunk.Section, idx),
			Content: chunk.Text,
			Metadata: map[string]string{
				knowledge.MetaSource:  chunk.SourceID,
				knowledge.MetaSection: chunk.Section,
			},
		}
		if err := i.indexer.Add(ctx, doc); err != nil {
			return idx, fmt.Errorf("indexing chunk %d of %d: %w", idx+1, len(chunks), err)
		}
	}

	i.logger.Info("ingestion finished", "source", source, "chunks", len(chunks))
	return len(chunks), nil
}

// chunkID is deterministic so re-ingestion upserts instead of piling up
// duplicates.
func chunkID(source, section string, index int) string {
	return fmt.Sprintf("%s#%s#%d", source, section, index)
}
