package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/finaipro/colombiagpt/internal/conversation"
	"github.com/finaipro/colombiagpt/internal/knowledge"
	"github.com/finaipro/colombiagpt/internal/log"
)

// NoInformationAnswer is returned when retrieval produces no context.
// Tests check it byte-for-byte.
const NoInformationAnswer = "No se encontró información relevante sobre la pregunta."

// Answer is the result of a single question, returned to the API layer
// and never persisted by the pipeline itself.
type Answer struct {
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	Confidence float64  `json:"confidence"`
}

// Pipeline orchestrates rewrite, retrieval, prompt composition and
// generation for one question. It holds no per-request state; a single
// Pipeline serves concurrent requests.
type Pipeline struct {
	rewriter  *Rewriter
	retriever *Retriever
	composer  *Composer
	generator Generator
	logger    log.Logger

	// sourceDetail switches the source list from deduplicated source IDs
	// to per-section "source (section)" entries.
	sourceDetail bool
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithSourceDetail makes the source list carry section names alongside
// source IDs.
func WithSourceDetail() PipelineOption {
	return func(p *Pipeline) { p.sourceDetail = true }
}

// NewPipeline creates a Pipeline.
func NewPipeline(rewriter *Rewriter, retriever *Retriever, composer *Composer, generator Generator, logger log.Logger, opts ...PipelineOption) (*Pipeline, error) {
	if rewriter == nil {
		return nil, fmt.Errorf("rewriter is required")
	}
	if retriever == nil {
		return nil, fmt.Errorf("retriever is required")
	}
	if composer == nil {
		return nil, fmt.Errorf("composer is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	p := &Pipeline{
		rewriter:  rewriter,
		retriever: retriever,
		composer:  composer,
		generator: generator,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// AnswerQuestion runs the full online pipeline for one question.
//
// Rewrite failures fall back to the original question. Retrieval failures
// and empty retrievals both degrade to the canned no-information answer
// without calling the generation backend. Only a generation failure is
// fatal, returned wrapped with ErrGeneration.
func (p *Pipeline) AnswerQuestion(ctx context.Context, question string, history []conversation.Turn) (*Answer, error) {
	query, err := p.rewriter.Rewrite(ctx, question, history)
	if err != nil {
		p.logger.Warn("rewrite failed, using original question", "error", err)
		query = question
	}

	results, err := p.retriever.Retrieve(ctx, query)
	if err != nil {
		if !errors.Is(err, ErrRetrieval) {
			return nil, err
		}
		p.logger.Warn("retrieval failed, returning no-information answer", "error", err)
		return noInformation(), nil
	}
	if len(results) == 0 {
		return noInformation(), nil
	}

	prompt := p.composer.Compose(query, results)
	answer, err := p.generator.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	return &Answer{
		Answer:     answer,
		Sources:    p.sources(results),
		Confidence: confidence(results),
	}, nil
}

func noInformation() *Answer {
	return &Answer{
		Answer:     NoInformationAnswer,
		Sources:    []string{},
		Confidence: 0.0,
	}
}

// confidence is the arithmetic mean of the cosine similarities of the
// chunks used as context, clamped to [0, 1]. Similarity here is
// 1 - cosine distance, so a higher mean means a closer match.
func confidence(results []knowledge.Result) float64 {
	if len(results) == 0 {
		return 0.0
	}
	var sum float64
	for _, res := range results {
		sum += res.Similarity
	}
	mean := sum / float64(len(results))
	if mean < 0 {
		return 0.0
	}
	if mean > 1 {
		return 1.0
	}
	return mean
}

// sources lists where the context came from, deduplicated and in
// retrieval order.
func (p *Pipeline) sources(results []knowledge.Result) []string {
	seen := make(map[string]struct{}, len(results))
	sources := make([]string, 0, len(results))
	for _, res := range results {
		source := res.Document.Metadata[knowledge.MetaSource]
		if source == "" {
			continue
		}
		if p.sourceDetail {
			if section := res.Document.Metadata[knowledge.MetaSection]; section != "" {
				source = fmt.Sprintf("%s (%s)", source, section)
			}
		}
		if _, ok := seen[source]; ok {
			continue
		}
		seen[source] = struct{}{}
		sources = append(sources, source)
	}
	return sources
}
