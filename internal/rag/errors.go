package rag

import "errors"

// Sentinel errors for the pipeline stages. Each stage wraps its failures
// with the matching sentinel so callers can pick a recovery policy with
// errors.Is.
var (
	// ErrRetrieval indicates the retrieval backend failed. Callers degrade
	// to the canned "no information" answer rather than failing the request.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrRewrite indicates the rewrite call failed. Callers fall back to
	// the original question.
	ErrRewrite = errors.New("query rewrite failed")

	// ErrGeneration indicates the final generation call failed. This is
	// fatal for the request; no answer can be produced without it.
	ErrGeneration = errors.New("answer generation failed")
)
