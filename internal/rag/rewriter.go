package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/finaipro/colombiagpt/internal/conversation"
	"github.com/finaipro/colombiagpt/internal/log"
)

// Generator produces text from a prompt. *googleai.Client satisfies it.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// maxHistoryTurns bounds how much conversation history is fed into the
// rewrite prompt. Older turns rarely carry the referents a follow-up
// question depends on.
const maxHistoryTurns = 6

// Rewriter turns a follow-up question into a self-contained query by
// resolving pronouns and implicit referents against recent conversation
// turns.
type Rewriter struct {
	generator Generator
	logger    log.Logger
}

// NewRewriter creates a Rewriter.
func NewRewriter(generator Generator, logger log.Logger) (*Rewriter, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Rewriter{generator: generator, logger: logger}, nil
}

// Rewrite returns a history-independent version of question. When history
// is empty the question is returned unchanged without calling the backend.
// Backend failures are wrapped with ErrRewrite; the caller decides whether
// to fall back to the original question.
func (r *Rewriter) Rewrite(ctx context.Context, question string, history []conversation.Turn) (string, error) {
	if len(history) == 0 {
		return question, nil
	}

	rewritten, err := r.generator.Complete(ctx, r.buildPrompt(question, history))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRewrite, err)
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return "", fmt.Errorf("%w: backend returned empty rewrite", ErrRewrite)
	}

	r.logger.Debug("question rewritten", "original", question, "rewritten", rewritten)
	return rewritten, nil
}

func (r *Rewriter) buildPrompt(question string, history []conversation.Turn) string {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	var sb strings.Builder
	sb.WriteString("Reformula la última pregunta del usuario como una pregunta autónoma sobre Colombia, ")
	sb.WriteString("resolviendo pronombres y referencias implícitas (\"eso\", \"allí\", \"esa ciudad\") ")
	sb.WriteString("usando los turnos anteriores de la conversación.\n")
	sb.WriteString("NO respondas la pregunta. Devuelve únicamente la pregunta reformulada, sin explicaciones.\n\n")
	sb.WriteString("Conversación:\n")
	for _, turn := range history {
		label := "Usuario"
		if turn.Role == conversation.RoleAssistant {
			label = "Asistente"
		}
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(turn.Text)
		sb.WriteString("\n")
	}
	sb.WriteString("\nPregunta a reformular: ")
	sb.WriteString(question)
	return sb.String()
}
