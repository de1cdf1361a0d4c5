package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/finaipro/colombiagpt/internal/conversation"
)

type fakeGenerator struct {
	response string
	err      error

	calls       int
	lastPrompt  string
	lastPrompts []string
}

func (f *fakeGenerator) Complete(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastPrompts = append(f.lastPrompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestNewRewriter(t *testing.T) {
	if _, err := NewRewriter(nil, nil); err == nil {
		t.Error("NewRewriter(nil) should fail")
	}
	if _, err := NewRewriter(&fakeGenerator{}, nil); err != nil {
		t.Errorf("NewRewriter() error = %v", err)
	}
}

func TestRewriteEmptyHistory(t *testing.T) {
	gen := &fakeGenerator{response: "should not be used"}
	rewriter, _ := NewRewriter(gen, nil)

	question := "¿Cuál es la capital de Colombia?"
	got, err := rewriter.Rewrite(context.Background(), question, nil)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != question {
		t.Errorf("Rewrite() = %q, want unchanged %q", got, question)
	}
	if gen.calls != 0 {
		t.Errorf("backend called %d times, want 0", gen.calls)
	}
}

func TestRewriteWithHistory(t *testing.T) {
	gen := &fakeGenerator{response: "  ¿Cuántos habitantes tiene Bogotá?  "}
	rewriter, _ := NewRewriter(gen, nil)

	history := []conversation.Turn{
		{Role: conversation.RoleUser, Text: "¿Cuál es la capital de Colombia?"},
		{Role: conversation.RoleAssistant, Text: "La capital es Bogotá."},
	}

	got, err := rewriter.Rewrite(context.Background(), "¿Cuántos habitantes tiene?", history)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != "¿Cuántos habitantes tiene Bogotá?" {
		t.Errorf("Rewrite() = %q, want trimmed rewrite", got)
	}
	if gen.calls != 1 {
		t.Errorf("backend called %d times, want 1", gen.calls)
	}

	for _, want := range []string{
		"Usuario: ¿Cuál es la capital de Colombia?",
		"Asistente: La capital es Bogotá.",
		"Pregunta a reformular: ¿Cuántos habitantes tiene?",
		"NO respondas la pregunta",
	} {
		if !strings.Contains(gen.lastPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestRewriteTruncatesOldHistory(t *testing.T) {
	gen := &fakeGenerator{response: "reformulada"}
	rewriter, _ := NewRewriter(gen, nil)

	history := make([]conversation.Turn, 0, maxHistoryTurns+4)
	for i := 0; i < maxHistoryTurns+4; i++ {
		history = append(history, conversation.Turn{Role: conversation.RoleUser, Text: turnText(i)})
	}

	if _, err := rewriter.Rewrite(context.Background(), "¿Y eso?", history); err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if strings.Contains(gen.lastPrompt, turnText(0)) {
		t.Error("oldest turn should be dropped from the prompt")
	}
	if !strings.Contains(gen.lastPrompt, turnText(maxHistoryTurns+3)) {
		t.Error("newest turn missing from the prompt")
	}
}

func turnText(i int) string {
	return fmt.Sprintf("turno-%d;", i)
}

func TestRewriteBackendFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	rewriter, _ := NewRewriter(gen, nil)

	history := []conversation.Turn{{Role: conversation.RoleUser, Text: "hola"}}
	_, err := rewriter.Rewrite(context.Background(), "¿Y eso?", history)
	if !errors.Is(err, ErrRewrite) {
		t.Errorf("Rewrite() error = %v, want ErrRewrite", err)
	}
}

func TestRewriteEmptyBackendResponse(t *testing.T) {
	gen := &fakeGenerator{response: "   "}
	rewriter, _ := NewRewriter(gen, nil)

	history := []conversation.Turn{{Role: conversation.RoleUser, Text: "hola"}}
	_, err := rewriter.Rewrite(context.Background(), "¿Y eso?", history)
	if !errors.Is(err, ErrRewrite) {
		t.Errorf("Rewrite() error = %v, want ErrRewrite", err)
	}
}
