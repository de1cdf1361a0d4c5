package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/finaipro/colombiagpt/internal/conversation"
	"github.com/finaipro/colombiagpt/internal/log"
	"github.com/finaipro/colombiagpt/internal/rag"
)

// maxQuestionLength caps request size; Wikipedia questions do not need
// more.
const maxQuestionLength = 2000

// Answerer runs the online pipeline. *rag.Pipeline satisfies it.
type Answerer interface {
	AnswerQuestion(ctx context.Context, question string, history []conversation.Turn) (*rag.Answer, error)
}

// HistoryStore is the conversation surface the chat endpoint needs.
// *conversation.Store satisfies it.
type HistoryStore interface {
	Get(ctx context.Context, id uuid.UUID) (*conversation.Conversation, error)
	Turns(ctx context.Context, conversationID uuid.UUID) ([]conversation.Turn, error)
	AddMessage(ctx context.Context, conversationID uuid.UUID, role conversation.Role, content string) (*conversation.Message, error)
}

// ChatHandler answers questions, optionally within a stored conversation.
type ChatHandler struct {
	answerer Answerer
	history  HistoryStore
	logger   log.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(answerer Answerer, history HistoryStore, logger log.Logger) *ChatHandler {
	if logger == nil {
		logger = log.NewNop()
	}
	return &ChatHandler{answerer: answerer, history: history, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/chat/ask", h.ask)
}

// ChatRequest is the ask endpoint's request body. ConversationID is
// optional; when set, prior turns feed the query rewrite and both the
// question and the answer are appended to the conversation.
type ChatRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the ask endpoint's response body.
type ChatResponse struct {
	Answer         string   `json:"answer"`
	Sources        []string `json:"sources"`
	Confidence     float64  `json:"confidence"`
	ConversationID string   `json:"conversation_id,omitempty"`
}

func (h *ChatHandler) ask(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "empty_question", "La pregunta no puede estar vacía.")
		return
	}
	if len(question) > maxQuestionLength {
		writeError(w, http.StatusBadRequest, "question_too_long", "question exceeds maximum length")
		return
	}

	ctx := r.Context()

	var (
		convID  uuid.UUID
		history []conversation.Turn
	)
	if req.ConversationID != "" {
		id, err := uuid.Parse(req.ConversationID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_conversation_id", "conversation_id must be a UUID")
			return
		}
		if _, err := h.history.Get(ctx, id); err != nil {
			if errors.Is(err, conversation.ErrNotFound) {
				writeError(w, http.StatusNotFound, "conversation_not_found", "no such conversation")
				return
			}
			h.logger.Error("loading conversation failed", "error", err, "id", id)
			writeError(w, http.StatusInternalServerError, "internal_error", "could not load conversation")
			return
		}
		history, err = h.history.Turns(ctx, id)
		if err != nil {
			h.logger.Error("loading history failed", "error", err, "id", id)
			writeError(w, http.StatusInternalServerError, "internal_error", "could not load conversation history")
			return
		}
		convID = id
	}

	result, err := h.answerer.AnswerQuestion(ctx, question, history)
	if err != nil {
		if errors.Is(err, rag.ErrGeneration) {
			h.logger.Error("generation backend failed", "error", err)
			writeError(w, http.StatusBadGateway, "generation_failed", "the language model is unavailable")
			return
		}
		h.logger.Error("answering failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not answer the question")
		return
	}

	resp := ChatResponse{
		Answer:     result.Answer,
		Sources:    result.Sources,
		Confidence: result.Confidence,
	}

	if convID != uuid.Nil {
		resp.ConversationID = convID.String()
		// history writes are best-effort; the answer is already produced
		if _, err := h.history.AddMessage(ctx, convID, conversation.RoleUser, question); err != nil {
			h.logger.Warn("persisting user message failed", "error", err, "id", convID)
		} else if _, err := h.history.AddMessage(ctx, convID, conversation.RoleAssistant, result.Answer); err != nil {
			h.logger.Warn("persisting assistant message failed", "error", err, "id", convID)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
