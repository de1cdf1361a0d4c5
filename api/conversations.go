package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/finaipro/colombiagpt/internal/conversation"
	"github.com/finaipro/colombiagpt/internal/log"
)

// MaxNameLength bounds conversation names.
const MaxNameLength = 100

// ConversationStore is the persistence surface the CRUD endpoints need.
// *conversation.Store satisfies it.
type ConversationStore interface {
	Create(ctx context.Context, name string) (*conversation.Conversation, error)
	Get(ctx context.Context, id uuid.UUID) (*conversation.Conversation, error)
	List(ctx context.Context) ([]conversation.Conversation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Messages(ctx context.Context, conversationID uuid.UUID) ([]conversation.Message, error)
}

// ConversationHandler serves conversation CRUD endpoints.
type ConversationHandler struct {
	store  ConversationStore
	logger log.Logger
}

// NewConversationHandler creates a conversation handler.
func NewConversationHandler(store ConversationStore, logger log.Logger) *ConversationHandler {
	if logger == nil {
		logger = log.NewNop()
	}
	return &ConversationHandler{store: store, logger: logger}
}

// RegisterRoutes registers conversation routes on the given mux.
func (h *ConversationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/conversations", h.create)
	mux.HandleFunc("GET /api/v1/conversations", h.list)
	mux.HandleFunc("GET /api/v1/conversations/{id}", h.get)
	mux.HandleFunc("DELETE /api/v1/conversations/{id}", h.delete)
	mux.HandleFunc("GET /api/v1/conversations/{id}/messages", h.messages)
}

// CreateConversationRequest is the create endpoint's request body.
type CreateConversationRequest struct {
	Name string `json:"name"`
}

func (h *ConversationHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if len(req.Name) > MaxNameLength {
		writeError(w, http.StatusBadRequest, "name_too_long", "name exceeds maximum length")
		return
	}

	conv, err := h.store.Create(r.Context(), req.Name)
	if err != nil {
		h.logger.Error("creating conversation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not create conversation")
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (h *ConversationHandler) list(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("listing conversations failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not list conversations")
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

func (h *ConversationHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	conv, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			writeError(w, http.StatusNotFound, "conversation_not_found", "no such conversation")
			return
		}
		h.logger.Error("getting conversation failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not get conversation")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *ConversationHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			writeError(w, http.StatusNotFound, "conversation_not_found", "no such conversation")
			return
		}
		h.logger.Error("deleting conversation failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not delete conversation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ConversationHandler) messages(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.store.Get(r.Context(), id); err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			writeError(w, http.StatusNotFound, "conversation_not_found", "no such conversation")
			return
		}
		h.logger.Error("getting conversation failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not get conversation")
		return
	}

	messages, err := h.store.Messages(r.Context(), id)
	if err != nil {
		h.logger.Error("listing messages failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not list messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *ConversationHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_conversation_id", "conversation id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
