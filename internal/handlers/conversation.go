package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"webchat-backend/internal/models"
	"webchat-backend/internal/repository"
)

const maxConversationBytes = 10 << 20

type conversationService interface {
	List(ctx context.Context) ([]json.RawMessage, error)
	Save(ctx context.Context, c models.Conversation) error
}

type ConversationHandler struct {
	service conversationService
}

func NewConversationHandler(service conversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// List handles GET /list-conversations.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.service.List(r.Context())
	if err != nil {
		logStoreError(r, err, "Error listing conversations")
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to list conversations"))
		return
	}
	if conversations == nil {
		conversations = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, conversations)
}

// Save handles POST /save-conversation. The body is stored as-is.
func (h *ConversationHandler) Save(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxConversationBytes))
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Error reading conversation body")
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body"))
		return
	}

	conversation, err := models.ParseConversation(body)
	if err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("Rejected conversation body")
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body"))
		return
	}

	if err := h.service.Save(r.Context(), conversation); err != nil {
		logStoreError(r, err, "Error saving conversation")
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to save conversation"))
		return
	}

	writeJSON(w, http.StatusOK, models.SaveResponse{Success: true})
}

func logStoreError(r *http.Request, err error, msg string) {
	event := hlog.FromRequest(r).Error().Err(err)

	var fsErr *repository.FilesystemError
	var parseErr *repository.ParseError
	switch {
	case errors.As(err, &parseErr):
		event = event.Str("kind", "parse").Str("path", parseErr.Path)
	case errors.As(err, &fsErr):
		event = event.Str("kind", "filesystem").Str("op", fsErr.Op).Str("path", fsErr.Path)
	}
	event.Msg(msg)
}
