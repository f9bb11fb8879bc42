package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"webchat-backend/internal/events"
	"webchat-backend/internal/metrics"
	"webchat-backend/internal/models"
)

type conversationRepository interface {
	List(ctx context.Context) ([]json.RawMessage, error)
	Save(ctx context.Context, c models.Conversation) error
}

type ConversationService struct {
	repo      conversationRepository
	publisher events.Publisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewConversationService builds the service; publisher may be nil.
func NewConversationService(repo conversationRepository, publisher events.Publisher, log zerolog.Logger) *ConversationService {
	return &ConversationService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

func (s *ConversationService) List(ctx context.Context) ([]json.RawMessage, error) {
	start := time.Now()
	conversations, err := s.repo.List(ctx)
	metrics.ObserveConversationOp("list", start, err)
	if err != nil {
		return nil, err
	}
	metrics.ConversationsListed.Observe(float64(len(conversations)))
	return conversations, nil
}

// Save persists c and then announces it. A failed announcement is logged
// and does not fail the save.
func (s *ConversationService) Save(ctx context.Context, c models.Conversation) error {
	start := time.Now()
	err := s.repo.Save(ctx, c)
	metrics.ObserveConversationOp("save", start, err)
	if err != nil {
		return err
	}

	if msgs, err := c.Messages(); err == nil {
		metrics.MessagesPerSave.Observe(float64(len(msgs)))
	}

	if s.publisher == nil {
		return nil
	}

	ev := models.ConversationEvent{
		Type:    models.EventConversationSaved,
		ID:      c.FileStem(),
		SavedAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Str("conversation_id", ev.ID).Msg("failed to publish conversation event")
		return nil
	}
	metrics.EventsPublishedTotal.WithLabelValues("success").Inc()
	return nil
}
