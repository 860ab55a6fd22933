package events

import (
	"encoding/json"

	"foodbridge/logger"
	"foodbridge/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OutboxSink persists events as NotificationEvent rows for the dispatch
// worker. Write failures are logged, never surfaced: the emitting
// transition has already committed its own state.
type OutboxSink struct {
	DB *gorm.DB
}

func NewOutboxSink(db *gorm.DB) *OutboxSink {
	return &OutboxSink{DB: db}
}

func (s *OutboxSink) Emit(evt Type, payload map[string]any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("event payload not serializable", zap.String("type", string(evt)), zap.Error(err))
		return
	}

	row := models.NotificationEvent{
		ID:      uuid.NewString(),
		Type:    string(evt),
		Payload: string(body),
	}
	if err := s.DB.Create(&row).Error; err != nil {
		logger.Warn("event outbox write failed", zap.String("type", string(evt)), zap.Error(err))
	}
}
