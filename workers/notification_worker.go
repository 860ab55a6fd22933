package workers

import (
	"context"
	"time"

	"foodbridge/logger"
	"foodbridge/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier is the boundary to the out-of-scope delivery channels (email,
// SMS, push). The worker hands events over and does not care what happens
// next.
type Notifier interface {
	Deliver(evt models.NotificationEvent) error
}

// LogNotifier is the default notifier: it just logs what would be sent.
type LogNotifier struct{}

func (LogNotifier) Deliver(evt models.NotificationEvent) error {
	logger.Info("notification dispatched",
		zap.String("event_id", evt.ID),
		zap.String("type", evt.Type),
		zap.String("payload", evt.Payload))
	return nil
}

// NotificationDispatcher drains the event outbox and marks rows dispatched.
type NotificationDispatcher struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewNotificationDispatcher(db *gorm.DB, notifier Notifier) *NotificationDispatcher {
	return &NotificationDispatcher{DB: db, Notifier: notifier}
}

// DispatchPending delivers up to batchSize undispatched events, oldest first.
// Delivery failures leave the row in place for the next poll.
func (d *NotificationDispatcher) DispatchPending(batchSize int) (int, error) {
	var pending []models.NotificationEvent
	err := d.DB.Where("dispatched_at IS NULL").
		Order("created_at ASC").
		Limit(batchSize).
		Find(&pending).Error
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for i := range pending {
		evt := pending[i]
		if err := d.Notifier.Deliver(evt); err != nil {
			logger.Warn("notification delivery failed",
				zap.String("event_id", evt.ID),
				zap.Error(err))
			continue
		}
		now := time.Now().UTC()
		if err := d.DB.Model(&evt).Update("dispatched_at", &now).Error; err != nil {
			logger.Warn("failed to mark event dispatched",
				zap.String("event_id", evt.ID),
				zap.Error(err))
			continue
		}
		dispatched++
	}
	return dispatched, nil
}

// PollNotifications runs the dispatcher on an interval until ctx is done.
func PollNotifications(ctx context.Context, d *NotificationDispatcher, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("notification dispatcher stopped")
			return
		case <-ticker.C:
			if _, err := d.DispatchPending(100); err != nil {
				logger.Warn("notification poll failed", zap.Error(err))
			}
		}
	}
}
