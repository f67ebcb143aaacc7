package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogSender is the development transport: it records the event instead of
// delivering it. Production wiring swaps in the real email/SMS gateway.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, event Event) error {
	s.logger.Info("notification event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("recipient_email", event.RecipientEmail),
		zap.Any("template_fields", event.TemplateFields))
	return nil
}
