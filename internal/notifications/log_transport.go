package notifications

import (
	"context"

	"go.uber.org/zap"
)

// LogTransport only logs the message. Used when no provider is configured.
// Bodies carry reset links, so they are logged only when showBody is set.
type LogTransport struct {
	logger   *zap.Logger
	showBody bool
}

func NewLogTransport(logger *zap.Logger, showBody bool) *LogTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTransport{logger: logger.Named("log-mailer"), showBody: showBody}
}

func (l *LogTransport) Name() string { return "log" }

func (l *LogTransport) Deliver(_ context.Context, msg Message) error {
	fields := []zap.Field{
		zap.String("from", msg.From),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Bool("html", msg.HTML),
	}
	if l.showBody {
		fields = append(fields, zap.String("body", msg.Body))
	} else {
		fields = append(fields, zap.Int("body_bytes", len(msg.Body)))
	}
	l.logger.Info("--- SIMULATING EMAIL SEND ---", fields...)
	return nil
}
