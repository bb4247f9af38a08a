package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/HloniTshele/Richfield-library-BackEnd/internal/metrics"

	"github.com/nats-io/nats.go"
)

type Producer struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewProducer(url string, subject string, logger *slog.Logger, m *metrics.Metrics) (*Producer, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject)

	return &Producer{
		conn:    nc,
		subject: subject,
		logger:  logger,
		metrics: m,
	}, nil
}

func (p *Producer) SendMessage(ctx context.Context, value interface{}) error {
	valueBytes, err := json.Marshal(value)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal message", "error", err)
		return err
	}

	start := time.Now()
	err = p.conn.Publish(p.subject, valueBytes)
	p.metrics.Messaging.RecordPublish(ctx, p.subject, time.Since(start), err)

	if err != nil {
		p.logger.ErrorContext(ctx, "failed to send message to NATS", "error", err)
		return err
	}

	p.logger.InfoContext(ctx, "message sent to NATS", "subject", p.subject)
	return nil
}

func (p *Producer) Close() error {
	p.conn.Close()
	return nil
}
