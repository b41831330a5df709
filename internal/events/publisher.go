package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// AuthEvent is published on account lifecycle transitions so downstream
// consumers (notifications, analytics) can react without coupling to this
// service.
type AuthEvent struct {
	Type      string    `json:"type"` // user.registered | user.activated | user.login
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher writes auth events to Kafka. A nil Publisher (no brokers
// configured) is a no-op, matching how the optional mail client degrades.
type Publisher struct {
	writer *kafka.Writer
	logger *zap.SugaredLogger
}

func NewPublisher(brokers []string, topic string, logger *zap.SugaredLogger) *Publisher {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &Publisher{writer: w, logger: logger}
}

// Publish writes the event asynchronously; delivery is best-effort and
// failures are logged only.
func (p *Publisher) Publish(ev AuthEvent) {
	if p == nil || p.writer == nil {
		return
	}
	ev.Timestamp = time.Now().UTC()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		b, err := json.Marshal(ev)
		if err != nil {
			p.logger.Warnw("failed to marshal auth event", "type", ev.Type, "error", err)
			return
		}
		msg := kafka.Message{Key: []byte(ev.UserID), Value: b, Time: time.Now()}
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			p.logger.Warnw("failed to publish auth event", "type", ev.Type, "error", err)
		}
	}()
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
