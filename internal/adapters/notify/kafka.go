package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/p2p_ledger/internal/core/ports/services"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the notifier uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TransferEvent is the payload published for each notification.
type TransferEvent struct {
	EventType  string    `json:"eventType"`
	AccountID  string    `json:"accountID"`
	Reference  string    `json:"reference"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Amount     string    `json:"amount"`
	Unit       string    `json:"unit"`
	OccurredAt time.Time `json:"occurredAt"`
}

// KafkaNotifier publishes notifications keyed by transfer reference, so both sides of a
// transfer land on the same partition.
type KafkaNotifier struct {
	writer messageWriter
	now    func() time.Time
}

var _ portssvc.Notifier = (*KafkaNotifier)(nil)

// NewKafkaWriter builds a synchronous writer; delivery already runs off the request path.
func NewKafkaWriter(brokers []string, topic string, logger *slog.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(msg, args...))
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error(fmt.Sprintf(msg, args...))
		}),
	}
}

func NewKafkaNotifier(writer messageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: writer, now: func() time.Time { return time.Now().UTC() }}
}

func (k *KafkaNotifier) Notify(ctx context.Context, n domain.Notification) error {
	event := TransferEvent{
		EventType:  string(n.Kind),
		AccountID:  n.AccountID,
		Reference:  n.Reference,
		Title:      n.Title,
		Message:    n.Message,
		Amount:     n.Amount.String(),
		Unit:       n.Unit,
		OccurredAt: k.now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode transfer event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(n.Reference),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish transfer event %s: %w", n.Reference, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
