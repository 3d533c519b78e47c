package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/segmentio/kafka-go"
	"github.com/smallbiznis/ledgerly/internal/config"
	"github.com/smallbiznis/ledgerly/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	TypeVoucherCreated = "voucher.created"
	TypeVoucherUpdated = "voucher.updated"
	TypeVoucherDeleted = "voucher.deleted"
)

// Event is the wire payload of a committed voucher change.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	CompanyID     string    `json:"company_id"`
	VoucherID     string    `json:"voucher_id"`
	VoucherType   string    `json:"voucher_type"`
	VoucherNumber string    `json:"voucher_number,omitempty"`
	GrandTotal    string    `json:"grand_total,omitempty"`
	Revision      int       `json:"revision"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher delivers events after the owning transaction committed.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// Writer is the subset of kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer Writer
	log    *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return NewKafkaPublisherWithWriter(w, log)
}

func NewKafkaPublisherWithWriter(w Writer, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, log: log.Named("events.kafka")}
}

// Publish keys messages by voucher id so one voucher's events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	if evt.ID == "" {
		evt.ID = ulid.Make().String()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(evt.VoucherID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
		},
	}
	for k, v := range correlation.Headers(ctx) {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warn("kafka write failed",
			zap.String("event_type", evt.Type),
			zap.String("voucher_id", evt.VoucherID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type noopPublisher struct{}

// NewNoop returns a publisher that drops every event.
func NewNoop() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, Event) error { return nil }
func (noopPublisher) Close() error                         { return nil }

func provide(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("kafka brokers not configured; voucher events disabled")
		return NewNoop()
	}
	p := NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return p.Close()
		},
	})
	log.Info("voucher events enabled",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
	)
	return p
}

var Module = fx.Module("events",
	fx.Provide(provide),
)
