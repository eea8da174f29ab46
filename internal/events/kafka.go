package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/yourorg/chat-app/services/dm-service/internal/config"
)

// KafkaPublisher routes each event type to its configured topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	topics map[string]string
}

func NewKafkaPublisher(cfg *config.KafkaConfig) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaPublisher{
		writer: w,
		topics: map[string]string{
			TypeMessageSent:         cfg.TopicMessageSent,
			TypeConversationUpdated: cfg.TopicConversationUpdated,
			TypePresenceChanged:     cfg.TopicPresenceChanged,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	topic, ok := p.topics[ev.Type]
	if !ok {
		topic = ev.Type
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	// Key by conversation (or user for presence) so one thread's events
	// stay ordered within a partition.
	key := ev.ConversationID
	if key == "" {
		key = ev.UserID
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  ev.OccurredAt,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
