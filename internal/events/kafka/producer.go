package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/logger"
)

// Publisher writes booking events to one topic, keyed by item so that every
// event of an item lands on the same partition in order.
type Publisher struct {
	sync  sarama.SyncProducer
	topic string
}

func NewProducer(brokers []string, clientID, topic string) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Version = sarama.V2_8_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1
	sync, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return NewPublisher(sync, topic), nil
}

func NewPublisher(sync sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{sync: sync, topic: topic}
}

func (p *Publisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.Type, err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.ItemID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("event_id"), Value: []byte(event.ID)},
		},
	}

	logger.ExternalServiceCall("kafka", "SendMessage", "topic", p.topic, "type", event.Type)
	partition, offset, err := p.sync.SendMessage(msg)
	logger.ExternalServiceResult("kafka", "SendMessage", err, "partition", partition, "offset", offset)
	return err
}

func (p *Publisher) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}
