package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"predictionBot/internal/model"
)

// KafkaStorage publishes bet records to a topic, keyed by round.
type KafkaStorage struct {
	writer *kafka.Writer
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
	}
}

func NewKafkaStorage(writer *kafka.Writer) *KafkaStorage {
	return &KafkaStorage{writer: writer}
}

func (s *KafkaStorage) Append(ctx context.Context, records []model.BetRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs, err := kafkaMessages(records)
	if err != nil {
		return err
	}
	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish bet records: %w", err)
	}
	return nil
}

func (s *KafkaStorage) Close() error {
	return s.writer.Close()
}

func kafkaMessages(records []model.BetRecord) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(records))
	for _, record := range records {
		payload, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("marshal bet record: %w", err)
		}
		ts := record.RecordedAt
		if ts.IsZero() {
			ts = time.Now().UTC()
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(record.Round),
			Value: payload,
			Time:  ts,
		})
	}
	return msgs, nil
}
