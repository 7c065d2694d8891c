package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ds124wfegd/negative-web/internal/entity"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type EventHandler func(entity.ArtifactEvent) error

// Consume reads artifact events until ctx is cancelled. Malformed messages
// are logged and skipped.
func Consume(ctx context.Context, brokers []string, topic, groupID string, handle EventHandler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})
	defer reader.Close()

	logrus.Infof("Event log consumer started, brokers %v, topic %s", brokers, topic)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			logrus.Errorf("Error reading message from Kafka: %v", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		var event entity.ArtifactEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logrus.Warnf("Skipping malformed event at partition %d offset %d: %v", msg.Partition, msg.Offset, err)
			continue
		}

		if err := handle(event); err != nil {
			logrus.Errorf("Handling event for artifact %s failed: %v", event.ArtifactID, err)
		}
	}
}
