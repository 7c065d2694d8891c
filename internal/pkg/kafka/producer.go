package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ds124wfegd/negative-web/internal/entity"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Producer interface {
	Publish(ctx context.Context, event entity.ArtifactEvent) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
}

// NewProducer connects to brokers and makes sure topic exists. When the
// broker cannot be reached the returned producer only logs events.
func NewProducer(brokers, topic string) Producer {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", brokers)
	if err != nil {
		logrus.Warnf("Kafka connection failed, artifact events will only be logged: %v", err)
		return NewLogProducer()
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		logrus.Debugf("Could not create topic %s (might already exist): %v", topic, err)
	}

	logrus.Infof("Kafka producer connected to %s, topic %s", brokers, topic)
	return &kafkaProducer{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}}
}

func (p *kafkaProducer) Publish(ctx context.Context, event entity.ArtifactEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// keyed by session so one session's events stay ordered
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.SessionID),
		Value: value,
		Time:  event.Time,
	})
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

type logProducer struct{}

// NewLogProducer returns a producer that writes events to the log only.
func NewLogProducer() Producer {
	return logProducer{}
}

func (logProducer) Publish(_ context.Context, event entity.ArtifactEvent) error {
	logrus.WithFields(logrus.Fields{
		"type":        event.Type,
		"artifact_id": event.ArtifactID,
		"session_id":  event.SessionID,
		"reason":      event.Reason,
	}).Debug("artifact event")
	return nil
}

func (logProducer) Close() error {
	return nil
}
