// consumer printing the artifact event stream
package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ds124wfegd/negative-web/config"
	"github.com/ds124wfegd/negative-web/internal/entity"
	"github.com/ds124wfegd/negative-web/internal/pkg/kafka"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	cfg := config.Default()
	brokers := strings.Split(config.GetEnv("KAFKA_BROKERS", cfg.Kafka.Brokers), ",")
	topic := config.GetEnv("KAFKA_TOPIC", cfg.Kafka.Topic)
	groupID := config.GetEnv("KAFKA_GROUP_ID", cfg.Kafka.GroupID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := kafka.Consume(ctx, brokers, topic, groupID, func(event entity.ArtifactEvent) error {
		logrus.WithFields(logrus.Fields{
			"type":        event.Type,
			"artifact_id": event.ArtifactID,
			"session_id":  event.SessionID,
			"size":        event.Size,
			"reason":      event.Reason,
			"time":        event.Time,
		}).Info("Artifact event")
		return nil
	})
	if err != nil {
		logrus.Fatalf("Event log consumer failed: %v", err)
	}
}
