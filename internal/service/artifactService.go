package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/ds124wfegd/negative-web/internal/database"
	"github.com/ds124wfegd/negative-web/internal/entity"
	"github.com/ds124wfegd/negative-web/internal/pkg/kafka"
	"github.com/ds124wfegd/negative-web/internal/pkg/processor"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type artifactService struct {
	repo      database.ArtifactRepository
	producer  kafka.Producer
	processor processor.ImageProcessor
	now       func() time.Time
}

func NewArtifactService(repo database.ArtifactRepository, producer kafka.Producer, processor processor.ImageProcessor) ArtifactService {
	return &artifactService{
		repo:      repo,
		producer:  producer,
		processor: processor,
		now:       time.Now,
	}
}

// Store keeps blob and returns a handle to it. Images also get a preview;
// anything else is kept as an opaque download.
func (s *artifactService) Store(ctx context.Context, sessionID string, blob *entity.Blob) (*entity.Artifact, error) {
	id := uuid.New().String()
	artifact := &entity.Artifact{
		ID:          id,
		SessionID:   sessionID,
		URL:         "/artifacts/" + id,
		Filename:    blob.Filename,
		ContentType: blob.ContentType,
		CreatedAt:   s.now().UTC(),
	}

	size, err := s.repo.SaveFile(id, database.FileBlob, bytes.NewReader(blob.Data))
	if err != nil {
		return nil, err
	}
	artifact.Size = size

	inspection, err := s.processor.Inspect(blob)
	switch {
	case err == nil:
		artifact.Width = inspection.Width
		artifact.Height = inspection.Height
		if _, err := s.repo.SaveFile(id, database.FilePreview, bytes.NewReader(inspection.Preview)); err != nil {
			logrus.Warnf("Could not save preview for artifact %s: %v", id, err)
		} else {
			artifact.PreviewURL = artifact.URL + "/preview"
		}
	case errors.Is(err, entity.ErrNotAnImage):
		logrus.Debugf("Artifact %s is not an image, no preview", id)
	default:
		logrus.Warnf("Could not inspect artifact %s: %v", id, err)
	}

	if err := s.repo.Save(artifact); err != nil {
		s.repo.Delete(id)
		return nil, err
	}

	s.publish(ctx, entity.ArtifactEvent{
		Type:       entity.ArtifactCreated,
		ArtifactID: id,
		SessionID:  sessionID,
		Size:       size,
	})
	return artifact, nil
}

// Revoke releases the artifact. After it returns the handle no longer
// resolves.
func (s *artifactService) Revoke(ctx context.Context, artifact *entity.Artifact, reason string) {
	if artifact == nil {
		return
	}
	if err := s.repo.Delete(artifact.ID); err != nil {
		logrus.Errorf("Failed to revoke artifact %s: %v", artifact.ID, err)
		return
	}

	s.publish(ctx, entity.ArtifactEvent{
		Type:       entity.ArtifactRevoked,
		ArtifactID: artifact.ID,
		SessionID:  artifact.SessionID,
		Reason:     reason,
	})
}

func (s *artifactService) Open(id string, kind database.FileKind) (io.ReadCloser, *entity.Artifact, error) {
	artifact, err := s.repo.FindByID(id)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.repo.OpenFile(id, kind)
	if err != nil {
		return nil, nil, err
	}
	return reader, artifact, nil
}

func (s *artifactService) publish(ctx context.Context, event entity.ArtifactEvent) {
	event.Time = s.now().UTC()
	if err := s.producer.Publish(ctx, event); err != nil {
		logrus.Warnf("Failed to publish %s event for artifact %s: %v", event.Type, event.ArtifactID, err)
	}
}
