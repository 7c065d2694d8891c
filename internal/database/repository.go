package database

import (
	"context"
	"io"

	"github.com/ds124wfegd/negative-web/internal/entity"
	"github.com/ds124wfegd/negative-web/internal/pkg/storage"
)

type ArtifactRepository interface {
	Save(artifact *entity.Artifact) error
	FindByID(id string) (*entity.Artifact, error)
	Delete(id string) error
	SaveFile(id string, kind FileKind, data io.Reader) (int64, error)
	OpenFile(id string, kind FileKind) (io.ReadCloser, error)
}

// SnapshotRepository mirrors session view state outside the process.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, sessionID string, state entity.UIState) error
	LoadSnapshot(ctx context.Context, sessionID string) (*entity.UIState, error)
	DeleteSnapshot(ctx context.Context, sessionID string) error
}

type FileKind string

const (
	FileBlob    FileKind = "blob"
	FilePreview FileKind = "preview"
)

type fileArtifactRepository struct {
	storage storage.FileStorage
}
