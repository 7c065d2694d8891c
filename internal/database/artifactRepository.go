package database

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"path"

	"github.com/ds124wfegd/negative-web/internal/entity"
	"github.com/ds124wfegd/negative-web/internal/pkg/storage"
)

func NewArtifactRepository(storage storage.FileStorage) ArtifactRepository {
	return &fileArtifactRepository{storage: storage}
}

func (r *fileArtifactRepository) Save(artifact *entity.Artifact) error {
	data, err := json.Marshal(artifact)
	if err != nil {
		return err
	}

	_, err = r.storage.Save(r.metadataPath(artifact.ID), bytes.NewReader(data))
	return err
}

func (r *fileArtifactRepository) FindByID(id string) (*entity.Artifact, error) {
	reader, err := r.storage.Get(r.metadataPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrInvalidPath) {
			return nil, entity.ErrArtifactNotFound
		}
		return nil, err
	}
	defer reader.Close()

	var artifact entity.Artifact
	if err := json.NewDecoder(reader).Decode(&artifact); err != nil {
		return nil, err
	}
	return &artifact, nil
}

// Delete removes metadata first so a concurrent lookup cannot find an
// artifact whose bytes are already gone.
func (r *fileArtifactRepository) Delete(id string) error {
	if err := r.storage.Delete(r.metadataPath(id)); err != nil {
		return err
	}
	return r.storage.Delete(path.Join("artifacts", id))
}

func (r *fileArtifactRepository) SaveFile(id string, kind FileKind, data io.Reader) (int64, error) {
	return r.storage.Save(r.filePath(id, kind), data)
}

func (r *fileArtifactRepository) OpenFile(id string, kind FileKind) (io.ReadCloser, error) {
	reader, err := r.storage.Get(r.filePath(id, kind))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrInvalidPath) {
			return nil, entity.ErrArtifactNotFound
		}
		return nil, err
	}
	return reader, nil
}

func (r *fileArtifactRepository) filePath(id string, kind FileKind) string {
	return path.Join("artifacts", id, string(kind))
}

func (r *fileArtifactRepository) metadataPath(id string) string {
	return path.Join("metadata", id+".json")
}
