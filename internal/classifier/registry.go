package classifier

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	apperrors "go-ekyc-verifier/internal/errors"
	"go-ekyc-verifier/internal/storage"
)

// Registry persists and loads trained artifacts as one opaque unit.
// The vectorizer and classifier are always written and read together,
// never mixed across training runs.
type Registry interface {
	Save(ctx context.Context, artifact *Artifact) error
	Load(ctx context.Context) (*Artifact, error)
}

func encodeArtifact(artifact *Artifact) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(artifact); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeArtifact(data []byte) (*Artifact, error) {
	var artifact Artifact
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&artifact); err != nil {
		return nil, err
	}
	return &artifact, nil
}

// FileRegistry stores the artifact on the local filesystem
type FileRegistry struct {
	path string
}

// NewFileRegistry creates a registry rooted at the given artifact path
func NewFileRegistry(path string) *FileRegistry {
	return &FileRegistry{path: path}
}

// Save writes the artifact atomically: encode to a temp file in the same
// directory, then rename over the target, so a reader never sees a
// partially written artifact.
func (r *FileRegistry) Save(_ context.Context, artifact *Artifact) error {
	data, err := encodeArtifact(artifact)
	if err != nil {
		return apperrors.NewPersistenceError("failed to encode artifact", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return apperrors.NewPersistenceError("failed to create temp artifact", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.NewPersistenceError("failed to write artifact", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.NewPersistenceError("failed to close artifact", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return apperrors.NewPersistenceError("failed to install artifact", err)
	}
	return nil
}

// Load reads and decodes the artifact from disk
func (r *FileRegistry) Load(_ context.Context) (*Artifact, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewModelNotTrainedError(fmt.Sprintf("no artifact at %s", r.path))
		}
		return nil, apperrors.NewPersistenceError("failed to read artifact", err)
	}
	artifact, err := decodeArtifact(data)
	if err != nil {
		return nil, apperrors.NewPersistenceError("artifact is corrupt", err)
	}
	return artifact, nil
}

// TryLock takes an advisory lock so at most one training run targets
// this artifact path at a time. Callers must Unlock when done.
func (r *FileRegistry) TryLock() error {
	lock, err := os.OpenFile(r.path+".lock", os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return apperrors.NewValidationError(
				fmt.Sprintf("another training run holds %s.lock", r.path), err)
		}
		return apperrors.NewPersistenceError("failed to create training lock", err)
	}
	return lock.Close()
}

// Unlock releases the advisory training lock
func (r *FileRegistry) Unlock() {
	os.Remove(r.path + ".lock")
}

// BlobRegistry stores the artifact in Azure blob storage
type BlobRegistry struct {
	blob      storage.BlobStorage
	container string
	name      string
}

// NewBlobRegistry creates a blob-backed registry
func NewBlobRegistry(blob storage.BlobStorage, container, name string) *BlobRegistry {
	return &BlobRegistry{blob: blob, container: container, name: name}
}

// Save uploads the encoded artifact; blob writes are atomic per blob
func (r *BlobRegistry) Save(ctx context.Context, artifact *Artifact) error {
	data, err := encodeArtifact(artifact)
	if err != nil {
		return apperrors.NewPersistenceError("failed to encode artifact", err)
	}
	if err := r.blob.UploadArtifact(ctx, r.container, r.name, data); err != nil {
		return apperrors.NewPersistenceError("failed to upload artifact", err)
	}
	return nil
}

// Load downloads and decodes the artifact
func (r *BlobRegistry) Load(ctx context.Context) (*Artifact, error) {
	data, err := r.blob.DownloadArtifact(ctx, r.container, r.name)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to download artifact", err)
	}
	artifact, err := decodeArtifact(data)
	if err != nil {
		return nil, apperrors.NewPersistenceError("artifact is corrupt", err)
	}
	return artifact, nil
}
