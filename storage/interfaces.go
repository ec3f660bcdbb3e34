package storage

import (
	"context"

	"flight-tracker/models"
)

// RowStore is the interface a relational backend for merged rows must satisfy.
type RowStore interface {
	Write(ctx context.Context, runID string, rows []models.NormalizedFareRow) error
	FetchAll(ctx context.Context) ([]models.NormalizedFareRow, error)
	Close() error
}

// ArtifactUploader publishes a finished merge artifact to remote storage.
type ArtifactUploader interface {
	Upload(ctx context.Context, localPath, key string) error
}
