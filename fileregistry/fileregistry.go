// Package fileregistry implements the content-addressed file-version
// registry from spec.md §4.G on top of storage.Store: hashing, blob dedup,
// TrackedFile upsert and version history all live here so that every
// storage.Store backend only has to persist rows, not compute the
// content-addressing scheme.
package fileregistry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/tracewayhq/traceway/eventbus"
	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/storage"
)

// Registry records fs_write/fs_read span activity against a Store.
type Registry struct {
	store storage.Store
	bus   *eventbus.Bus
}

// New constructs a Registry over store, publishing file_version_created
// events on bus.
func New(store storage.Store, bus *eventbus.Bus) *Registry {
	return &Registry{store: store, bus: bus}
}

// Hash returns the content address (SHA-256, hex-encoded) for content.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// RecordWrite implements step 1-5 of spec.md §4.G: hash, dedup-insert the
// blob, append a FileVersion, upsert TrackedFile, and publish
// file_version_created.
func (r *Registry) RecordWrite(ctx context.Context, path string, content []byte, spanID, traceID *uuid.UUID) (*models.FileVersion, error) {
	fv, err := r.store.RecordWrite(ctx, path, content, spanID, traceID)
	if err != nil {
		return nil, err
	}
	if r.bus != nil {
		r.bus.Publish(eventbus.Event{
			Type:    eventbus.EventFileVersionCreated,
			ID:      spanIDOrZero(spanID),
			Payload: mustJSON(fv),
		})
	}
	return fv, nil
}

// RecordRead implements the fs_read case of spec.md §4.G: it records a
// version-reference using the currently tracked hash for path, attributing
// it to spanID/traceID so it surfaces in Traces, or leaves FileVersion nil
// if the path has never been written.
func (r *Registry) RecordRead(ctx context.Context, path string, spanID, traceID *uuid.UUID) (*models.FileVersion, error) {
	return r.store.RecordRead(ctx, path, spanID, traceID)
}

// Versions returns all historical versions of path, reverse-chronological.
func (r *Registry) Versions(ctx context.Context, path string) ([]*models.FileVersion, error) {
	return r.store.GetFileVersions(ctx, path)
}

// Content returns the blob for hash.
func (r *Registry) Content(ctx context.Context, hash string) ([]byte, error) {
	return r.store.GetFileContent(ctx, hash)
}

// Traces returns the spans that read or wrote path (spec.md §4.G).
func (r *Registry) Traces(ctx context.Context, path string) ([]models.FileTraceRef, error) {
	return r.store.GetFileTraces(ctx, path)
}

// List returns tracked files whose path starts with prefix ("" for all).
func (r *Registry) List(ctx context.Context, prefix string) ([]*models.TrackedFile, error) {
	return r.store.ListFiles(ctx, prefix)
}

func spanIDOrZero(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.UUID{}
	}
	return *id
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
