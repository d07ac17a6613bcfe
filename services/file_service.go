// Copyright (c) 2026, WSO2 LLC. (https://www.wso2.com).
//
// WSO2 LLC. licenses this file to you under the Apache License,
// Version 2.0 (the "License"); you may not use this file except
// in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tracewayhq/traceway/fileregistry"
	"github.com/tracewayhq/traceway/models"
)

// FileService exposes the content-addressed file-version registry
// (spec.md §4.G). It is a thin logging wrapper over fileregistry.Registry,
// which already owns event publication.
type FileService interface {
	RecordWrite(ctx context.Context, path string, content []byte, spanID, traceID *uuid.UUID) (*models.FileVersion, error)
	RecordRead(ctx context.Context, path string, spanID, traceID *uuid.UUID) (*models.FileVersion, error)
	ListFiles(ctx context.Context, prefix string) ([]*models.TrackedFile, error)
	GetFileVersions(ctx context.Context, path string) ([]*models.FileVersion, error)
	GetFileContent(ctx context.Context, hash string) ([]byte, error)
	GetFileTraces(ctx context.Context, path string) ([]models.FileTraceRef, error)
}

type fileService struct {
	logger   *slog.Logger
	registry *fileregistry.Registry
}

// NewFileService creates a new file service.
func NewFileService(logger *slog.Logger, registry *fileregistry.Registry) FileService {
	return &fileService{logger: logger, registry: registry}
}

func (s *fileService) RecordWrite(ctx context.Context, path string, content []byte, spanID, traceID *uuid.UUID) (*models.FileVersion, error) {
	fv, err := s.registry.RecordWrite(ctx, path, content, spanID, traceID)
	if err != nil {
		s.logger.Error("failed to record file write", "path", path, "error", err)
		return nil, err
	}
	return fv, nil
}

func (s *fileService) RecordRead(ctx context.Context, path string, spanID, traceID *uuid.UUID) (*models.FileVersion, error) {
	return s.registry.RecordRead(ctx, path, spanID, traceID)
}

func (s *fileService) ListFiles(ctx context.Context, prefix string) ([]*models.TrackedFile, error) {
	return s.registry.List(ctx, prefix)
}

func (s *fileService) GetFileVersions(ctx context.Context, path string) ([]*models.FileVersion, error) {
	return s.registry.Versions(ctx, path)
}

func (s *fileService) GetFileContent(ctx context.Context, hash string) ([]byte, error) {
	return s.registry.Content(ctx, hash)
}

func (s *fileService) GetFileTraces(ctx context.Context, path string) ([]models.FileTraceRef, error) {
	return s.registry.Traces(ctx, path)
}
