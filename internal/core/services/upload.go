package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
	"github.com/custodia-labs/medreport/internal/core/ports/driving"
	"github.com/custodia-labs/medreport/internal/logger"
)

// Ensure UploadService implements the interface.
var _ driving.UploadService = (*UploadService)(nil)

// Upload result messages.
const (
	uploadMessageText   = "File uploaded successfully. Text extracted."
	uploadMessageVision = "File uploaded successfully. Image or scanned PDF detected, it will be analysed with a vision model."
)

// UploadService validates, stores and extracts text from report files.
type UploadService struct {
	fileStore   driven.FileStore
	normalisers driven.NormaliserRegistry
	settings    domain.UploadSettings
}

// NewUploadService creates a new upload service.
// The normaliser registry is optional; without it no text is extracted.
func NewUploadService(
	fileStore driven.FileStore,
	normalisers driven.NormaliserRegistry,
	settings domain.UploadSettings,
) *UploadService {
	return &UploadService{
		fileStore:   fileStore,
		normalisers: normalisers,
		settings:    settings,
	}
}

// Upload validates and stores a report, extracting its text when possible.
func (s *UploadService) Upload(ctx context.Context, filename string, data []byte) (*domain.UploadResult, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: no filename provided", domain.ErrInvalidInput)
	}

	ext := domain.FileExtension(filename)
	if !s.settings.IsAllowed(ext) {
		return nil, fmt.Errorf("%w: .%s (allowed: %s)",
			domain.ErrUnsupportedType, ext, strings.Join(s.settings.AllowedExtensions, ", "))
	}

	size := int64(len(data))
	if size > s.settings.MaxFileSizeBytes() {
		return nil, fmt.Errorf("%w: maximum allowed is %dMB", domain.ErrFileTooLarge, s.settings.MaxFileSizeMB)
	}

	fileType, err := domain.DetectFileType(filename)
	if err != nil {
		return nil, err
	}

	fileID := uuid.New().String()
	stored, err := s.fileStore.Save(ctx, fileID, filename, data)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	logger.Debug("Stored %s as %s (%d bytes)", filename, stored.Path, size)

	result := &domain.UploadResult{
		FileID:        fileID,
		Filename:      filename,
		FileType:      fileType,
		FileSizeBytes: size,
		UploadTime:    time.Now(),
		Message:       uploadMessageVision,
	}

	if text := s.extractText(ctx, fileType, stored); text != "" {
		result.ExtractedText = &text
		result.Message = uploadMessageText
	}

	return result, nil
}

func (s *UploadService) extractText(ctx context.Context, fileType domain.FileType, file *domain.StoredFile) string {
	if s.normalisers == nil || fileType == domain.FileTypeImage {
		return ""
	}

	res, err := s.normalisers.Normalise(ctx, fileType, file)
	if err != nil {
		if !errors.Is(err, domain.ErrNoText) {
			logger.Warn("Text extraction failed for %s: %v", file.Filename, err)
		}
		return ""
	}
	if strings.TrimSpace(res.Text) == "" {
		return ""
	}
	return res.Text
}
