package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileType is the broad kind of an uploaded report file.
type FileType string

// Supported file types.
const (
	FileTypePDF   FileType = "pdf"
	FileTypeImage FileType = "image"
	FileTypeText  FileType = "text"
)

// String returns the string representation.
func (t FileType) String() string {
	return string(t)
}

// DetectFileType derives the file type from a filename's extension.
func DetectFileType(filename string) (FileType, error) {
	ext := FileExtension(filename)
	switch ext {
	case "pdf":
		return FileTypePDF, nil
	case "png", "jpg", "jpeg":
		return FileTypeImage, nil
	case "txt":
		return FileTypeText, nil
	default:
		return "", fmt.Errorf("%w: .%s", ErrUnsupportedType, ext)
	}
}

// FileExtension returns the lowercased extension without the dot.
func FileExtension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// ImageMIMEType returns the MIME type for an image filename.
// Unknown extensions default to PNG.
func ImageMIMEType(filename string) string {
	switch FileExtension(filename) {
	case "jpg", "jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}

// StoredFile describes an uploaded report persisted by a FileStore.
type StoredFile struct {
	// FileID is the identifier handed back to callers.
	FileID string

	// Filename is the original name supplied by the uploader.
	Filename string

	// Path is the location of the stored bytes.
	Path string

	// Size is the stored size in bytes.
	Size int64
}

// UploadResult is returned after a report has been stored.
type UploadResult struct {
	FileID        string    `json:"file_id"`
	Filename      string    `json:"filename"`
	FileType      FileType  `json:"file_type"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	ExtractedText *string   `json:"extracted_text,omitempty"`
	UploadTime    time.Time `json:"upload_time"`
	Message       string    `json:"message"`
}

// RequiresVision returns true when the report has no text and will be
// analysed from its image.
func (r *UploadResult) RequiresVision() bool {
	return r.ExtractedText == nil
}
