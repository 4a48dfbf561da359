package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// DefaultMaxUploadSize bounds a single attachment when no limit is configured
const DefaultMaxUploadSize = 10 * 1024 * 1024 // 10MB

// AllowedAttachmentExtensions lists the accepted source document types
var AllowedAttachmentExtensions = []string{"jpg", "jpeg", "docx", "png", "pdf"}

// Attachment is one uploaded supporting document held in memory until the
// transfer request that owns it has passed validation.
type Attachment struct {
	FileName string
	Content  []byte
}

// Extension returns the lower-cased extension without the dot
func (a Attachment) Extension() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(a.FileName), "."))
}

// ValidateAttachment checks that the attachment is non-empty, within size
// and of an allowed type
func ValidateAttachment(a Attachment, maxSize int64) error {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	if len(a.Content) == 0 {
		return fmt.Errorf("%w: %q is empty", ErrInvalidAttachment, a.FileName)
	}
	if int64(len(a.Content)) > maxSize {
		return fmt.Errorf("%w: %q exceeds maximum allowed size of %d bytes", ErrInvalidAttachment, a.FileName, maxSize)
	}

	ext := a.Extension()
	for _, allowed := range AllowedAttachmentExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %q file type not allowed. Accepted formats: JPG, JPEG, PNG, PDF, DOCX", ErrInvalidAttachment, a.FileName)
}

// ReadAttachment loads a multipart upload into memory. Anything larger than
// maxSize is rejected without reading the rest of the body.
func ReadAttachment(fileHeader *multipart.FileHeader, maxSize int64) (Attachment, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	if fileHeader.Size > maxSize {
		return Attachment{}, fmt.Errorf("%w: %q exceeds maximum allowed size of %d bytes", ErrInvalidAttachment, fileHeader.Filename, maxSize)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if int64(len(content)) > maxSize {
		return Attachment{}, fmt.Errorf("%w: %q exceeds maximum allowed size of %d bytes", ErrInvalidAttachment, fileHeader.Filename, maxSize)
	}

	return Attachment{FileName: filepath.Base(fileHeader.Filename), Content: content}, nil
}
