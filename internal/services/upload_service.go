package services

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"

	"inventory/internal/apperrors"
	"inventory/internal/storage"
)

const octetStream = "application/octet-stream"

// UploadService accepts multipart file uploads and removes stored files.
type UploadService struct {
	disk    *storage.Disk
	maxSize int64
}

// NewUploadService creates a new UploadService writing to disk.
func NewUploadService(disk *storage.Disk, maxSize int64) *UploadService {
	return &UploadService{disk: disk, maxSize: maxSize}
}

// Upload validates the size and MIME type of fh and stores it.
func (s *UploadService) Upload(fh *multipart.FileHeader) (*storage.StoredFile, error) {
	if fh == nil {
		return nil, apperrors.ErrNoFile
	}
	if fh.Size > s.maxSize {
		return nil, apperrors.ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	mimeType, err := detectType(fh.Header.Get("Content-Type"), f)
	if err != nil {
		return nil, err
	}
	if !storage.Allowed(mimeType) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrFileTypeNotAllowed, mimeType)
	}

	// The declared size can lie; never write more than the cap.
	limited := io.LimitReader(f, s.maxSize+1)
	stored, err := s.disk.Save(limited, fh.Filename, mimeType)
	if err != nil {
		return nil, err
	}
	if stored.Size > s.maxSize {
		_ = s.disk.Delete(stored.Filename)
		return nil, apperrors.ErrFileTooLarge
	}
	return stored, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *UploadService) Delete(filename string) error {
	return s.disk.Delete(filename)
}

// detectType trusts the declared part type unless it is absent or generic,
// in which case the content is sniffed and f is rewound.
func detectType(declared string, f multipart.File) (string, error) {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != octetStream {
		return mediaType, nil
	}

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect file type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	mediaType, _, err := mime.ParseMediaType(detected.String())
	if err != nil {
		return detected.String(), nil
	}
	return mediaType, nil
}
