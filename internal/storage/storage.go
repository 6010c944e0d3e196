package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"inventory/internal/apperrors"
)

// Sub-directories of the upload root, chosen by MIME type.
const (
	ImagesDir    = "images"
	DocumentsDir = "documents"
)

// URLPrefix is the public path the upload root is served under.
const URLPrefix = "/uploads"

const maxBaseNameLen = 50

var allowedTypes = map[string]struct{}{
	"image/jpeg":         {},
	"image/png":          {},
	"image/gif":          {},
	"image/webp":         {},
	"application/pdf":    {},
	"text/plain":         {},
	"text/csv":           {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Allowed reports whether uploads of the given MIME type are accepted.
func Allowed(mimeType string) bool {
	_, ok := allowedTypes[mimeType]
	return ok
}

// StoredFile describes a file written to the upload root.
type StoredFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
}

// Disk stores uploads under root/images and root/documents.
type Disk struct {
	root string
	now  func() time.Time
}

// NewDisk creates the upload directories if needed.
func NewDisk(root string) (*Disk, error) {
	for _, dir := range []string{ImagesDir, DocumentsDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create upload directory %s: %w", dir, err)
		}
	}
	return &Disk{root: root, now: time.Now}, nil
}

// Save copies r into a new file named after originalName. mimeType must
// already be checked with Allowed.
func (d *Disk) Save(r io.Reader, originalName, mimeType string) (*StoredFile, error) {
	dir := DirFor(mimeType)
	filename, err := d.uniqueName(originalName)
	if err != nil {
		return nil, err
	}

	fullPath := filepath.Join(d.root, dir, filename)
	out, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", fullPath, err)
	}

	size, err := io.Copy(out, r)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(fullPath)
		return nil, fmt.Errorf("write %s: %w", fullPath, err)
	}

	log.Info().Str("original", originalName).Str("stored", filename).Int64("size", size).Msg("file uploaded")

	return &StoredFile{
		Filename:     filename,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         size,
		URL:          URLPrefix + "/" + dir + "/" + filename,
	}, nil
}

// Delete removes filename from both upload directories. A file that does not
// exist is not an error, so repeated or racing deletes are harmless.
func (d *Disk) Delete(filename string) error {
	name, err := CleanFilename(filename)
	if err != nil {
		return err
	}

	var firstErr error
	for _, dir := range []string{ImagesDir, DocumentsDir} {
		target := filepath.Join(d.root, dir, name)
		if err := os.Remove(target); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("remove %s: %w", target, err)
			}
			continue
		}
		log.Info().Str("path", target).Msg("file deleted")
	}
	return firstErr
}

// DirFor picks the upload sub-directory for a MIME type.
func DirFor(mimeType string) string {
	if strings.HasPrefix(mimeType, "image/") {
		return ImagesDir
	}
	return DocumentsDir
}

// CleanFilename rejects empty names and anything that could leave the upload root.
func CleanFilename(filename string) (string, error) {
	name := strings.TrimSpace(filename)
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", apperrors.ErrInvalidFilename
	}
	return name, nil
}

// SanitizeBaseName replaces every non-alphanumeric character with an
// underscore and truncates the result.
func SanitizeBaseName(name string) string {
	cleaned := unsafeChars.ReplaceAllString(name, "_")
	if len(cleaned) > maxBaseNameLen {
		cleaned = cleaned[:maxBaseNameLen]
	}
	return cleaned
}

func (d *Disk) uniqueName(originalName string) (string, error) {
	base := filepath.Base(originalName)
	ext := filepath.Ext(base)
	stem := SanitizeBaseName(strings.TrimSuffix(base, ext))
	if ext != "" && unsafeChars.MatchString(ext[1:]) {
		ext = "." + SanitizeBaseName(ext[1:])
	}

	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate filename suffix: %w", err)
	}
	return fmt.Sprintf("%s_%d-%s%s", stem, d.now().UnixMilli(), hex.EncodeToString(suffix), ext), nil
}
