package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Upload validation errors, mapped to user-facing messages by the handlers.
var (
	errInvalidFileType = errors.New("file type not allowed")
	errFileTooLarge    = errors.New("file exceeds size limit")
	errSaveFailed      = errors.New("failed to save file")
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

var allowedImageMimes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// validateImageUpload checks extension, declared MIME type and sniffed
// content. Mislabeled files are rejected before any bytes are stored.
func validateImageUpload(file multipart.File, header *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		return errInvalidFileType
	}
	if declared := header.Header.Get("Content-Type"); declared != "" && !allowedImageMimes[declared] {
		return errInvalidFileType
	}

	// Sniff the leading bytes; the declared type is client-controlled.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("%w: %v", errSaveFailed, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", errSaveFailed, err)
	}
	if !allowedImageMimes[http.DetectContentType(head[:n])] {
		return errInvalidFileType
	}
	return nil
}

// saveUploadedImage writes the upload into destDir under a unique name
// derived from the uploader id, a timestamp and a random suffix. The size
// cap is enforced again while copying; an over-limit or failed copy leaves
// no file behind.
func saveUploadedImage(file multipart.File, header *multipart.FileHeader, destDir string, maxBytes int64, userID uint) (string, error) {
	if header.Size > maxBytes {
		return "", errFileTooLarge
	}
	if err := validateImageUpload(file, header); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("%d-%d-%s%s", userID, time.Now().UnixMilli(), suffix, ext)
	dstPath := filepath.Join(destDir, name)

	out, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errSaveFailed, err)
	}

	lr := &io.LimitedReader{R: file, N: maxBytes + 1}
	written, err := io.Copy(out, lr)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("%w: %v", errSaveFailed, err)
	}
	if written > maxBytes {
		_ = os.Remove(dstPath)
		return "", errFileTooLarge
	}

	return name, nil
}

// mediaTypeForExt maps a stored file extension to the MIME type sent to
// the analysis service.
func mediaTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

// ensureDir creates a directory if it does not exist yet.
func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
