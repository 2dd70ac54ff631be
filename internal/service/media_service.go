package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/catprepedge/catprep-backend/internal/config"
	"github.com/google/uuid"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrInvalidFolder       = errors.New("invalid upload folder")
)

// Allowed image MIME types, detected from the file content.
var allowedMIMETypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload folders under the upload dir.
const (
	FolderPosts     = "posts"
	FolderQuestions = "questions"
)

// MediaService stores blog and question images on local disk.
type MediaService struct {
	dir      string
	maxBytes int64
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{dir: cfg.UploadDir, maxBytes: cfg.MaxUploadBytes}
}

// SaveImage stores an image under folder with a UUID filename and returns
// its public path, e.g. /uploads/posts/<uuid>.png.
func (s *MediaService) SaveImage(folder string, r io.Reader, size int64) (string, error) {
	if folder != FolderPosts && folder != FolderQuestions {
		return "", ErrInvalidFolder
	}
	if size > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, size, s.maxBytes)
	}

	// Sniff the type from the first 512 bytes instead of trusting the client header.
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := allowedMIMETypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, contentType, strings.Join(allowedTypes(), ", "))
	}

	destDir := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(destDir, filename))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	// The limit catches clients that under-report the size.
	written, err := io.Copy(dst, io.LimitReader(io.MultiReader(bytes.NewReader(head), r), s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	if written > s.maxBytes {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.maxBytes)
	}

	return "/uploads/" + folder + "/" + filename, nil
}

func allowedTypes() []string {
	types := make([]string, 0, len(allowedMIMETypes))
	for t := range allowedMIMETypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
