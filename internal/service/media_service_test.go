package service

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/catprepedge/catprep-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func TestMediaService_SaveImage(t *testing.T) {
	dir := t.TempDir()
	svc := NewMediaService(&config.Config{UploadDir: dir, MaxUploadBytes: 1 << 20})

	png, err := base64.StdEncoding.DecodeString(tinyPNG)
	require.NoError(t, err)

	url, err := svc.SaveImage(FolderPosts, bytes.NewReader(png), int64(len(png)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/posts/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored, err := os.ReadFile(filepath.Join(dir, "posts", filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, png, stored)
}

func TestMediaService_Rejects(t *testing.T) {
	svc := NewMediaService(&config.Config{UploadDir: t.TempDir(), MaxUploadBytes: 64})

	_, err := svc.SaveImage("avatars", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrInvalidFolder)

	_, err = svc.SaveImage(FolderPosts, strings.NewReader("plain text, not an image"), 24)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = svc.SaveImage(FolderPosts, strings.NewReader("x"), 65)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}
