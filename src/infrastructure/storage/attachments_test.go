package storage

import (
	"os"
	"path/filepath"
	"testing"

	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) *AttachmentStore {
	loggerInstance, err := logger.NewLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return NewAttachmentStore(t.TempDir(), loggerInstance)
}

func TestSave(t *testing.T) {
	store := newTestStore(t)

	path, fileURL, err := store.Save("a1b2c3d4e5.jpg", []byte("payload"))

	assert.NoError(t, err)
	assert.Equal(t, "/files/a1b2c3d4e5.jpg", fileURL)
	content, readErr := os.ReadFile(path)
	assert.NoError(t, readErr)
	assert.Equal(t, "payload", string(content))
}

func TestSave_TraversalNameStaysUnderRoot(t *testing.T) {
	store := newTestStore(t)

	path, fileURL, err := store.Save("../../etc/passwd", []byte("x"))

	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(store.root, "passwd"), path)
	assert.Equal(t, "/files/passwd", fileURL)
	content, readErr := os.ReadFile(path)
	assert.NoError(t, readErr)
	assert.Equal(t, "x", string(content))
}

func TestResolveExtension(t *testing.T) {
	// minimal PNG signature for the sniffing cases
	pngData := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

	tests := []struct {
		name        string
		mimeType    string
		contentType string
		data        []byte
		expected    string
	}{
		{"known mimetype", "image/jpeg", "image", nil, "jpg"},
		{"parameters stripped", "audio/ogg; codecs=opus", "audio", nil, "ogg"},
		{"subtype fallback", "image/heic", "image", nil, "heic"},
		{"sniffed from data", "", "image", pngData, "png"},
		{"octet-stream sniffs data", "application/octet-stream", "document", pngData, "png"},
		{"content type default", "", "document", nil, "pdf"},
		{"generic binary", "", "unknown", nil, "bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveExtension(tt.mimeType, tt.contentType, tt.data))
		})
	}
}

func TestMimetypeFromURL(t *testing.T) {
	assert.Equal(t, "image/jpeg", MimetypeFromURL("http://app.example.com/files/photo.JPG"))
	assert.Equal(t, "video/mp4", MimetypeFromURL("/files/clip.mp4"))
	assert.Equal(t, "application/pdf", MimetypeFromURL("/files/invoice.pdf"))
	assert.Equal(t, "application/octet-stream", MimetypeFromURL("/files/archive.tar.zst"))
}
