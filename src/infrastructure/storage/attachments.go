package storage

import (
	"os"
	"path/filepath"
	"strings"

	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/gabriel-vasile/mimetype"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
)

// AttachmentStore writes downloaded media files under a fixed root directory
type AttachmentStore struct {
	root   string
	Logger *logger.Logger
}

func NewAttachmentStore(root string, loggerInstance *logger.Logger) *AttachmentStore {
	return &AttachmentStore{
		root:   root,
		Logger: loggerInstance,
	}
}

// Save writes data under the store root and returns the absolute path and
// the application-relative URL of the stored file. The name is flattened
// to its base and joined securely so a crafted name cannot escape the
// root or target a subdirectory that does not exist.
func (s *AttachmentStore) Save(fileName string, data []byte) (string, string, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", "", err
	}

	path, err := securejoin.SecureJoin(s.root, filepath.Base(filepath.Clean(fileName)))
	if err != nil {
		return "", "", err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.Logger.Error("Failed to write attachment", zap.Error(err), zap.String("path", path))
		return "", "", err
	}

	return path, "/files/" + filepath.Base(path), nil
}

// mimeExtensions maps common gateway mimetypes to file extensions
var mimeExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"video/mp4":  "mp4",
	"audio/ogg":  "ogg",
	"audio/mpeg": "mp3",
	"application/pdf": "pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       "xlsx",
}

// contentTypeExtensions is the last-resort default per message content type
var contentTypeExtensions = map[string]string{
	"image":    "jpg",
	"video":    "mp4",
	"audio":    "ogg",
	"document": "pdf",
}

// ResolveExtension picks a file extension for downloaded media. Resolution
// order: fixed mimetype table, the mimetype's subtype token, magic-byte
// sniffing of the data, content-type default, generic binary.
func ResolveExtension(mimeType string, contentType string, data []byte) string {
	if mimeType == "" && len(data) > 0 {
		mimeType = mimetype.Detect(data).String()
	}

	// strip parameters such as "; codecs=opus"
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}

	if ext, ok := mimeExtensions[mimeType]; ok {
		return ext
	}

	if idx := strings.Index(mimeType, "/"); idx >= 0 {
		subtype := mimeType[idx+1:]
		if subtype != "" && subtype != "octet-stream" {
			return subtype
		}
	}

	if len(data) > 0 {
		if kind, err := filetype.Match(data); err == nil && kind.Extension != "unknown" {
			return kind.Extension
		}
	}

	if ext, ok := contentTypeExtensions[contentType]; ok {
		return ext
	}

	return "bin"
}

// MimetypeFromURL maps a file URL's extension to a mimetype for outgoing
// custom attachments.
func MimetypeFromURL(url string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(url), "."))
	extMimetypes := map[string]string{
		"jpg":  "image/jpeg",
		"jpeg": "image/jpeg",
		"png":  "image/png",
		"gif":  "image/gif",
		"webp": "image/webp",
		"mp4":  "video/mp4",
		"pdf":  "application/pdf",
		"doc":  "application/msword",
		"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"xls":  "application/vnd.ms-excel",
		"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
	if mt, ok := extMimetypes[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}
