package waha

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	domainErrors "go-whatsapp-gateway-api/src/domain/errors"
	"go-whatsapp-gateway-api/src/infrastructure/config"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"github.com/stretchr/testify/assert"
)

func setupLogger(t *testing.T) *logger.Logger {
	loggerInstance, err := logger.NewLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return loggerInstance
}

func TestClientPost_Success(t *testing.T) {
	var gotPath, gotAPIKey, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("X-Api-Key")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"true_123@c.us_AAA"}`))
	}))
	defer server.Close()

	client := NewClient(config.Settings{WahaURL: server.URL, APIKey: "secret"}, setupLogger(t))
	response, err := client.Post("/api/sendText", []byte(`{"text":"hi"}`))

	assert.NoError(t, err)
	assert.Contains(t, string(response), "true_123@c.us_AAA")
	assert.Equal(t, "/api/sendText", gotPath)
	assert.Equal(t, "secret", gotAPIKey)
	assert.Equal(t, "application/json", gotContentType)
}

func TestClientPost_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"session not started"}`))
	}))
	defer server.Close()

	client := NewClient(config.Settings{WahaURL: server.URL}, setupLogger(t))
	_, err := client.Post("/api/sendText", []byte(`{}`))

	assert.Error(t, err)
	var appErr *domainErrors.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, domainErrors.GatewayError, appErr.Type)
	assert.Equal(t, "session not started", appErr.Error())
}

func TestClientPost_MissingBaseURL(t *testing.T) {
	client := NewClient(config.Settings{}, setupLogger(t))
	_, err := client.Post("/api/sendText", []byte(`{}`))

	assert.Error(t, err)
	var appErr *domainErrors.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, domainErrors.ConfigurationError, appErr.Type)
}

func TestClientPut_UsesPutMethod(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(config.Settings{WahaURL: server.URL}, setupLogger(t))
	_, err := client.Put("/api/reaction", []byte(`{"reaction":"👍"}`))

	assert.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
}

func TestDownloadMedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		_, _ = w.Write([]byte("media-bytes"))
	}))
	defer server.Close()

	client := NewClient(config.Settings{WahaURL: server.URL, APIKey: "secret"}, setupLogger(t))
	data, err := client.DownloadMedia(server.URL + "/api/files/abc.jpg")

	assert.NoError(t, err)
	assert.Equal(t, []byte("media-bytes"), data)
}

func TestDownloadMedia_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(config.Settings{WahaURL: server.URL}, setupLogger(t))
	_, err := client.DownloadMedia(server.URL + "/api/files/missing.jpg")

	assert.Error(t, err)
}
