package webhook

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type MockWebhookUseCase struct {
	handleEventFunc func([]byte) error
	received        [][]byte
}

func (m *MockWebhookUseCase) HandleEvent(body []byte) error {
	m.received = append(m.received, body)
	if m.handleEventFunc != nil {
		return m.handleEventFunc(body)
	}
	return nil
}

func newTestController(t *testing.T, useCase *MockWebhookUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	loggerInstance, err := logger.NewLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	controller := NewWebhookController(useCase, loggerInstance)
	router := gin.New()
	router.GET("/webhook", controller.Liveness)
	router.POST("/webhook", controller.Receive)
	return router
}

func TestLiveness(t *testing.T) {
	router := newTestController(t, &MockWebhookUseCase{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "WAHA webhook endpoint", recorder.Body.String())
}

func TestReceive_ForwardsBody(t *testing.T) {
	useCase := &MockWebhookUseCase{}
	router := newTestController(t, useCase)
	payload := []byte(`{"event":"message","payload":{"id":"x"}}`)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBuffer(payload))
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "OK", recorder.Body.String())
	assert.Len(t, useCase.received, 1)
	assert.Equal(t, payload, useCase.received[0])
}

func TestReceive_ProcessingErrorStillAnswersOK(t *testing.T) {
	useCase := &MockWebhookUseCase{
		handleEventFunc: func(body []byte) error {
			return errors.New("malformed payload")
		},
	}
	router := newTestController(t, useCase)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString(`{"event":"junk"}`))
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "OK", recorder.Body.String())
}
