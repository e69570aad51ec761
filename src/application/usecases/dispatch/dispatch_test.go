package dispatch

import (
	"encoding/json"
	"errors"
	"testing"

	domainErrors "go-whatsapp-gateway-api/src/domain/errors"
	domainMessage "go-whatsapp-gateway-api/src/domain/message"
	"go-whatsapp-gateway-api/src/infrastructure/config"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

// MockMessageRepository implements message.MessageRepositoryInterface
type MockMessageRepository struct {
	createFunc    func(*domainMessage.Message) (*domainMessage.Message, error)
	updateFunc    func(int, map[string]interface{}) (*domainMessage.Message, error)
	getQueuedFunc func(int) (*[]domainMessage.Message, error)
}

func (m *MockMessageRepository) Create(msg *domainMessage.Message) (*domainMessage.Message, error) {
	if m.createFunc != nil {
		return m.createFunc(msg)
	}
	return msg, nil
}

func (m *MockMessageRepository) GetByID(id int) (*domainMessage.Message, error) {
	return &domainMessage.Message{ID: id}, nil
}

func (m *MockMessageRepository) GetByMessageID(messageID string) (*domainMessage.Message, error) {
	return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
}

func (m *MockMessageRepository) Update(id int, messageMap map[string]interface{}) (*domainMessage.Message, error) {
	if m.updateFunc != nil {
		return m.updateFunc(id, messageMap)
	}
	return &domainMessage.Message{ID: id}, nil
}

func (m *MockMessageRepository) GetQueuedOutgoing(limit int) (*[]domainMessage.Message, error) {
	if m.getQueuedFunc != nil {
		return m.getQueuedFunc(limit)
	}
	return &[]domainMessage.Message{}, nil
}

func (m *MockMessageRepository) GetByCampaignAndStatus(campaignID int, status string) (*[]domainMessage.Message, error) {
	return &[]domainMessage.Message{}, nil
}

func (m *MockMessageRepository) CountByCampaignAndStatuses(campaignID int, statuses []string) (int, error) {
	return 0, nil
}

// MockAuditLogRepository implements auditlog.AuditLogRepositoryInterface
type MockAuditLogRepository struct {
	entries []string
}

func (m *MockAuditLogRepository) Append(template string, metadata interface{}) error {
	m.entries = append(m.entries, template)
	return nil
}

// MockWahaClient implements waha.ClientInterface
type MockWahaClient struct {
	postFunc func(string, []byte) ([]byte, error)
	putFunc  func(string, []byte) ([]byte, error)
}

func (m *MockWahaClient) Post(endpoint string, body []byte) ([]byte, error) {
	if m.postFunc != nil {
		return m.postFunc(endpoint, body)
	}
	return []byte(`{"id":"gw-1"}`), nil
}

func (m *MockWahaClient) Put(endpoint string, body []byte) ([]byte, error) {
	if m.putFunc != nil {
		return m.putFunc(endpoint, body)
	}
	return []byte(`{"id":"gw-1"}`), nil
}

func (m *MockWahaClient) DownloadMedia(url string) ([]byte, error) {
	return nil, nil
}

func setupLogger(t *testing.T) *logger.Logger {
	loggerInstance, err := logger.NewLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return loggerInstance
}

func newTestDispatcher(
	t *testing.T,
	wahaClient *MockWahaClient,
	messageRepository *MockMessageRepository,
) (IDispatchUseCase, *MockAuditLogRepository) {
	auditRepository := &MockAuditLogRepository{}
	settings := config.Settings{
		SessionName: "default",
		AppURL:      "http://app.example.com",
	}
	useCase := NewDispatchUseCase(wahaClient, messageRepository, auditRepository, settings, setupLogger(t))
	return useCase, auditRepository
}

func TestDispatch_TextMessage(t *testing.T) {
	var gotEndpoint string
	var gotBody []byte
	wahaClient := &MockWahaClient{
		postFunc: func(endpoint string, body []byte) ([]byte, error) {
			gotEndpoint = endpoint
			gotBody = body
			return []byte(`{"id":"true_123@c.us_AAA"}`), nil
		},
	}
	useCase, _ := newTestDispatcher(t, wahaClient, &MockMessageRepository{})

	msg := &domainMessage.Message{
		ID:          1,
		To:          "+1 555-123-4567",
		Message:     "hello",
		ContentType: domainMessage.ContentTypeText,
	}
	err := useCase.Dispatch(msg)

	assert.NoError(t, err)
	assert.Equal(t, EndpointSendText, gotEndpoint)
	assert.Equal(t, "15551234567@c.us", gjson.GetBytes(gotBody, "chatId").String())
	assert.Equal(t, "hello", gjson.GetBytes(gotBody, "text").String())
	assert.Equal(t, "default", gjson.GetBytes(gotBody, "session").String())
	assert.Equal(t, domainMessage.StatusSuccess, msg.Status)
	assert.Equal(t, "true_123@c.us_AAA", msg.MessageID)
}

func TestDispatch_ImageWithCaptionAndRelativeAttach(t *testing.T) {
	var gotBody []byte
	wahaClient := &MockWahaClient{
		postFunc: func(endpoint string, body []byte) ([]byte, error) {
			assert.Equal(t, EndpointSendImage, endpoint)
			gotBody = body
			return []byte(`{"id":"x"}`), nil
		},
	}
	useCase, _ := newTestDispatcher(t, wahaClient, &MockMessageRepository{})

	err := useCase.Dispatch(&domainMessage.Message{
		To:          "15551234567",
		Message:     "caption here",
		ContentType: domainMessage.ContentTypeImage,
		Attach:      "/files/photo.jpg",
	})

	assert.NoError(t, err)
	assert.Equal(t, "http://app.example.com/files/photo.jpg", gjson.GetBytes(gotBody, "file.url").String())
	assert.Equal(t, "image/jpeg", gjson.GetBytes(gotBody, "file.mimetype").String())
	assert.Equal(t, "caption here", gjson.GetBytes(gotBody, "caption").String())
}

func TestDispatch_VoiceHasNoCaption(t *testing.T) {
	var gotBody []byte
	wahaClient := &MockWahaClient{
		postFunc: func(endpoint string, body []byte) ([]byte, error) {
			assert.Equal(t, EndpointSendVoice, endpoint)
			gotBody = body
			return []byte(`{}`), nil
		},
	}
	useCase, _ := newTestDispatcher(t, wahaClient, &MockMessageRepository{})

	err := useCase.Dispatch(&domainMessage.Message{
		To:          "15551234567",
		Message:     "ignored",
		ContentType: domainMessage.ContentTypeAudio,
		Attach:      "http://cdn.example.com/note.ogg",
	})

	assert.NoError(t, err)
	assert.False(t, gjson.GetBytes(gotBody, "caption").Exists())
	assert.Equal(t, "audio/ogg; codecs=opus", gjson.GetBytes(gotBody, "file.mimetype").String())
}

func TestDispatch_ReactionUsesPut(t *testing.T) {
	var gotBody []byte
	putCalled := false
	wahaClient := &MockWahaClient{
		putFunc: func(endpoint string, body []byte) ([]byte, error) {
			putCalled = true
			assert.Equal(t, EndpointReaction, endpoint)
			gotBody = body
			return []byte(`{}`), nil
		},
	}
	useCase, _ := newTestDispatcher(t, wahaClient, &MockMessageRepository{})

	err := useCase.Dispatch(&domainMessage.Message{
		To:               "15551234567",
		Message:          "👍",
		ContentType:      domainMessage.ContentTypeReaction,
		IsReply:          true,
		ReplyToMessageID: "true_123@c.us_AAA",
	})

	assert.NoError(t, err)
	assert.True(t, putCalled)
	assert.Equal(t, "true_123@c.us_AAA", gjson.GetBytes(gotBody, "messageId").String())
	assert.Equal(t, "👍", gjson.GetBytes(gotBody, "reaction").String())
	// a reaction is always a reply, so the target rides along twice
	assert.Equal(t, "true_123@c.us_AAA", gjson.GetBytes(gotBody, "reply_to").String())
}

func TestDispatch_ReplyToInjected(t *testing.T) {
	var gotBody []byte
	wahaClient := &MockWahaClient{
		postFunc: func(endpoint string, body []byte) ([]byte, error) {
			gotBody = body
			return []byte(`{}`), nil
		},
	}
	useCase, _ := newTestDispatcher(t, wahaClient, &MockMessageRepository{})

	err := useCase.Dispatch(&domainMessage.Message{
		To:               "15551234567",
		Message:          "replying",
		ContentType:      domainMessage.ContentTypeText,
		IsReply:          true,
		ReplyToMessageID: "true_123@c.us_BBB",
	})

	assert.NoError(t, err)
	assert.Equal(t, "true_123@c.us_BBB", gjson.GetBytes(gotBody, "reply_to").String())
}

func TestDispatch_Location(t *testing.T) {
	var gotBody []byte
	wahaClient := &MockWahaClient{
		postFunc: func(endpoint string, body []byte) ([]byte, error) {
			assert.Equal(t, EndpointSendLocation, endpoint)
			gotBody = body
			return []byte(`{}`), nil
		},
	}
	useCase, _ := newTestDispatcher(t, wahaClient, &MockMessageRepository{})

	location, _ := json.Marshal(domainMessage.Location{Latitude: -23.55, Longitude: -46.63, Title: "HQ"})
	err := useCase.Dispatch(&domainMessage.Message{
		To:          "15551234567",
		Message:     string(location),
		ContentType: domainMessage.ContentTypeLocation,
	})

	assert.NoError(t, err)
	assert.Equal(t, -23.55, gjson.GetBytes(gotBody, "latitude").Float())
	assert.Equal(t, "HQ", gjson.GetBytes(gotBody, "title").String())
}

func TestDispatch_ContactSingleObjectBecomesList(t *testing.T) {
	var gotBody []byte
	wahaClient := &MockWahaClient{
		postFunc: func(endpoint string, body []byte) ([]byte, error) {
			assert.Equal(t, EndpointSendContact, endpoint)
			gotBody = body
			return []byte(`{}`), nil
		},
	}
	useCase, _ := newTestDispatcher(t, wahaClient, &MockMessageRepository{})

	err := useCase.Dispatch(&domainMessage.Message{
		To:          "15551234567",
		Message:     `{"fullName":"Ana"}`,
		ContentType: domainMessage.ContentTypeContact,
	})

	assert.NoError(t, err)
	assert.True(t, gjson.GetBytes(gotBody, "contacts").IsArray())
	assert.Equal(t, int64(1), int64(len(gjson.GetBytes(gotBody, "contacts").Array())))
}

func TestDispatch_FailureMarksFailedAndAudits(t *testing.T) {
	var statusUpdate map[string]interface{}
	messageRepository := &MockMessageRepository{
		updateFunc: func(id int, messageMap map[string]interface{}) (*domainMessage.Message, error) {
			statusUpdate = messageMap
			return &domainMessage.Message{ID: id}, nil
		},
	}
	wahaClient := &MockWahaClient{
		postFunc: func(endpoint string, body []byte) ([]byte, error) {
			return nil, domainErrors.NewAppError(errors.New("session not started"), domainErrors.GatewayError)
		},
	}
	useCase, auditRepository := newTestDispatcher(t, wahaClient, messageRepository)

	msg := &domainMessage.Message{ID: 3, To: "15551234567", Message: "x", ContentType: domainMessage.ContentTypeText}
	err := useCase.Dispatch(msg)

	assert.Error(t, err)
	assert.Equal(t, domainMessage.StatusFailed, msg.Status)
	assert.Equal(t, domainMessage.StatusFailed, statusUpdate["status"])
	assert.Contains(t, auditRepository.entries, "Text Message")
}

func TestDispatch_UnsupportedContentType(t *testing.T) {
	useCase, _ := newTestDispatcher(t, &MockWahaClient{}, &MockMessageRepository{})

	err := useCase.Dispatch(&domainMessage.Message{To: "1", ContentType: "sticker"})

	assert.Error(t, err)
	var appErr *domainErrors.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, domainErrors.ValidationError, appErr.Type)
}

func TestDispatchQueued(t *testing.T) {
	dispatched := 0
	messageRepository := &MockMessageRepository{
		getQueuedFunc: func(limit int) (*[]domainMessage.Message, error) {
			return &[]domainMessage.Message{
				{ID: 1, To: "1", Message: "a", ContentType: domainMessage.ContentTypeText, Status: domainMessage.StatusQueued},
				{ID: 2, To: "2", Message: "b", ContentType: domainMessage.ContentTypeText, Status: domainMessage.StatusQueued},
			}, nil
		},
	}
	wahaClient := &MockWahaClient{
		postFunc: func(endpoint string, body []byte) ([]byte, error) {
			dispatched++
			return []byte(`{}`), nil
		},
	}
	useCase, _ := newTestDispatcher(t, wahaClient, messageRepository)

	useCase.DispatchQueued(50)

	assert.Equal(t, 2, dispatched)
}

func TestSendReadReceipt(t *testing.T) {
	var gotEndpoint string
	var gotBody []byte
	wahaClient := &MockWahaClient{
		postFunc: func(endpoint string, body []byte) ([]byte, error) {
			gotEndpoint = endpoint
			gotBody = body
			return []byte(`{}`), nil
		},
	}
	useCase, _ := newTestDispatcher(t, wahaClient, &MockMessageRepository{})

	msg := &domainMessage.Message{ID: 5, MessageID: "false_1@c.us_A", From: "15551234567"}
	err := useCase.SendReadReceipt(msg)

	assert.NoError(t, err)
	assert.Equal(t, EndpointSendSeen, gotEndpoint)
	assert.Equal(t, "15551234567@c.us", gjson.GetBytes(gotBody, "chatId").String())
	assert.Equal(t, domainMessage.StatusMarkedAsRead, msg.Status)
}

func TestSendReadReceipt_RequiresMessageID(t *testing.T) {
	useCase, _ := newTestDispatcher(t, &MockWahaClient{}, &MockMessageRepository{})

	err := useCase.SendReadReceipt(&domainMessage.Message{ID: 5})

	assert.Error(t, err)
}
