package campaign

import (
	"testing"

	domainCampaign "go-whatsapp-gateway-api/src/domain/campaign"
	domainErrors "go-whatsapp-gateway-api/src/domain/errors"
	domainMessage "go-whatsapp-gateway-api/src/domain/message"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"github.com/stretchr/testify/assert"
)

// FakeCampaignRepository is an in-memory campaign.CampaignRepositoryInterface
type FakeCampaignRepository struct {
	campaigns  map[int]*domainCampaign.BulkCampaign
	recipients []domainCampaign.Recipient
	lists      map[int]*domainCampaign.RecipientList
	nextID     int
}

func NewFakeCampaignRepository() *FakeCampaignRepository {
	return &FakeCampaignRepository{
		campaigns: map[int]*domainCampaign.BulkCampaign{},
		lists:     map[int]*domainCampaign.RecipientList{},
		nextID:    1,
	}
}

func (f *FakeCampaignRepository) Create(c *domainCampaign.BulkCampaign) (*domainCampaign.BulkCampaign, error) {
	stored := *c
	stored.ID = f.nextID
	f.nextID++
	f.campaigns[stored.ID] = &stored
	result := stored
	return &result, nil
}

func (f *FakeCampaignRepository) GetByID(id int) (*domainCampaign.BulkCampaign, error) {
	c, ok := f.campaigns[id]
	if !ok {
		return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
	}
	result := *c
	return &result, nil
}

func (f *FakeCampaignRepository) Update(id int, campaignMap map[string]interface{}) (*domainCampaign.BulkCampaign, error) {
	return f.GetByID(id)
}

func (f *FakeCampaignRepository) SetStatus(id int, status string) error {
	c, ok := f.campaigns[id]
	if !ok {
		return domainErrors.NewAppErrorWithType(domainErrors.NotFound)
	}
	c.Status = status
	return nil
}

func (f *FakeCampaignRepository) IncrementSentCount(id int) (*domainCampaign.BulkCampaign, error) {
	c, ok := f.campaigns[id]
	if !ok {
		return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
	}
	c.SentCount++
	result := *c
	return &result, nil
}

func (f *FakeCampaignRepository) GetRecipients(c *domainCampaign.BulkCampaign) (*[]domainCampaign.Recipient, error) {
	var out []domainCampaign.Recipient
	for _, r := range f.recipients {
		if c.RecipientType == domainCampaign.RecipientTypeList && c.RecipientListID != nil {
			if r.RecipientListID != nil && *r.RecipientListID == *c.RecipientListID {
				out = append(out, r)
			}
		} else if r.CampaignID != nil && *r.CampaignID == c.ID {
			out = append(out, r)
		}
	}
	return &out, nil
}

func (f *FakeCampaignRepository) CountListRecipients(listID int) (int, error) {
	count := 0
	for _, r := range f.recipients {
		if r.RecipientListID != nil && *r.RecipientListID == listID {
			count++
		}
	}
	return count, nil
}

func (f *FakeCampaignRepository) AddRecipient(r *domainCampaign.Recipient) (*domainCampaign.Recipient, error) {
	stored := *r
	stored.ID = f.nextID
	f.nextID++
	f.recipients = append(f.recipients, stored)
	return &stored, nil
}

func (f *FakeCampaignRepository) CreateRecipientList(l *domainCampaign.RecipientList) (*domainCampaign.RecipientList, error) {
	stored := *l
	stored.ID = f.nextID
	f.nextID++
	f.lists[stored.ID] = &stored
	result := stored
	return &result, nil
}

func (f *FakeCampaignRepository) GetRecipientListByID(id int) (*domainCampaign.RecipientList, error) {
	l, ok := f.lists[id]
	if !ok {
		return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
	}
	result := *l
	return &result, nil
}

// MockMessageRepository implements message.MessageRepositoryInterface
type MockMessageRepository struct {
	createFunc          func(*domainMessage.Message) (*domainMessage.Message, error)
	updateFunc          func(int, map[string]interface{}) (*domainMessage.Message, error)
	getByCampaignFunc   func(int, string) (*[]domainMessage.Message, error)
	countByCampaignFunc func(int, []string) (int, error)
	created             []*domainMessage.Message
}

func (m *MockMessageRepository) Create(msg *domainMessage.Message) (*domainMessage.Message, error) {
	if m.createFunc != nil {
		return m.createFunc(msg)
	}
	m.created = append(m.created, msg)
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
	return &[]domainMessage.Message{}, nil
}

func (m *MockMessageRepository) GetByCampaignAndStatus(campaignID int, status string) (*[]domainMessage.Message, error) {
	if m.getByCampaignFunc != nil {
		return m.getByCampaignFunc(campaignID, status)
	}
	return &[]domainMessage.Message{}, nil
}

func (m *MockMessageRepository) CountByCampaignAndStatuses(campaignID int, statuses []string) (int, error) {
	if m.countByCampaignFunc != nil {
		return m.countByCampaignFunc(campaignID, statuses)
	}
	return 0, nil
}

// RecordingTaskQueue collects enqueued recipient tasks
type RecordingTaskQueue struct {
	tasks []domainCampaign.Recipient
}

func (q *RecordingTaskQueue) EnqueueRecipient(campaignID int, recipient domainCampaign.Recipient) {
	q.tasks = append(q.tasks, recipient)
}

func setupLogger(t *testing.T) *logger.Logger {
	loggerInstance, err := logger.NewLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return loggerInstance
}

func intPtr(v int) *int { return &v }

func TestCreateCampaign_RequiresRecipients(t *testing.T) {
	useCase := NewCampaignUseCase(NewFakeCampaignRepository(), &MockMessageRepository{}, &RecordingTaskQueue{}, setupLogger(t))

	_, err := useCase.CreateCampaign(&domainCampaign.BulkCampaign{
		Name:           "empty",
		RecipientType:  domainCampaign.RecipientTypeInline,
		MessageContent: "hello",
	}, nil)

	assert.Error(t, err)
}

func TestCreateCampaign_CountsInlineRecipients(t *testing.T) {
	repo := NewFakeCampaignRepository()
	useCase := NewCampaignUseCase(repo, &MockMessageRepository{}, &RecordingTaskQueue{}, setupLogger(t))

	created, err := useCase.CreateCampaign(&domainCampaign.BulkCampaign{
		Name:           "launch",
		RecipientType:  domainCampaign.RecipientTypeInline,
		MessageContent: "Hi {{name}}",
	}, []domainCampaign.Recipient{
		{MobileNumber: "1"}, {MobileNumber: "2"}, {MobileNumber: "3"},
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, created.RecipientCount)
	assert.Equal(t, domainCampaign.StatusDraft, created.Status)
	assert.Len(t, repo.recipients, 3)
}

func TestCreateCampaign_EmptyListRejected(t *testing.T) {
	repo := NewFakeCampaignRepository()
	useCase := NewCampaignUseCase(repo, &MockMessageRepository{}, &RecordingTaskQueue{}, setupLogger(t))

	_, err := useCase.CreateCampaign(&domainCampaign.BulkCampaign{
		Name:            "list run",
		RecipientType:   domainCampaign.RecipientTypeList,
		RecipientListID: intPtr(99),
		MessageContent:  "hello",
	}, nil)

	assert.Error(t, err)
}

func TestSubmit_QueuesEveryRecipient(t *testing.T) {
	repo := NewFakeCampaignRepository()
	queue := &RecordingTaskQueue{}
	useCase := NewCampaignUseCase(repo, &MockMessageRepository{}, queue, setupLogger(t))

	created, err := useCase.CreateCampaign(&domainCampaign.BulkCampaign{
		Name:           "launch",
		RecipientType:  domainCampaign.RecipientTypeInline,
		MessageContent: "hello",
	}, []domainCampaign.Recipient{{MobileNumber: "1"}, {MobileNumber: "2"}})
	assert.NoError(t, err)

	submitted, err := useCase.Submit(created.ID)

	assert.NoError(t, err)
	assert.Equal(t, domainCampaign.StatusQueued, submitted.Status)
	assert.Len(t, queue.tasks, 2)
}

func TestSubmit_NonDraftRejected(t *testing.T) {
	repo := NewFakeCampaignRepository()
	useCase := NewCampaignUseCase(repo, &MockMessageRepository{}, &RecordingTaskQueue{}, setupLogger(t))

	stored, _ := repo.Create(&domainCampaign.BulkCampaign{Name: "done", Status: domainCampaign.StatusCompleted})
	_, err := useCase.Submit(stored.ID)

	assert.Error(t, err)
}

func TestCreateSingleMessage_RendersTemplate(t *testing.T) {
	repo := NewFakeCampaignRepository()
	messageRepository := &MockMessageRepository{}
	useCase := NewCampaignUseCase(repo, messageRepository, &RecordingTaskQueue{}, setupLogger(t)).(*CampaignUseCase)

	created, _ := repo.Create(&domainCampaign.BulkCampaign{
		Name:           "greeting",
		MessageContent: "Hi {{name}}",
		ContentType:    domainMessage.ContentTypeText,
		Status:         domainCampaign.StatusQueued,
		RecipientCount: 1,
	})

	useCase.CreateSingleMessage(created.ID, domainCampaign.Recipient{
		MobileNumber:  "15551234567",
		RecipientData: `{"name":"Ana"}`,
	})

	assert.Len(t, messageRepository.created, 1)
	msg := messageRepository.created[0]
	assert.Equal(t, "Hi Ana", msg.Message)
	assert.Equal(t, domainMessage.StatusQueued, msg.Status)
	assert.Equal(t, created.ID, *msg.BulkCampaignID)

	final, _ := repo.GetByID(created.ID)
	assert.Equal(t, domainCampaign.StatusCompleted, final.Status)
	assert.Equal(t, 1, final.SentCount)
}

func TestCreateSingleMessage_MalformedRecipientDataDegrades(t *testing.T) {
	repo := NewFakeCampaignRepository()
	messageRepository := &MockMessageRepository{}
	useCase := NewCampaignUseCase(repo, messageRepository, &RecordingTaskQueue{}, setupLogger(t)).(*CampaignUseCase)

	created, _ := repo.Create(&domainCampaign.BulkCampaign{
		MessageContent: "Hi {{name}}",
		Status:         domainCampaign.StatusQueued,
		RecipientCount: 1,
	})

	useCase.CreateSingleMessage(created.ID, domainCampaign.Recipient{
		MobileNumber:  "1",
		RecipientData: `{not json`,
	})

	// raw template goes out, the task never raises
	assert.Len(t, messageRepository.created, 1)
	assert.Equal(t, "Hi {{name}}", messageRepository.created[0].Message)
}

func TestCreateSingleMessage_PartialFailure(t *testing.T) {
	repo := NewFakeCampaignRepository()
	calls := 0
	messageRepository := &MockMessageRepository{
		createFunc: func(msg *domainMessage.Message) (*domainMessage.Message, error) {
			calls++
			if calls == 2 {
				return nil, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
			}
			return msg, nil
		},
	}
	useCase := NewCampaignUseCase(repo, messageRepository, &RecordingTaskQueue{}, setupLogger(t)).(*CampaignUseCase)

	created, _ := repo.Create(&domainCampaign.BulkCampaign{
		MessageContent: "hello",
		Status:         domainCampaign.StatusQueued,
		RecipientCount: 3,
	})

	for _, number := range []string{"1", "2", "3"} {
		useCase.CreateSingleMessage(created.ID, domainCampaign.Recipient{MobileNumber: number})
	}

	final, _ := repo.GetByID(created.ID)
	assert.Equal(t, 3, final.SentCount)
	assert.Equal(t, domainCampaign.StatusPartiallyFailed, final.Status)
}

func TestRetryFailed(t *testing.T) {
	repo := NewFakeCampaignRepository()
	requeued := []int{}
	messageRepository := &MockMessageRepository{
		getByCampaignFunc: func(campaignID int, status string) (*[]domainMessage.Message, error) {
			assert.Equal(t, domainMessage.StatusFailed, status)
			return &[]domainMessage.Message{{ID: 10}, {ID: 11}}, nil
		},
		updateFunc: func(id int, messageMap map[string]interface{}) (*domainMessage.Message, error) {
			assert.Equal(t, domainMessage.StatusQueued, messageMap["status"])
			requeued = append(requeued, id)
			return &domainMessage.Message{ID: id}, nil
		},
	}
	useCase := NewCampaignUseCase(repo, messageRepository, &RecordingTaskQueue{}, setupLogger(t))

	created, _ := repo.Create(&domainCampaign.BulkCampaign{Status: domainCampaign.StatusPartiallyFailed})
	count, err := useCase.RetryFailed(created.ID)

	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []int{10, 11}, requeued)
}

func TestGetProgress(t *testing.T) {
	repo := NewFakeCampaignRepository()
	messageRepository := &MockMessageRepository{
		countByCampaignFunc: func(campaignID int, statuses []string) (int, error) {
			switch len(statuses) {
			case 1:
				if statuses[0] == domainMessage.StatusFailed {
					return 2, nil
				}
				return 1, nil // queued
			default:
				return 7, nil // sent family
			}
		},
	}
	useCase := NewCampaignUseCase(repo, messageRepository, &RecordingTaskQueue{}, setupLogger(t))

	created, _ := repo.Create(&domainCampaign.BulkCampaign{RecipientCount: 10})
	progress, err := useCase.GetProgress(created.ID)

	assert.NoError(t, err)
	assert.Equal(t, 10, progress.Total)
	assert.Equal(t, 7, progress.Sent)
	assert.Equal(t, 2, progress.Failed)
	assert.Equal(t, 1, progress.Queued)
	assert.InDelta(t, 70.0, progress.Percent, 0.001)
}

func TestGetProgress_ZeroTotal(t *testing.T) {
	repo := NewFakeCampaignRepository()
	useCase := NewCampaignUseCase(repo, &MockMessageRepository{}, &RecordingTaskQueue{}, setupLogger(t))

	created, _ := repo.Create(&domainCampaign.BulkCampaign{RecipientCount: 0})
	progress, err := useCase.GetProgress(created.ID)

	assert.NoError(t, err)
	assert.Equal(t, 0.0, progress.Percent)
}

func TestCreateRecipientList(t *testing.T) {
	repo := NewFakeCampaignRepository()
	useCase := NewCampaignUseCase(repo, &MockMessageRepository{}, &RecordingTaskQueue{}, setupLogger(t))

	created, err := useCase.CreateRecipientList(
		&domainCampaign.RecipientList{Name: "customers"},
		[]domainCampaign.Recipient{{MobileNumber: "1"}, {MobileNumber: "2"}})

	assert.NoError(t, err)
	count, _ := repo.CountListRecipients(created.ID)
	assert.Equal(t, 2, count)
}
