package messaging

import (
	"sync"
	"testing"
	"time"

	domainCampaign "go-whatsapp-gateway-api/src/domain/campaign"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	mutex sync.Mutex
	tasks []RecipientTask
	done  chan struct{}
	want  int
}

func (h *recordingHandler) CreateSingleMessage(campaignID int, recipient domainCampaign.Recipient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.tasks = append(h.tasks, RecipientTask{CampaignID: campaignID, Recipient: recipient})
	if len(h.tasks) == h.want {
		close(h.done)
	}
}

type countingDispatcher struct {
	mutex sync.Mutex
	calls int
	first chan struct{}
	once  sync.Once
}

func (d *countingDispatcher) DispatchQueued(limit int) {
	d.mutex.Lock()
	d.calls++
	d.mutex.Unlock()
	d.once.Do(func() { close(d.first) })
}

type noopSweeper struct{}

func (noopSweeper) TriggerScheduledRules() error { return nil }

func newTestProcessor(t *testing.T, workerCount int) *MessageProcessor {
	loggerInstance, err := logger.NewLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return NewMessageProcessor(loggerInstance, workerCount)
}

func TestProcessorRunsEnqueuedTasks(t *testing.T) {
	processor := newTestProcessor(t, 3)
	handler := &recordingHandler{done: make(chan struct{}), want: 5}
	dispatcher := &countingDispatcher{first: make(chan struct{})}
	processor.Register(handler, dispatcher, noopSweeper{})
	processor.Start()
	defer processor.Shutdown()

	for i := 0; i < 5; i++ {
		processor.EnqueueRecipient(1, domainCampaign.Recipient{MobileNumber: "1555123456" + string(rune('0'+i))})
	}

	select {
	case <-handler.done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not drain the queue in time")
	}

	handler.mutex.Lock()
	defer handler.mutex.Unlock()
	assert.Len(t, handler.tasks, 5)
	for _, task := range handler.tasks {
		assert.Equal(t, 1, task.CampaignID)
	}
}

func TestProcessorSweepsQueuedMessagesOnStart(t *testing.T) {
	processor := newTestProcessor(t, 1)
	dispatcher := &countingDispatcher{first: make(chan struct{})}
	processor.Register(&recordingHandler{done: make(chan struct{}), want: -1}, dispatcher, noopSweeper{})
	processor.Start()
	defer processor.Shutdown()

	select {
	case <-dispatcher.first:
	case <-time.After(2 * time.Second):
		t.Fatal("initial dispatch sweep did not run")
	}
}

func TestProcessorDefaultsWorkerCount(t *testing.T) {
	processor := newTestProcessor(t, 0)
	assert.Equal(t, 5, processor.workerCount)
}

func TestShutdownStopsWorkers(t *testing.T) {
	processor := newTestProcessor(t, 2)
	processor.Register(&recordingHandler{done: make(chan struct{}), want: -1}, &countingDispatcher{first: make(chan struct{})}, noopSweeper{})
	processor.Start()

	finished := make(chan struct{})
	go func() {
		processor.Shutdown()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete")
	}
}
