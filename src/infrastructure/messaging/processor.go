package messaging

import (
	"sync"
	"time"

	domainCampaign "go-whatsapp-gateway-api/src/domain/campaign"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"go.uber.org/zap"
)

// RecipientTask is one unit of campaign fan-out work
type RecipientTask struct {
	CampaignID int
	Recipient  domainCampaign.Recipient
}

// RecipientHandler consumes one campaign recipient task
type RecipientHandler interface {
	CreateSingleMessage(campaignID int, recipient domainCampaign.Recipient)
}

// QueuedDispatcher drains queued outgoing messages
type QueuedDispatcher interface {
	DispatchQueued(limit int)
}

// ScheduledSweeper runs the scheduled notification rules
type ScheduledSweeper interface {
	TriggerScheduledRules() error
}

const (
	queueBufferSize    = 100
	dispatchSweepEvery = 1 * time.Minute
	dispatchSweepLimit = 50
	scheduleSweepEvery = 24 * time.Hour
)

// MessageProcessor runs the background worker pool. Workers drain the
// campaign recipient queue; sweep goroutines dispatch queued outgoing
// messages and fire scheduled notification rules. Handlers are registered
// after construction and before Start, which keeps the wiring acyclic.
type MessageProcessor struct {
	Logger      *logger.Logger
	workerCount int
	taskQueue   chan RecipientTask
	wg          sync.WaitGroup
	shutdown    chan struct{}

	recipientHandler RecipientHandler
	queuedDispatcher QueuedDispatcher
	scheduledSweeper ScheduledSweeper
}

// NewMessageProcessor creates the processor without starting it
func NewMessageProcessor(loggerInstance *logger.Logger, workerCount int) *MessageProcessor {
	if workerCount <= 0 {
		workerCount = 5
	}
	return &MessageProcessor{
		Logger:      loggerInstance,
		workerCount: workerCount,
		taskQueue:   make(chan RecipientTask, queueBufferSize),
		shutdown:    make(chan struct{}),
	}
}

// Register wires the handlers the workers and sweeps call into
func (p *MessageProcessor) Register(
	recipientHandler RecipientHandler,
	queuedDispatcher QueuedDispatcher,
	scheduledSweeper ScheduledSweeper,
) {
	p.recipientHandler = recipientHandler
	p.queuedDispatcher = queuedDispatcher
	p.scheduledSweeper = scheduledSweeper
}

// Start launches the worker pool and the sweep loops
func (p *MessageProcessor) Start() {
	p.Logger.Info("Starting message processor workers", zap.Int("workerCount", p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.watchQueuedMessages()
	go p.watchScheduledRules()
}

// EnqueueRecipient queues one recipient task, blocking when the buffer is
// full so submits apply backpressure instead of dropping work.
func (p *MessageProcessor) EnqueueRecipient(campaignID int, recipient domainCampaign.Recipient) {
	select {
	case p.taskQueue <- RecipientTask{CampaignID: campaignID, Recipient: recipient}:
	case <-p.shutdown:
		p.Logger.Warn("Recipient task dropped during shutdown", zap.Int("campaignID", campaignID))
	}
}

func (p *MessageProcessor) worker(id int) {
	defer p.wg.Done()

	p.Logger.Info("Starting message processor worker", zap.Int("workerID", id))

	for {
		select {
		case task := <-p.taskQueue:
			p.recipientHandler.CreateSingleMessage(task.CampaignID, task.Recipient)
		case <-p.shutdown:
			p.Logger.Info("Shutting down message processor worker", zap.Int("workerID", id))
			return
		}
	}
}

// watchQueuedMessages periodically drains queued outgoing messages so
// campaign children and requeued retries get dispatched.
func (p *MessageProcessor) watchQueuedMessages() {
	ticker := time.NewTicker(dispatchSweepEvery)
	defer ticker.Stop()

	p.queuedDispatcher.DispatchQueued(dispatchSweepLimit)

	for {
		select {
		case <-ticker.C:
			p.queuedDispatcher.DispatchQueued(dispatchSweepLimit)
		case <-p.shutdown:
			return
		}
	}
}

// watchScheduledRules fires the Days Before / Days After rules once per day
func (p *MessageProcessor) watchScheduledRules() {
	ticker := time.NewTicker(scheduleSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.scheduledSweeper.TriggerScheduledRules(); err != nil {
				p.Logger.Error("Scheduled rule sweep failed", zap.Error(err))
			}
		case <-p.shutdown:
			return
		}
	}
}

// Shutdown stops the workers and waits for in-flight tasks to finish
func (p *MessageProcessor) Shutdown() {
	p.Logger.Info("Shutting down message processor")
	close(p.shutdown)
	p.wg.Wait()
	p.Logger.Info("Message processor shutdown complete")
}
