package campaign

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	domainCampaign "go-whatsapp-gateway-api/src/domain/campaign"
	domainErrors "go-whatsapp-gateway-api/src/domain/errors"
	domainMessage "go-whatsapp-gateway-api/src/domain/message"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"
	campaignRepo "go-whatsapp-gateway-api/src/infrastructure/repository/mysql/campaign"
	messageRepo "go-whatsapp-gateway-api/src/infrastructure/repository/mysql/message"

	"go.uber.org/zap"
)

// TaskQueue hands per-recipient work to the background workers. The
// messaging processor implements it.
type TaskQueue interface {
	EnqueueRecipient(campaignID int, recipient domainCampaign.Recipient)
}

// ICampaignUseCase drives bulk send jobs through their state machine
type ICampaignUseCase interface {
	CreateCampaign(campaign *domainCampaign.BulkCampaign, recipients []domainCampaign.Recipient) (*domainCampaign.BulkCampaign, error)
	GetCampaign(id int) (*domainCampaign.BulkCampaign, error)
	Submit(id int) (*domainCampaign.BulkCampaign, error)
	CreateSingleMessage(campaignID int, recipient domainCampaign.Recipient)
	RetryFailed(id int) (int, error)
	GetProgress(id int) (*domainCampaign.Progress, error)
	CreateRecipientList(list *domainCampaign.RecipientList, members []domainCampaign.Recipient) (*domainCampaign.RecipientList, error)
}

// CampaignUseCase fans a campaign out into per-recipient queued messages
// via the task queue and tracks completion with the atomic sent counter.
type CampaignUseCase struct {
	campaignRepository campaignRepo.CampaignRepositoryInterface
	messageRepository  messageRepo.MessageRepositoryInterface
	taskQueue          TaskQueue
	Logger             *logger.Logger
}

func NewCampaignUseCase(
	campaignRepository campaignRepo.CampaignRepositoryInterface,
	messageRepository messageRepo.MessageRepositoryInterface,
	taskQueue TaskQueue,
	loggerInstance *logger.Logger,
) ICampaignUseCase {
	return &CampaignUseCase{
		campaignRepository: campaignRepository,
		messageRepository:  messageRepository,
		taskQueue:          taskQueue,
		Logger:             loggerInstance,
	}
}

// CreateCampaign validates recipients, fixes the recipient count and
// stores the campaign as a draft along with its inline recipients.
func (u *CampaignUseCase) CreateCampaign(
	campaign *domainCampaign.BulkCampaign,
	recipients []domainCampaign.Recipient,
) (*domainCampaign.BulkCampaign, error) {
	if campaign.RecipientType == domainCampaign.RecipientTypeList && campaign.RecipientListID != nil {
		count, err := u.campaignRepository.CountListRecipients(*campaign.RecipientListID)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, domainErrors.NewAppError(
				errors.New("selected recipient list has no recipients"),
				domainErrors.ValidationError)
		}
		campaign.RecipientCount = count
	} else {
		if len(recipients) == 0 {
			return nil, domainErrors.NewAppError(
				errors.New("at least one recipient or a recipient list is required"),
				domainErrors.ValidationError)
		}
		campaign.RecipientCount = len(recipients)
	}

	if campaign.ContentType == "" {
		campaign.ContentType = domainMessage.ContentTypeText
	}
	campaign.Status = domainCampaign.StatusDraft
	campaign.SentCount = 0

	created, err := u.campaignRepository.Create(campaign)
	if err != nil {
		return nil, err
	}

	for i := range recipients {
		recipients[i].CampaignID = &created.ID
		if _, err := u.campaignRepository.AddRecipient(&recipients[i]); err != nil {
			return nil, err
		}
	}
	return created, nil
}

func (u *CampaignUseCase) GetCampaign(id int) (*domainCampaign.BulkCampaign, error) {
	return u.campaignRepository.GetByID(id)
}

// Submit moves a draft to Queued and enqueues one task per recipient
func (u *CampaignUseCase) Submit(id int) (*domainCampaign.BulkCampaign, error) {
	campaign, err := u.campaignRepository.GetByID(id)
	if err != nil {
		return nil, err
	}
	if campaign.Status != domainCampaign.StatusDraft {
		return nil, domainErrors.NewAppError(
			fmt.Errorf("campaign %d is %s and cannot be submitted", id, campaign.Status),
			domainErrors.ValidationError)
	}

	if err := u.campaignRepository.SetStatus(id, domainCampaign.StatusQueued); err != nil {
		return nil, err
	}
	campaign.Status = domainCampaign.StatusQueued

	recipients, err := u.campaignRepository.GetRecipients(campaign)
	if err != nil {
		return nil, err
	}
	for _, recipient := range *recipients {
		u.taskQueue.EnqueueRecipient(id, recipient)
	}

	u.Logger.Info("Campaign submitted",
		zap.Int("id", id), zap.Int("recipients", len(*recipients)))
	return campaign, nil
}

// CreateSingleMessage runs on a worker for one recipient. It renders the
// per-recipient template, stores a queued outgoing message, bumps the
// sent counter and closes the campaign when the counter reaches the
// recipient count.
func (u *CampaignUseCase) CreateSingleMessage(campaignID int, recipient domainCampaign.Recipient) {
	campaign, err := u.campaignRepository.GetByID(campaignID)
	if err != nil {
		u.Logger.Error("Error loading campaign for recipient task", zap.Error(err), zap.Int("campaignID", campaignID))
		return
	}

	if campaign.Status == domainCampaign.StatusQueued {
		if err := u.campaignRepository.SetStatus(campaignID, domainCampaign.StatusInProgress); err != nil {
			u.Logger.Error("Error marking campaign in progress", zap.Error(err), zap.Int("campaignID", campaignID))
		}
	}

	messageContent := renderRecipientTemplate(campaign.MessageContent, recipient, u.Logger)

	failed := false
	messageDomain := &domainMessage.Message{
		Type:           domainMessage.DirectionOutgoing,
		To:             recipient.MobileNumber,
		Message:        messageContent,
		ContentType:    campaign.ContentType,
		Attach:         campaign.Attach,
		Status:         domainMessage.StatusQueued,
		BulkCampaignID: &campaignID,
	}
	if _, err := u.messageRepository.Create(messageDomain); err != nil {
		u.Logger.Error("Error creating campaign message",
			zap.Error(err), zap.Int("campaignID", campaignID), zap.String("to", recipient.MobileNumber))
		if err := u.campaignRepository.SetStatus(campaignID, domainCampaign.StatusPartiallyFailed); err != nil {
			u.Logger.Error("Error marking campaign partially failed", zap.Error(err), zap.Int("campaignID", campaignID))
		}
		failed = true
	}

	updated, err := u.campaignRepository.IncrementSentCount(campaignID)
	if err != nil {
		u.Logger.Error("Error incrementing sent count", zap.Error(err), zap.Int("campaignID", campaignID))
		return
	}

	if updated.SentCount == updated.RecipientCount && !failed &&
		updated.Status != domainCampaign.StatusPartiallyFailed {
		if err := u.campaignRepository.SetStatus(campaignID, domainCampaign.StatusCompleted); err != nil {
			u.Logger.Error("Error marking campaign completed", zap.Error(err), zap.Int("campaignID", campaignID))
		}
	}
}

// renderRecipientTemplate substitutes {{variable}} placeholders with the
// recipient's data. Malformed recipient data degrades to the raw template
// and is logged, never raised.
func renderRecipientTemplate(template string, recipient domainCampaign.Recipient, loggerInstance *logger.Logger) string {
	if recipient.RecipientData == "" {
		return template
	}

	var variables map[string]interface{}
	if err := json.Unmarshal([]byte(recipient.RecipientData), &variables); err != nil {
		loggerInstance.Warn("Error parsing recipient data",
			zap.Error(err), zap.String("mobileNumber", recipient.MobileNumber))
		return template
	}

	for name, value := range variables {
		template = strings.ReplaceAll(template, "{{"+name+"}}", fmt.Sprint(value))
	}
	return template
}

// RetryFailed requeues every failed message of a campaign and returns the
// number requeued. The dispatch sweep will pick them up.
func (u *CampaignUseCase) RetryFailed(id int) (int, error) {
	if _, err := u.campaignRepository.GetByID(id); err != nil {
		return 0, err
	}

	failedMessages, err := u.messageRepository.GetByCampaignAndStatus(id, domainMessage.StatusFailed)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, msg := range *failedMessages {
		if _, err := u.messageRepository.Update(msg.ID, map[string]interface{}{
			"status": domainMessage.StatusQueued,
		}); err != nil {
			u.Logger.Error("Error requeueing message", zap.Error(err), zap.Int("messageID", msg.ID))
			continue
		}
		count++
	}
	return count, nil
}

// GetProgress reports the campaign's live send accounting
func (u *CampaignUseCase) GetProgress(id int) (*domainCampaign.Progress, error) {
	campaign, err := u.campaignRepository.GetByID(id)
	if err != nil {
		return nil, err
	}

	sent, err := u.messageRepository.CountByCampaignAndStatuses(id, domainMessage.GatewaySentStatuses)
	if err != nil {
		return nil, err
	}
	failed, err := u.messageRepository.CountByCampaignAndStatuses(id, []string{domainMessage.StatusFailed})
	if err != nil {
		return nil, err
	}
	queued, err := u.messageRepository.CountByCampaignAndStatuses(id, []string{domainMessage.StatusQueued})
	if err != nil {
		return nil, err
	}

	progress := &domainCampaign.Progress{
		Total:  campaign.RecipientCount,
		Sent:   sent,
		Failed: failed,
		Queued: queued,
	}
	if progress.Total > 0 {
		progress.Percent = float64(progress.Sent) / float64(progress.Total) * 100
	}
	return progress, nil
}

// CreateRecipientList stores a named list together with its members
func (u *CampaignUseCase) CreateRecipientList(
	list *domainCampaign.RecipientList,
	members []domainCampaign.Recipient,
) (*domainCampaign.RecipientList, error) {
	if list.Name == "" {
		return nil, domainErrors.NewAppError(errors.New("list name is required"), domainErrors.ValidationError)
	}
	if len(members) == 0 {
		return nil, domainErrors.NewAppError(errors.New("a recipient list needs at least one member"), domainErrors.ValidationError)
	}

	created, err := u.campaignRepository.CreateRecipientList(list)
	if err != nil {
		return nil, err
	}
	for i := range members {
		members[i].RecipientListID = &created.ID
		if _, err := u.campaignRepository.AddRecipient(&members[i]); err != nil {
			return nil, err
		}
	}
	return created, nil
}
