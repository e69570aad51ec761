package message

import (
	"errors"

	domainErrors "go-whatsapp-gateway-api/src/domain/errors"
	domainMessage "go-whatsapp-gateway-api/src/domain/message"
	"go-whatsapp-gateway-api/src/application/usecases/dispatch"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"
	messageRepo "go-whatsapp-gateway-api/src/infrastructure/repository/mysql/message"
)

// IMessageUseCase exposes direct message operations to the API surface
type IMessageUseCase interface {
	SendMessage(msg *domainMessage.Message) (*domainMessage.Message, error)
	GetMessage(id int) (*domainMessage.Message, error)
	GetMessageStatus(messageID string) (string, error)
	MarkAsRead(id int) error
}

// MessageUseCase persists an outgoing message and hands it straight to
// the dispatcher, so an API caller gets the send outcome synchronously.
type MessageUseCase struct {
	messageRepository messageRepo.MessageRepositoryInterface
	dispatcher        dispatch.IDispatchUseCase
	Logger            *logger.Logger
}

func NewMessageUseCase(
	messageRepository messageRepo.MessageRepositoryInterface,
	dispatcher dispatch.IDispatchUseCase,
	loggerInstance *logger.Logger,
) IMessageUseCase {
	return &MessageUseCase{
		messageRepository: messageRepository,
		dispatcher:        dispatcher,
		Logger:            loggerInstance,
	}
}

// SendMessage stores the message as Queued and dispatches it. The stored
// row survives a failed send with status Failed, so the attempt is never
// lost.
func (u *MessageUseCase) SendMessage(msg *domainMessage.Message) (*domainMessage.Message, error) {
	if msg.To == "" {
		return nil, domainErrors.NewAppError(errors.New("recipient number is required"), domainErrors.ValidationError)
	}
	if msg.ContentType == "" {
		msg.ContentType = domainMessage.ContentTypeText
	}
	msg.Type = domainMessage.DirectionOutgoing
	msg.Status = domainMessage.StatusQueued

	created, err := u.messageRepository.Create(msg)
	if err != nil {
		return nil, err
	}

	if err := u.dispatcher.Dispatch(created); err != nil {
		return created, err
	}
	return created, nil
}

func (u *MessageUseCase) GetMessage(id int) (*domainMessage.Message, error) {
	return u.messageRepository.GetByID(id)
}

// GetMessageStatus resolves the stored status for a gateway message id
func (u *MessageUseCase) GetMessageStatus(messageID string) (string, error) {
	msg, err := u.messageRepository.GetByMessageID(messageID)
	if err != nil {
		return "", err
	}
	return msg.Status, nil
}

// MarkAsRead sends a read receipt for a stored incoming message
func (u *MessageUseCase) MarkAsRead(id int) error {
	msg, err := u.messageRepository.GetByID(id)
	if err != nil {
		return err
	}
	return u.dispatcher.SendReadReceipt(msg)
}
