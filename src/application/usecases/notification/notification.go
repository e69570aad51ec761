package notification

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	domainErrors "go-whatsapp-gateway-api/src/domain/errors"
	domainMessage "go-whatsapp-gateway-api/src/domain/message"
	domainNotification "go-whatsapp-gateway-api/src/domain/notification"
	"go-whatsapp-gateway-api/src/application/usecases/dispatch"
	"go-whatsapp-gateway-api/src/infrastructure/config"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"
	"go-whatsapp-gateway-api/src/infrastructure/repository/mysql/auditlog"
	messageRepo "go-whatsapp-gateway-api/src/infrastructure/repository/mysql/message"
	ruleRepo "go-whatsapp-gateway-api/src/infrastructure/repository/mysql/notification"
	recordRepo "go-whatsapp-gateway-api/src/infrastructure/repository/mysql/record"
	"go-whatsapp-gateway-api/src/infrastructure/storage"
	"go-whatsapp-gateway-api/src/infrastructure/waha"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// INotificationUseCase manages notification rules and fires them
type INotificationUseCase interface {
	CreateRule(rule *domainNotification.Rule) (*domainNotification.Rule, error)
	GetRule(id int) (*domainNotification.Rule, error)
	UpdateRule(id int, ruleMap map[string]interface{}) (*domainNotification.Rule, error)
	DeleteRule(id int) error
	SendSimpleMessage(rule *domainNotification.Rule, phoneNumber string, message string) error
	SendNotificationMessage(rule *domainNotification.Rule, record *domainNotification.Record, phoneOverride string, ignoreCondition bool) error
	TriggerForRecord(ruleID int, recordType string, recordName string) error
	TriggerScheduledRules() error
}

// NotificationUseCase evaluates rule conditions against records, renders
// the message template and dispatches through the gateway, recording an
// audit entry per attempt.
type NotificationUseCase struct {
	ruleRepository    ruleRepo.RuleRepositoryInterface
	recordRepository  recordRepo.RecordRepositoryInterface
	messageRepository messageRepo.MessageRepositoryInterface
	auditLogRepository auditlog.AuditLogRepositoryInterface
	wahaClient        waha.ClientInterface
	settings          config.Settings
	Logger            *logger.Logger

	// scheduled rule cache, invalidated on any rule mutation
	cacheMutex     sync.Mutex
	scheduledCache *[]domainNotification.Rule
}

func NewNotificationUseCase(
	ruleRepository ruleRepo.RuleRepositoryInterface,
	recordRepository recordRepo.RecordRepositoryInterface,
	messageRepository messageRepo.MessageRepositoryInterface,
	auditLogRepository auditlog.AuditLogRepositoryInterface,
	wahaClient waha.ClientInterface,
	settings config.Settings,
	loggerInstance *logger.Logger,
) INotificationUseCase {
	return &NotificationUseCase{
		ruleRepository:     ruleRepository,
		recordRepository:   recordRepository,
		messageRepository:  messageRepository,
		auditLogRepository: auditLogRepository,
		wahaClient:         wahaClient,
		settings:           settings,
		Logger:             loggerInstance,
	}
}

func (u *NotificationUseCase) CreateRule(rule *domainNotification.Rule) (*domainNotification.Rule, error) {
	if err := u.validateRule(rule); err != nil {
		return nil, err
	}
	created, err := u.ruleRepository.Create(rule)
	if err != nil {
		return nil, err
	}
	u.invalidateScheduledCache()
	return created, nil
}

func (u *NotificationUseCase) GetRule(id int) (*domainNotification.Rule, error) {
	return u.ruleRepository.GetByID(id)
}

func (u *NotificationUseCase) UpdateRule(id int, ruleMap map[string]interface{}) (*domainNotification.Rule, error) {
	updated, err := u.ruleRepository.Update(id, ruleMap)
	if err != nil {
		return nil, err
	}
	u.invalidateScheduledCache()
	return updated, nil
}

func (u *NotificationUseCase) DeleteRule(id int) error {
	if err := u.ruleRepository.Delete(id); err != nil {
		return err
	}
	u.invalidateScheduledCache()
	return nil
}

// validateRule checks a rule's field references against the record type
// schema before it is saved.
func (u *NotificationUseCase) validateRule(rule *domainNotification.Rule) error {
	if rule.PhoneField != "" && rule.ReferenceType != "" {
		exists, err := u.recordRepository.HasField(rule.ReferenceType, rule.PhoneField)
		if err != nil {
			return err
		}
		if !exists {
			return domainErrors.NewAppError(
				errors.New("field "+rule.PhoneField+" does not exist on "+rule.ReferenceType),
				domainErrors.ValidationError)
		}
	}

	if rule.AttachmentMode == domainNotification.AttachmentCustom &&
		rule.Attach == "" && rule.AttachFromField == "" {
		return domainErrors.NewAppError(
			errors.New("either attach a file or set an attach-from field to send a custom attachment"),
			domainErrors.ValidationError)
	}

	if rule.SetField != "" && rule.ReferenceType != "" {
		exists, err := u.recordRepository.HasField(rule.ReferenceType, rule.SetField)
		if err != nil {
			return err
		}
		if !exists {
			return domainErrors.NewAppError(
				errors.New("field "+rule.SetField+" not found on "+rule.ReferenceType),
				domainErrors.ValidationError)
		}
	}

	if rule.TriggerMode == domainNotification.TriggerDaysBefore ||
		rule.TriggerMode == domainNotification.TriggerDaysAfter {
		if rule.DateField == "" || rule.ReferenceType == "" {
			return domainErrors.NewAppError(
				errors.New("scheduled rules require a reference type and a date field"),
				domainErrors.ValidationError)
		}
	}
	return nil
}

// SendSimpleMessage sends a plain text message to one number without a
// backing record.
func (u *NotificationUseCase) SendSimpleMessage(rule *domainNotification.Rule, phoneNumber string, message string) error {
	text := message
	if text == "" {
		text = rule.Message
	}
	if text == "" {
		return domainErrors.NewAppError(errors.New("message content is required"), domainErrors.ValidationError)
	}

	data := map[string]interface{}{
		"session": u.settings.SessionName,
		"chatId":  waha.FormatNumber(phoneNumber),
		"text":    text,
	}
	return u.notifyGateway(rule, data, dispatch.EndpointSendText, nil)
}

// SendNotificationMessage fires one rule against one record. A disabled
// rule, a false condition or a missing phone number all short-circuit
// without error.
func (u *NotificationUseCase) SendNotificationMessage(
	rule *domainNotification.Rule,
	record *domainNotification.Record,
	phoneOverride string,
	ignoreCondition bool,
) error {
	if rule.Disabled {
		return nil
	}

	if rule.Condition != "" && !ignoreCondition {
		matched, err := EvaluateCondition(rule.Condition, record.Fields)
		if err != nil {
			u.Logger.Error("Rule condition failed to evaluate",
				zap.Error(err), zap.Int("ruleID", rule.ID), zap.String("condition", rule.Condition))
			return domainErrors.NewAppError(err, domainErrors.ValidationError)
		}
		if !matched {
			return nil
		}
	}

	phoneNumber := phoneOverride
	if phoneNumber == "" && rule.PhoneField != "" {
		if v, ok := record.Fields[rule.PhoneField]; ok && v != nil {
			phoneNumber = stringValue(v)
		}
	}
	if phoneNumber == "" {
		return nil
	}

	messageText := renderTemplate(rule, record)

	data := map[string]interface{}{
		"session": u.settings.SessionName,
		"chatId":  waha.FormatNumber(phoneNumber),
	}

	switch rule.AttachmentMode {
	case domainNotification.AttachmentDocumentPrint:
		fileURL := u.documentPrintURL(record)
		data["file"] = map[string]interface{}{
			"url":      fileURL,
			"filename": record.Name + ".pdf",
		}
		if messageText != "" {
			data["caption"] = messageText
		}
		return u.notifyGateway(rule, data, dispatch.EndpointSendFile, record)

	case domainNotification.AttachmentCustom:
		fileURL := u.customAttachmentURL(rule, record)
		mimeType := storage.MimetypeFromURL(fileURL)
		var endpoint string
		file := map[string]interface{}{"url": fileURL}
		switch {
		case strings.HasPrefix(mimeType, "image/"):
			endpoint = dispatch.EndpointSendImage
			file["mimetype"] = mimeType
			file["filename"] = valueOr(rule.FileName, "image.jpg")
		case strings.HasPrefix(mimeType, "video/"):
			endpoint = dispatch.EndpointSendVideo
			file["mimetype"] = mimeType
			file["filename"] = valueOr(rule.FileName, "video.mp4")
		default:
			endpoint = dispatch.EndpointSendFile
			file["filename"] = valueOr(rule.FileName, "document.pdf")
		}
		data["file"] = file
		if messageText != "" {
			data["caption"] = messageText
		}
		return u.notifyGateway(rule, data, endpoint, record)
	}

	data["text"] = messageText
	return u.notifyGateway(rule, data, dispatch.EndpointSendText, record)
}

// TriggerForRecord loads the rule and record and fires the rule once
func (u *NotificationUseCase) TriggerForRecord(ruleID int, recordType string, recordName string) error {
	rule, err := u.ruleRepository.GetByID(ruleID)
	if err != nil {
		return err
	}
	record, err := u.recordRepository.GetByName(recordType, recordName)
	if err != nil {
		return err
	}
	return u.SendNotificationMessage(rule, record, "", false)
}

// TriggerScheduledRules runs the daily sweep. Each Days Before rule fires
// for records whose date field lands the configured number of days ahead,
// Days After for the same number of days behind.
func (u *NotificationUseCase) TriggerScheduledRules() error {
	rules, err := u.getScheduledRules()
	if err != nil {
		return err
	}

	for i := range *rules {
		rule := (*rules)[i]
		diffDays := rule.DaysInAdvance
		if rule.TriggerMode == domainNotification.TriggerDaysAfter {
			diffDays = -diffDays
		}

		referenceDay := time.Now().AddDate(0, 0, diffDays)
		start := time.Date(referenceDay.Year(), referenceDay.Month(), referenceDay.Day(), 0, 0, 0, 0, referenceDay.Location())
		end := start.Add(24*time.Hour - time.Nanosecond)

		records, err := u.recordRepository.GetByDateFieldRange(rule.ReferenceType, rule.DateField, start, end)
		if err != nil {
			u.Logger.Error("Error fetching records for scheduled rule",
				zap.Error(err), zap.Int("ruleID", rule.ID))
			continue
		}

		for j := range *records {
			record := (*records)[j]
			if err := u.SendNotificationMessage(&rule, &record, "", false); err != nil {
				u.Logger.Warn("Scheduled notification failed",
					zap.Error(err), zap.Int("ruleID", rule.ID), zap.String("record", record.Name))
			}
		}
	}
	return nil
}

func (u *NotificationUseCase) getScheduledRules() (*[]domainNotification.Rule, error) {
	u.cacheMutex.Lock()
	defer u.cacheMutex.Unlock()
	if u.scheduledCache != nil {
		return u.scheduledCache, nil
	}
	rules, err := u.ruleRepository.GetScheduledRules()
	if err != nil {
		return nil, err
	}
	u.scheduledCache = rules
	return rules, nil
}

func (u *NotificationUseCase) invalidateScheduledCache() {
	u.cacheMutex.Lock()
	u.scheduledCache = nil
	u.cacheMutex.Unlock()
}

// notifyGateway performs the send, stores the outgoing message, applies
// the rule's set-field side effect and always appends exactly one audit
// entry for the attempt.
func (u *NotificationUseCase) notifyGateway(
	rule *domainNotification.Rule,
	data map[string]interface{},
	endpoint string,
	record *domainNotification.Record,
) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}

	response, sendErr := u.wahaClient.Post(endpoint, body)
	if sendErr != nil {
		if auditErr := u.auditLogRepository.Append(auditlog.TemplateNotification, map[string]interface{}{
			"error": sendErr.Error(),
		}); auditErr != nil {
			u.Logger.Error("Error appending notification audit entry", zap.Error(auditErr))
		}
		u.Logger.Error("Notification send failed",
			zap.Error(sendErr), zap.String("endpoint", endpoint), zap.Int("ruleID", rule.ID))
		return sendErr
	}

	messageText := ""
	if text, ok := data["text"].(string); ok {
		messageText = text
	} else if caption, ok := data["caption"].(string); ok {
		messageText = caption
	}

	outgoing := &domainMessage.Message{
		Type:        domainMessage.DirectionOutgoing,
		To:          waha.StripChatSuffix(data["chatId"].(string)),
		Message:     messageText,
		MessageID:   gjson.GetBytes(response, "id").String(),
		ContentType: dispatch.ContentTypeForEndpoint(endpoint),
		Status:      domainMessage.StatusSuccess,
	}
	if record != nil {
		outgoing.ReferenceDoctype = record.RecordType
		outgoing.ReferenceName = record.Name
	}
	if _, err := u.messageRepository.Create(outgoing); err != nil {
		u.Logger.Error("Error recording notification message", zap.Error(err), zap.Int("ruleID", rule.ID))
	}

	if record != nil && rule.SetField != "" && rule.SetFieldValue != "" {
		u.applySetField(rule, record)
	}

	var responseMeta interface{}
	if err := json.Unmarshal(response, &responseMeta); err != nil {
		responseMeta = map[string]interface{}{"raw": string(response)}
	}
	if auditErr := u.auditLogRepository.Append(auditlog.TemplateNotification, responseMeta); auditErr != nil {
		u.Logger.Error("Error appending notification audit entry", zap.Error(auditErr))
	}
	return nil
}

// applySetField writes the configured value back to the record, coercing
// to an integer when the schema field is numeric.
func (u *NotificationUseCase) applySetField(rule *domainNotification.Rule, record *domainNotification.Record) {
	schemaFields, err := u.recordRepository.GetSchemaFields(record.RecordType)
	if err != nil {
		u.Logger.Error("Error loading schema for set-field", zap.Error(err), zap.String("recordType", record.RecordType))
		return
	}

	var fieldType string
	found := false
	for _, f := range schemaFields {
		if f.Name == rule.SetField {
			fieldType = f.Type
			found = true
			break
		}
	}
	if !found {
		return
	}

	var value interface{} = rule.SetFieldValue
	if domainNotification.NumericFieldTypes[fieldType] {
		parsed, err := strconv.Atoi(rule.SetFieldValue)
		if err != nil {
			parsed = 0
		}
		value = parsed
	}

	if err := u.recordRepository.SetField(record.RecordType, record.Name, rule.SetField, value); err != nil {
		u.Logger.Error("Error applying set-field",
			zap.Error(err), zap.String("record", record.Name), zap.String("field", rule.SetField))
	}
}

// renderTemplate substitutes {{field}} placeholders for the rule's
// configured fields from the record snapshot.
func renderTemplate(rule *domainNotification.Rule, record *domainNotification.Record) string {
	messageText := rule.Message
	for _, fieldName := range rule.Fields {
		value := ""
		if v, ok := record.Fields[fieldName]; ok && v != nil {
			value = stringValue(v)
		}
		messageText = strings.ReplaceAll(messageText, "{{"+fieldName+"}}", value)
	}
	return messageText
}

func (u *NotificationUseCase) documentPrintURL(record *domainNotification.Record) string {
	return strings.TrimRight(u.settings.AppURL, "/") +
		"/v1/records/" + record.RecordType + "/" + record.Name + "/print.pdf"
}

func (u *NotificationUseCase) customAttachmentURL(rule *domainNotification.Rule, record *domainNotification.Record) string {
	fileURL := rule.Attach
	if rule.AttachFromField != "" {
		if v, ok := record.Fields[rule.AttachFromField]; ok && v != nil {
			fileURL = stringValue(v)
		}
	}
	if fileURL != "" && !strings.HasPrefix(fileURL, "http") {
		fileURL = strings.TrimRight(u.settings.AppURL, "/") + "/" + strings.TrimLeft(fileURL, "/")
	}
	return fileURL
}

func valueOr(value string, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func stringValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(raw)
}
