package di

import (
	"sync"

	"go-whatsapp-gateway-api/src/domain/common"
	"go-whatsapp-gateway-api/src/infrastructure/config"
	"go-whatsapp-gateway-api/src/infrastructure/helper"
	"go-whatsapp-gateway-api/src/infrastructure/messaging"
	"go-whatsapp-gateway-api/src/infrastructure/storage"
	"go-whatsapp-gateway-api/src/infrastructure/utils"
	"go-whatsapp-gateway-api/src/infrastructure/waha"

	campaignUseCase "go-whatsapp-gateway-api/src/application/usecases/campaign"
	dispatchUseCase "go-whatsapp-gateway-api/src/application/usecases/dispatch"
	messageUseCase "go-whatsapp-gateway-api/src/application/usecases/message"
	notificationUseCase "go-whatsapp-gateway-api/src/application/usecases/notification"
	webhookUseCase "go-whatsapp-gateway-api/src/application/usecases/webhook"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"
	"go-whatsapp-gateway-api/src/infrastructure/repository/mysql"
	attachmentRepo "go-whatsapp-gateway-api/src/infrastructure/repository/mysql/attachment"
	"go-whatsapp-gateway-api/src/infrastructure/repository/mysql/auditlog"
	campaignRepo "go-whatsapp-gateway-api/src/infrastructure/repository/mysql/campaign"
	messageRepo "go-whatsapp-gateway-api/src/infrastructure/repository/mysql/message"
	ruleRepo "go-whatsapp-gateway-api/src/infrastructure/repository/mysql/notification"
	recordRepo "go-whatsapp-gateway-api/src/infrastructure/repository/mysql/record"
	campaignController "go-whatsapp-gateway-api/src/infrastructure/rest/controllers/campaign"
	messageController "go-whatsapp-gateway-api/src/infrastructure/rest/controllers/message"
	notificationController "go-whatsapp-gateway-api/src/infrastructure/rest/controllers/notification"
	webhookController "go-whatsapp-gateway-api/src/infrastructure/rest/controllers/webhook"

	"gorm.io/gorm"
)

// ApplicationContext holds all application dependencies and services
type ApplicationContext struct {
	DB               *gorm.DB
	Logger           *logger.Logger
	Settings         config.Settings
	CommonService    common.CommonService
	WahaClient       waha.ClientInterface
	AttachmentStore  *storage.AttachmentStore
	MessageProcessor *messaging.MessageProcessor

	MessageRepository    messageRepo.MessageRepositoryInterface
	CampaignRepository   campaignRepo.CampaignRepositoryInterface
	RuleRepository       ruleRepo.RuleRepositoryInterface
	RecordRepository     recordRepo.RecordRepositoryInterface
	AttachmentRepository attachmentRepo.AttachmentRepositoryInterface
	AuditLogRepository   auditlog.AuditLogRepositoryInterface

	DispatchUseCase     dispatchUseCase.IDispatchUseCase
	MessageUseCase      messageUseCase.IMessageUseCase
	WebhookUseCase      webhookUseCase.IWebhookUseCase
	NotificationUseCase notificationUseCase.INotificationUseCase
	CampaignUseCase     campaignUseCase.ICampaignUseCase

	MessageController      messageController.IMessageController
	CampaignController     campaignController.ICampaignController
	NotificationController notificationController.INotificationController
	WebhookController      webhookController.IWebhookController
}

var (
	loggerInstance *logger.Logger
	loggerOnce     sync.Once
)

func GetLogger() *logger.Logger {
	loggerOnce.Do(func() {
		loggerInstance, _ = logger.NewLogger()
	})
	return loggerInstance
}

// SetupDependencies creates the application context. The message processor
// is constructed first and gets its handlers registered once the use
// cases exist, then started.
func SetupDependencies(loggerInstance *logger.Logger) (*ApplicationContext, error) {
	db, err := mysql.InitMySQLDB(loggerInstance)
	if err != nil {
		return nil, err
	}

	settings, err := config.Load(utils.GetEnv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		return nil, err
	}

	validatorService := helper.NewValidator(loggerInstance)
	commonService := common.NewCommonService(validatorService)

	wahaClient := waha.NewClient(settings, loggerInstance)
	attachmentStore := storage.NewAttachmentStore(settings.AttachmentDir, loggerInstance)

	messageRepository := messageRepo.NewMessageRepository(db, loggerInstance)
	campaignRepository := campaignRepo.NewCampaignRepository(db, loggerInstance)
	ruleRepository := ruleRepo.NewRuleRepository(db, loggerInstance)
	recordRepository := recordRepo.NewRecordRepository(db, loggerInstance)
	attachmentRepository := attachmentRepo.NewAttachmentRepository(db, loggerInstance)
	auditLogRepository := auditlog.NewAuditLogRepository(db, loggerInstance)

	processor := messaging.NewMessageProcessor(loggerInstance, settings.WorkerCount)

	dispatcher := dispatchUseCase.NewDispatchUseCase(
		wahaClient, messageRepository, auditLogRepository, settings, loggerInstance)
	messageUC := messageUseCase.NewMessageUseCase(messageRepository, dispatcher, loggerInstance)
	webhookUC := webhookUseCase.NewWebhookUseCase(
		messageRepository, attachmentRepository, auditLogRepository,
		wahaClient, dispatcher, attachmentStore, settings, loggerInstance)
	notificationUC := notificationUseCase.NewNotificationUseCase(
		ruleRepository, recordRepository, messageRepository, auditLogRepository,
		wahaClient, settings, loggerInstance)
	campaignUC := campaignUseCase.NewCampaignUseCase(
		campaignRepository, messageRepository, processor, loggerInstance)

	processor.Register(campaignUC, dispatcher, notificationUC)
	processor.Start()

	appContext := &ApplicationContext{
		DB:               db,
		Logger:           loggerInstance,
		Settings:         settings,
		CommonService:    commonService,
		WahaClient:       wahaClient,
		AttachmentStore:  attachmentStore,
		MessageProcessor: processor,

		MessageRepository:    messageRepository,
		CampaignRepository:   campaignRepository,
		RuleRepository:       ruleRepository,
		RecordRepository:     recordRepository,
		AttachmentRepository: attachmentRepository,
		AuditLogRepository:   auditLogRepository,

		DispatchUseCase:     dispatcher,
		MessageUseCase:      messageUC,
		WebhookUseCase:      webhookUC,
		NotificationUseCase: notificationUC,
		CampaignUseCase:     campaignUC,

		MessageController:      messageController.NewMessageController(commonService, messageUC, loggerInstance),
		CampaignController:     campaignController.NewCampaignController(commonService, campaignUC, loggerInstance),
		NotificationController: notificationController.NewNotificationController(commonService, notificationUC, loggerInstance),
		WebhookController:      webhookController.NewWebhookController(webhookUC, loggerInstance),
	}
	return appContext, nil
}
