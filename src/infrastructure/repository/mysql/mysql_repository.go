package mysql

import (
	"fmt"
	"os"
	"strings"

	logger "go-whatsapp-gateway-api/src/infrastructure/logger"
	"go-whatsapp-gateway-api/src/infrastructure/repository/mysql/attachment"
	"go-whatsapp-gateway-api/src/infrastructure/repository/mysql/auditlog"
	"go-whatsapp-gateway-api/src/infrastructure/repository/mysql/campaign"
	"go-whatsapp-gateway-api/src/infrastructure/repository/mysql/message"
	"go-whatsapp-gateway-api/src/infrastructure/repository/mysql/notification"
	"go-whatsapp-gateway-api/src/infrastructure/repository/mysql/record"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// loadDatabaseConfig loads database configuration from environment variables.
// Returns error if any required environment variable is missing.
func loadDatabaseConfig() (DatabaseConfig, error) {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	var missingVars []string
	if host == "" {
		missingVars = append(missingVars, "DB_HOST")
	}
	if port == "" {
		missingVars = append(missingVars, "DB_PORT")
	}
	if user == "" {
		missingVars = append(missingVars, "DB_USER")
	}
	if password == "" {
		missingVars = append(missingVars, "DB_PASSWORD")
	}
	if dbName == "" {
		missingVars = append(missingVars, "DB_NAME")
	}

	if len(missingVars) > 0 {
		return DatabaseConfig{}, fmt.Errorf("missing required database environment variables: %s", strings.Join(missingVars, ", "))
	}

	return DatabaseConfig{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		DBName:   dbName,
	}, nil
}

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName)
}

// InitMySQLDB opens the database connection and migrates the schema
func InitMySQLDB(loggerInstance *logger.Logger) (*gorm.DB, error) {
	cfg, err := loadDatabaseConfig()
	if err != nil {
		loggerInstance.Error("Failed to load database configuration", zap.Error(err))
		return nil, err
	}

	db, err := gorm.Open(mysql.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		loggerInstance.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	err = db.AutoMigrate(
		&message.WhatsAppMessage{},
		&campaign.BulkCampaign{},
		&campaign.Recipient{},
		&campaign.RecipientList{},
		&notification.NotificationRule{},
		&record.Record{},
		&record.SchemaField{},
		&attachment.Attachment{},
		&auditlog.NotificationLog{},
	)
	if err != nil {
		loggerInstance.Error("Failed to migrate database schema", zap.Error(err))
		return nil, err
	}

	loggerInstance.Info("Database connection established", zap.String("database", cfg.DBName))
	return db, nil
}
