package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"go-whatsapp-gateway-api/src/infrastructure/di"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"
	"go-whatsapp-gateway-api/src/infrastructure/rest/middlewares"
	"go-whatsapp-gateway-api/src/infrastructure/rest/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port: getEnvOrDefault("SERVER_PORT", "8080"),
	}
}

func main() {
	env := getEnvOrDefault("GO_ENV", "development")
	var loggerInstance *logger.Logger
	var err error

	if env == "development" {
		loggerInstance, err = logger.NewDevelopmentLogger()
	} else {
		loggerInstance, err = logger.NewLogger()
	}

	if err != nil {
		panic(fmt.Errorf("error initializing logger: %w", err))
	}
	defer func() {
		if err := loggerInstance.Log.Sync(); err != nil {
			loggerInstance.Log.Error("Failed to sync logger", zap.Error(err))
		}
	}()

	loggerInstance.Info("Starting go-whatsapp-gateway-api application")

	serverConfig := loadServerConfig()

	appContext, err := di.SetupDependencies(loggerInstance)
	if err != nil {
		loggerInstance.Panic("Error initializing application context", zap.Error(err))
	}
	defer appContext.MessageProcessor.Shutdown()

	router := setupRouter(appContext, loggerInstance)
	server := setupServer(router, serverConfig.Port)

	loggerInstance.Info("Server starting", zap.String("port", serverConfig.Port))
	if err := server.ListenAndServe(); err != nil {
		loggerInstance.Panic("Server failed to start", zap.Error(err))
	}
}

func setupRouter(appContext *di.ApplicationContext, logger *logger.Logger) *gin.Engine {
	env := getEnvOrDefault("GO_ENV", "development")
	if env == "development" {
		logger.SetupGinWithZapLoggerInDevelopment()
	} else {
		logger.SetupGinWithZapLogger()
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.Use(middlewares.ErrorHandler())
	router.Use(middlewares.GinBodyLogMiddleware)
	router.Use(middlewares.CommonHeaders)

	router.Use(logger.GinZapLogger())

	routes.ApplicationRouter(router, appContext)
	return router
}

func setupServer(router *gin.Engine, port string) *http.Server {
	return &http.Server{
		Addr:           ":" + port,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
