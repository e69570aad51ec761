package waha

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go-whatsapp-gateway-api/src/infrastructure/config"
	domainErrors "go-whatsapp-gateway-api/src/domain/errors"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

// ClientInterface is the gateway transport consumed by the dispatcher and
// the inbound media ingester.
type ClientInterface interface {
	Post(endpoint string, body []byte) ([]byte, error)
	Put(endpoint string, body []byte) ([]byte, error)
	DownloadMedia(url string) ([]byte, error)
}

// Client issues HTTP requests against a WAHA-compatible messaging gateway
type Client struct {
	settings   config.Settings
	httpClient *http.Client
	Logger     *logger.Logger
}

func NewClient(settings config.Settings, loggerInstance *logger.Logger) ClientInterface {
	return &Client{
		settings: settings,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		Logger: loggerInstance,
	}
}

// Post sends a JSON body to <base_url><endpoint> and returns the raw response body
func (c *Client) Post(endpoint string, body []byte) ([]byte, error) {
	return c.request(http.MethodPost, endpoint, body)
}

// Put is used by the reaction endpoint, which updates instead of creating
func (c *Client) Put(endpoint string, body []byte) ([]byte, error) {
	return c.request(http.MethodPut, endpoint, body)
}

func (c *Client) request(method string, endpoint string, body []byte) ([]byte, error) {
	if c.settings.WahaURL == "" {
		c.Logger.Error("Gateway base URL is not configured", zap.String("endpoint", endpoint))
		return nil, domainErrors.NewAppError(errors.New("gateway URL not configured"), domainErrors.ConfigurationError)
	}

	url := strings.TrimRight(c.settings.WahaURL, "/") + endpoint
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return nil, domainErrors.NewAppError(err, domainErrors.TransportError)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.settings.APIKey != "" {
		req.Header.Set("X-Api-Key", c.settings.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.Logger.Error("Gateway request failed", zap.Error(err), zap.String("endpoint", endpoint))
		return nil, domainErrors.NewAppError(err, domainErrors.TransportError)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domainErrors.NewAppError(err, domainErrors.TransportError)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorMessage := decodeGatewayError(responseBody, resp.StatusCode)
		c.Logger.Error("Gateway returned an error",
			zap.Int("status", resp.StatusCode),
			zap.String("endpoint", endpoint),
			zap.String("message", errorMessage))
		return nil, domainErrors.NewAppError(errors.New(errorMessage), domainErrors.GatewayError)
	}

	return responseBody, nil
}

// decodeGatewayError extracts the gateway's "message" field when the error
// body is JSON, falling back to the raw response text.
func decodeGatewayError(body []byte, statusCode int) string {
	if msg := gjson.GetBytes(body, "message"); msg.Exists() && msg.String() != "" {
		return msg.String()
	}
	if len(body) > 0 {
		return string(body)
	}
	return fmt.Sprintf("gateway returned status %d", statusCode)
}

// DownloadMedia fetches media bytes from a gateway-provided URL with the
// API key attached.
func (c *Client) DownloadMedia(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, domainErrors.NewAppError(err, domainErrors.TransportError)
	}
	if c.settings.APIKey != "" {
		req.Header.Set("X-Api-Key", c.settings.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domainErrors.NewAppError(err, domainErrors.TransportError)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domainErrors.NewAppError(
			fmt.Errorf("media download returned status %d", resp.StatusCode),
			domainErrors.GatewayError)
	}

	return io.ReadAll(resp.Body)
}
