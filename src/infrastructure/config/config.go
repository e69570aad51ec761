package config

import (
	"os"
	"strconv"

	"go-whatsapp-gateway-api/src/infrastructure/utils"

	"gopkg.in/yaml.v2"
)

// Settings holds all gateway integration configuration. It is built once at
// startup and passed to each component explicitly; there is no process-wide
// settings singleton.
type Settings struct {
	WahaURL              string `yaml:"waha_url"`
	APIKey               string `yaml:"api_key"`
	SessionName          string `yaml:"session_name"`
	WebhookHMACSecret    string `yaml:"webhook_hmac_secret"`
	AllowAutoReadReceipt bool   `yaml:"allow_auto_read_receipt"`
	AppURL               string `yaml:"app_url"`
	AttachmentDir        string `yaml:"attachment_dir"`
	WorkerCount          int    `yaml:"worker_count"`
}

// Load reads settings from an optional YAML file and applies environment
// overrides. A missing file is not an error; everything can come from env.
func Load(path string) (Settings, error) {
	settings := Settings{
		SessionName:   "default",
		AttachmentDir: "/tmp/whatsapp-attachments",
		WorkerCount:   5,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &settings); err != nil {
				return Settings{}, err
			}
		} else if !os.IsNotExist(err) {
			return Settings{}, err
		}
	}

	settings.WahaURL = utils.GetEnv("WAHA_URL", settings.WahaURL)
	settings.APIKey = utils.GetEnv("WAHA_API_KEY", settings.APIKey)
	settings.SessionName = utils.GetEnv("WAHA_SESSION_NAME", settings.SessionName)
	settings.WebhookHMACSecret = utils.GetEnv("WEBHOOK_HMAC_SECRET", settings.WebhookHMACSecret)
	settings.AppURL = utils.GetEnv("APP_URL", settings.AppURL)
	settings.AttachmentDir = utils.GetEnv("ATTACHMENT_DIR", settings.AttachmentDir)

	if v := utils.GetEnv("ALLOW_AUTO_READ_RECEIPT", ""); v != "" {
		settings.AllowAutoReadReceipt = v == "true" || v == "1"
	}
	if v := utils.GetEnv("WORKER_COUNT", ""); v != "" {
		if count, err := strconv.Atoi(v); err == nil && count > 0 {
			settings.WorkerCount = count
		}
	}

	if settings.SessionName == "" {
		settings.SessionName = "default"
	}

	return settings, nil
}
