package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"storage": map[string]interface{}{
			"driver": "sqlite",
			"path":   "~/.localhealth/reminders.db",
			"key":    "localHealthReminders",
		},
		"scheduler": map[string]interface{}{
			"interval":          60,
			"tolerance_minutes": 2,
			"retention":         300, // 5 minutes
		},
		"digest": map[string]interface{}{
			"enabled":  false,
			"schedule": "0 8 * * *",
		},
		"notifications": map[string]interface{}{
			"terminal":         true,
			"terminal_granted": false,
			"request_on_start": false,
		},
		"telegram": map[string]interface{}{
			"bot_token": "",
			"chat_id":   "",
		},
		"ui": map[string]interface{}{
			"colored_output": true,
		},
		"log": map[string]interface{}{
			"level":  "info",
			"format": "text",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.localhealth/config.yaml"
}
