package db

import (
	"context"
	"strings"
)

// connection settings for the WhatsApp gateway (Evolution API).
//
// There is only one Settings in the system.
type Settings struct {
	ApiUrl            string
	ApiKey            string
	InstanceName      string
	NotificationPhone string
}

// BaseUrl returns ApiUrl without trailing slashes.
func (s Settings) BaseUrl() string {
	return strings.TrimRight(s.ApiUrl, "/")
}

// CanNotify reports whether it knows where notifications should go.
func (s Settings) CanNotify() bool {
	return s.InstanceName != "" && s.NotificationPhone != ""
}

type SettingsInterface interface {
	// Get the settings.
	//
	// # Returns
	//
	// - error: ErrMissing when they have never been saved.
	Get(ctx context.Context) (*Settings, error)

	// Save (insert or update) the settings.
	Save(ctx context.Context, settings Settings) (*Settings, error)
}
