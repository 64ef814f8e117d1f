// Package notify tells the couple about new RSVPs.
package notify

import (
	"context"
	"log/slog"

	"github.com/James9446/patricia-james-sub001/internal/rsvp"
)

// Config is the notification configuration. Notifications are disabled when
// no webhook is configured.
type Config struct {
	DiscordWebhookID    string `mapstructure:"discord_webhook_id"`
	DiscordWebhookToken string `mapstructure:"discord_webhook_token"`
}

// Noop drops every notification.
type Noop struct{}

// RSVPSubmitted implements rsvp.Notifier.
func (Noop) RSVPSubmitted(context.Context, *rsvp.Result) error { return nil }

// New returns the notifier selected by cfg.
func New(cfg Config, logger *slog.Logger) (rsvp.Notifier, error) {
	if cfg.DiscordWebhookID == "" || cfg.DiscordWebhookToken == "" {
		return Noop{}, nil
	}
	d, err := NewDiscord(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("rsvp notifications enabled", "backend", "discord")
	return d, nil
}
