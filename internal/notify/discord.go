package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/James9446/patricia-james-sub001/internal/models"
	"github.com/James9446/patricia-james-sub001/internal/rsvp"
)

// Embed colours per response.
const (
	colorAttending    = 0x2ecc71
	colorNotAttending = 0xe74c3c
	colorPending      = 0xf1c40f
)

// Discord posts RSVP summaries to a Discord channel webhook.
type Discord struct {
	session *discordgo.Session
	id      string
	token   string
}

// NewDiscord creates a webhook notifier. Webhooks need no bot token.
func NewDiscord(cfg Config) (*Discord, error) {
	s, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return &Discord{session: s, id: cfg.DiscordWebhookID, token: cfg.DiscordWebhookToken}, nil
}

// RSVPSubmitted implements rsvp.Notifier.
func (d *Discord) RSVPSubmitted(ctx context.Context, res *rsvp.Result) error {
	params := &discordgo.WebhookParams{
		Username: "RSVP",
		Embeds:   []*discordgo.MessageEmbed{rsvpEmbed(res)},
	}
	_, err := d.session.WebhookExecute(d.id, d.token, false, params, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	return nil
}

func rsvpEmbed(res *rsvp.Result) *discordgo.MessageEmbed {
	status := models.ResponsePending
	if len(res.RSVPs) > 0 {
		status = res.RSVPs[0].ResponseStatus
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s responded: %s", res.Guest.Name, statusLabel(status)),
		Color: statusColor(status),
	}

	for _, r := range res.RSVPs {
		value := statusLabel(r.ResponseStatus)
		if r.Dietary != "" {
			value += "\nDietary: " + r.Dietary
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   r.UserName,
			Value:  value,
			Inline: true,
		})
	}

	if res.PlusOneCreated && res.PlusOne != nil {
		embed.Description = fmt.Sprintf("New plus-one added: %s", res.PlusOne.Name)
	}
	if len(res.RSVPs) > 0 && res.RSVPs[0].Message != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: truncate(res.RSVPs[0].Message, 1024)}
	}
	return embed
}

func statusLabel(s models.ResponseStatus) string {
	switch s {
	case models.ResponseAttending:
		return "Attending"
	case models.ResponseNotAttending:
		return "Not attending"
	default:
		return "Pending"
	}
}

func statusColor(s models.ResponseStatus) int {
	switch s {
	case models.ResponseAttending:
		return colorAttending
	case models.ResponseNotAttending:
		return colorNotAttending
	default:
		return colorPending
	}
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
