package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/metrics"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/notify"
)

// Boundary operation labels for failure metrics.
const (
	opSend    = "send"
	opExists  = "exists"
	opDelete  = "delete"
	opEdit    = "edit"
	opMention = "mention"
	opDM      = "dm_channel"
)

// Messenger adapts a discordgo session to the platform boundary the core
// packages consume. It also posts and refreshes the per-plantation status
// embed, and resolves the alert role mention.
type Messenger struct {
	session       *discordgo.Session
	guildID       string
	alertRoleName string

	mu          sync.Mutex
	alertRoleID string
	dmChannels  map[string]string
}

// NewMessenger creates a messenger bound to one guild.
func NewMessenger(session *discordgo.Session, guildID, alertRoleName string) *Messenger {
	return &Messenger{
		session:       session,
		guildID:       guildID,
		alertRoleName: alertRoleName,
		dmChannels:    make(map[string]string),
	}
}

// Send posts msg to channelID and returns a reference to the new message.
func (m *Messenger) Send(ctx context.Context, channelID string, msg notify.Message) (domain.MessageRef, error) {
	send := &discordgo.MessageSend{Content: msg.Content}
	if len(msg.Buttons) > 0 {
		send.Components = []discordgo.MessageComponent{buttonRow(msg.Buttons)}
	}

	posted, err := m.session.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		metrics.BoundaryFailures.WithLabelValues(opSend).Inc()
		return domain.MessageRef{}, fmt.Errorf("failed to send message: %w", err)
	}
	return domain.MessageRef{ChannelID: channelID, MessageID: posted.ID}, nil
}

// Exists probes whether the referenced message is still in its channel.
// A deleted message reports (false, nil); transport failures report an
// error so callers can tell "gone" from "unknown".
func (m *Messenger) Exists(ctx context.Context, ref domain.MessageRef) (bool, error) {
	_, err := m.session.ChannelMessage(ref.ChannelID, ref.MessageID, discordgo.WithContext(ctx))
	if err == nil {
		return true, nil
	}
	if isUnknownMessage(err) {
		return false, nil
	}
	metrics.BoundaryFailures.WithLabelValues(opExists).Inc()
	return false, fmt.Errorf("failed to probe message: %w", err)
}

// Delete removes the referenced message. Already-gone messages are not an error.
func (m *Messenger) Delete(ctx context.Context, ref domain.MessageRef) error {
	err := m.session.ChannelMessageDelete(ref.ChannelID, ref.MessageID, discordgo.WithContext(ctx))
	if err == nil || isUnknownMessage(err) {
		return nil
	}
	metrics.BoundaryFailures.WithLabelValues(opDelete).Inc()
	return fmt.Errorf("failed to delete message: %w", err)
}

// PostPlantation posts a fresh status embed for p.
func (m *Messenger) PostPlantation(ctx context.Context, p domain.Plantation) (domain.MessageRef, error) {
	embed := buildPlantationEmbed(p)
	posted, err := m.session.ChannelMessageSendEmbed(p.EmbedChannelID, embed, discordgo.WithContext(ctx))
	if err != nil {
		metrics.BoundaryFailures.WithLabelValues(opSend).Inc()
		return domain.MessageRef{}, fmt.Errorf("failed to post status embed: %w", err)
	}
	return domain.MessageRef{ChannelID: p.EmbedChannelID, MessageID: posted.ID}, nil
}

// RefreshPlantation re-renders p's status embed in place.
func (m *Messenger) RefreshPlantation(ctx context.Context, p domain.Plantation) error {
	if p.Primary.IsZero() {
		return nil
	}
	embed := buildPlantationEmbed(p)
	_, err := m.session.ChannelMessageEditEmbed(p.Primary.ChannelID, p.Primary.MessageID, embed, discordgo.WithContext(ctx))
	if err != nil && !isUnknownMessage(err) {
		metrics.BoundaryFailures.WithLabelValues(opEdit).Inc()
		return fmt.Errorf("failed to refresh status embed: %w", err)
	}
	return nil
}

// Mention resolves the configured alert role to a mention token. The
// lookup result is cached; a missing role falls back to @here.
func (m *Messenger) Mention(ctx context.Context) string {
	m.mu.Lock()
	cached := m.alertRoleID
	m.mu.Unlock()
	if cached != "" {
		return fmt.Sprintf("<@&%s>", cached)
	}
	if m.alertRoleName == "" {
		return "@here"
	}

	roles, err := m.session.GuildRoles(m.guildID, discordgo.WithContext(ctx))
	if err != nil {
		metrics.BoundaryFailures.WithLabelValues(opMention).Inc()
		return "@here"
	}
	for _, role := range roles {
		if role.Name == m.alertRoleName {
			m.mu.Lock()
			m.alertRoleID = role.ID
			m.mu.Unlock()
			return fmt.Sprintf("<@&%s>", role.ID)
		}
	}
	return "@here"
}

// UserDMChannel returns (and caches) the DM channel for a user.
func (m *Messenger) UserDMChannel(ctx context.Context, userID string) (string, error) {
	m.mu.Lock()
	cached, ok := m.dmChannels[userID]
	m.mu.Unlock()
	if ok {
		return cached, nil
	}

	ch, err := m.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		metrics.BoundaryFailures.WithLabelValues(opDM).Inc()
		return "", fmt.Errorf("failed to open DM channel: %w", err)
	}

	m.mu.Lock()
	m.dmChannels[userID] = ch.ID
	m.mu.Unlock()
	return ch.ID, nil
}

// isUnknownMessage reports whether err is Discord's "Unknown Message"
// (10008) or "Unknown Channel" (10003) REST error, meaning the target is
// permanently gone rather than temporarily unreachable.
func isUnknownMessage(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return false
	}
	code := restErr.Message.Code
	return code == discordgo.ErrCodeUnknownMessage || code == discordgo.ErrCodeUnknownChannel
}

func buttonRow(buttons []notify.Button) discordgo.ActionsRow {
	row := discordgo.ActionsRow{Components: make([]discordgo.MessageComponent, 0, len(buttons))}
	for _, b := range buttons {
		row.Components = append(row.Components, discordgo.Button{
			CustomID: b.CustomID,
			Label:    b.Label,
			Style:    buttonStyle(b.Style),
		})
	}
	return row
}

func buttonStyle(style notify.ButtonStyle) discordgo.ButtonStyle {
	switch style {
	case notify.ButtonSuccess:
		return discordgo.SuccessButton
	case notify.ButtonDanger:
		return discordgo.DangerButton
	default:
		return discordgo.PrimaryButton
	}
}
