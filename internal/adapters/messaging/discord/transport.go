package discord

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
	"github.com/SscSPs/expense_tracker/internal/core/ports/messaging"
	"github.com/bwmarrin/discordgo"
)

const (
	maxButtonsPerRow = 5
	maxComponentRows = 5
	maxButtonLabel   = 80
	maxMessageLength = 2000
)

// messageSender is the part of *discordgo.Session the transport needs.
type messageSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Transport delivers notices to Discord channels.
type Transport struct {
	session messageSender
}

var _ messaging.Transport = (*Transport)(nil)

func NewTransport(session *discordgo.Session) *Transport {
	return &Transport{session: session}
}

func (t *Transport) Send(ctx context.Context, channelID string, text string, buttons []domain.Button) error {
	msg := &discordgo.MessageSend{
		Content: truncate(text, maxMessageLength),
	}
	if components := buildLinkButtons(buttons); len(components) > 0 {
		msg.Components = components
	}

	if _, err := t.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: send to %s: %w", channelID, err)
	}
	return nil
}

func buildLinkButtons(buttons []domain.Button) []discordgo.MessageComponent {
	var (
		components []discordgo.MessageComponent
		row        []discordgo.MessageComponent
	)
	for _, b := range buttons {
		if b.URL == "" {
			continue
		}
		row = append(row, discordgo.Button{
			Label: truncate(b.Label, maxButtonLabel),
			Style: discordgo.LinkButton,
			URL:   b.URL,
		})
		if len(row) == maxButtonsPerRow {
			components = append(components, discordgo.ActionsRow{Components: row})
			row = nil
		}
		if len(components) == maxComponentRows {
			return components
		}
	}
	if len(row) > 0 {
		components = append(components, discordgo.ActionsRow{Components: row})
	}
	return components
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
