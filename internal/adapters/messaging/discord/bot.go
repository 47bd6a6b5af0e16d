package discord

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
	portssvc "github.com/SscSPs/expense_tracker/internal/core/ports/services"
	"github.com/bwmarrin/discordgo"
)

const handleTimeout = 15 * time.Second

// Bot feeds direct messages into the expense wizard and answers with its replies.
type Bot struct {
	session *discordgo.Session
	wizard  portssvc.WizardSvc
	logger  *slog.Logger
}

// NewSession prepares a bot session with direct-message intents. Bot.Start connects it.
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent
	return dg, nil
}

func NewBot(session *discordgo.Session, wizard portssvc.WizardSvc, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bot{session: session, wizard: wizard, logger: logger.With(slog.String("component", "discord_bot"))}
	session.AddHandler(b.handleReady)
	session.AddHandler(b.handleMessageCreate)
	return b
}

func (b *Bot) Start() error {
	return b.session.Open()
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) handleReady(_ *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("Discord bot logged in", slog.String("user", event.User.Username))
}

func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || (s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	// Only direct messages drive the wizard.
	if m.GuildID != "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	text, ok := b.reply(ctx, m.ChannelID, m.Content)
	if !ok {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, text, discordgo.WithContext(ctx)); err != nil {
		b.logger.Error("Failed to answer wizard message", slog.String("channel_id", m.ChannelID), slog.String("error", err.Error()))
	}
}

// reply runs the wizard and renders its answer. ok is false when nothing should be sent.
func (b *Bot) reply(ctx context.Context, channelID, content string) (string, bool) {
	r, err := b.wizard.HandleMessage(ctx, channelID, content)
	if err != nil {
		b.logger.Error("Wizard failed", slog.String("channel_id", channelID), slog.String("error", err.Error()))
		return "Something went wrong, please try again later.", true
	}
	if r == nil || r.Text == "" {
		return "", false
	}
	return RenderReply(*r), true
}

// RenderReply prints the prompt followed by the suggested answers as a hint line.
func RenderReply(r domain.WizardReply) string {
	if len(r.Options) == 0 {
		return truncate(r.Text, maxMessageLength)
	}
	quoted := make([]string, len(r.Options))
	for i, o := range r.Options {
		quoted[i] = "`" + o + "`"
	}
	return truncate(r.Text+"\n> "+strings.Join(quoted, " · "), maxMessageLength)
}
