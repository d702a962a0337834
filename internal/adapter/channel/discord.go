package channel

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"cheatbot/internal/domain"
)

// DiscordOption configures the Discord channel.
type DiscordOption func(*DiscordChannel)

// WithDiscordGuild limits the bot to a specific guild.
func WithDiscordGuild(guildID string) DiscordOption {
	return func(d *DiscordChannel) { d.guildID = guildID }
}

// WithDiscordParentLookup replaces how a channel's parent category is
// resolved. The default reads the session state cache.
func WithDiscordParentLookup(fn func(channelID string) string) DiscordOption {
	return func(d *DiscordChannel) { d.parentOf = fn }
}

// DiscordChannel implements domain.Channel for Discord via discordgo.
type DiscordChannel struct {
	token     string
	session   *discordgo.Session
	handler   domain.MessageHandler
	logger    *slog.Logger
	guildID   string
	parentOf  func(channelID string) string
	botUserID string
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
}

// NewDiscordChannel creates a Discord bot channel.
func NewDiscordChannel(token string, logger *slog.Logger, opts ...DiscordOption) *DiscordChannel {
	d := &DiscordChannel{
		token:  token,
		logger: logger,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *DiscordChannel) Name() string { return "discord" }

func (d *DiscordChannel) Start(ctx context.Context, handler domain.MessageHandler) error {
	d.handler = handler
	d.ctx, d.cancel = context.WithCancel(ctx)

	dg, err := discordgo.New("Bot " + d.token)
	if err != nil {
		return err
	}
	d.session = dg
	d.session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	if d.parentOf == nil {
		d.parentOf = d.stateParent
	}

	d.session.AddHandler(d.onMessageCreate)

	if err := d.session.Open(); err != nil {
		return err
	}

	d.mu.Lock()
	d.botUserID = d.session.State.User.ID
	d.mu.Unlock()
	d.logger.Info("discord channel started", "user_id", d.botUserID)
	return nil
}

func (d *DiscordChannel) Stop(_ context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}
	if d.session != nil {
		return d.session.Close()
	}
	return nil
}

func (d *DiscordChannel) Send(ctx context.Context, msg domain.OutboundMessage) error {
	if msg.Empty() {
		return nil
	}
	_, err := d.session.ChannelMessageSendComplex(msg.SessionID, renderDiscord(msg), discordgo.WithContext(ctx))
	return err
}

// renderDiscord maps a reply onto a Discord message: an ErrorNotice becomes
// an embed, a TextResult becomes markdown content.
func renderDiscord(msg domain.OutboundMessage) *discordgo.MessageSend {
	send := &discordgo.MessageSend{}

	switch m := msg.Message.(type) {
	case domain.ErrorNotice:
		send.Embeds = []*discordgo.MessageEmbed{{
			Title:       m.Title,
			Description: m.Description,
			Color:       m.Color,
		}}
	case domain.TextResult:
		send.Content = m.Markdown()
	default:
		send.Content = msg.Content
		if msg.IsError {
			send.Content = "Error: " + send.Content
		}
	}

	if msg.ReplyToID != "" {
		send.Reference = &discordgo.MessageReference{
			MessageID: msg.ReplyToID,
			ChannelID: msg.SessionID,
		}
	}
	return send
}

func (d *DiscordChannel) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	msg, ok := d.inbound(m)
	if !ok {
		return
	}
	if err := d.handler(d.ctx, msg); err != nil {
		d.logger.Error("discord handler error", "error", err, "channel", m.ChannelID)
	}
}

// inbound converts a gateway event into an InboundMessage. It reports false
// for events the bot must not act on.
func (d *DiscordChannel) inbound(m *discordgo.MessageCreate) (domain.InboundMessage, bool) {
	if m.Message == nil || m.Author == nil || m.Author.Bot {
		return domain.InboundMessage{}, false
	}

	d.mu.Lock()
	botUserID := d.botUserID
	d.mu.Unlock()
	if m.Author.ID == botUserID {
		return domain.InboundMessage{}, false
	}

	if d.guildID != "" && m.GuildID != d.guildID {
		return domain.InboundMessage{}, false
	}

	msg := domain.InboundMessage{
		SessionID:   m.ChannelID,
		Content:     m.Content,
		ChannelName: "discord",
		MessageID:   m.ID,
		SenderID:    m.Author.ID,
		SenderName:  m.Author.Username,
		GroupID:     m.GuildID,
	}

	if m.GuildID != "" {
		// Every member implicitly holds the @everyone role, whose ID is the guild ID.
		msg.RoleIDs = []string{m.GuildID}
		if m.Member != nil {
			msg.RoleIDs = append(msg.RoleIDs, m.Member.Roles...)
		}
		if d.parentOf != nil {
			msg.CategoryID = d.parentOf(m.ChannelID)
		}
	}
	return msg, true
}

func (d *DiscordChannel) stateParent(channelID string) string {
	ch, err := d.session.State.Channel(channelID)
	if err != nil {
		ch, err = d.session.Channel(channelID)
		if err != nil {
			d.logger.Debug("discord: channel lookup failed", "channel", channelID, "error", err)
			return ""
		}
	}
	return ch.ParentID
}
