package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"

	"github.com/codegangsta/chartbot/internal/types"
)

// Dispatcher answers one inbound message
type Dispatcher interface {
	Dispatch(ctx context.Context, msg types.InboundMessage) error
}

// Bot wraps the Telegram bot functionality
type Bot struct {
	bot        *gotgbot.Bot
	updater    *ext.Updater
	allowlist  map[int64]bool
	broadcast  int64
	dispatcher Dispatcher
	typing     func(chatID int64) func()
	logger     *slog.Logger
}

// New creates a new Telegram bot. An empty allowlist accepts every chat.
// Standalone posts go to the broadcast chat.
func New(token string, allowlist []int64, broadcast int64, logger *slog.Logger) (*Bot, error) {
	// Create HTTP client with longer timeout for long-polling
	httpClient := http.Client{
		Timeout: 60 * time.Second,
	}

	bot, err := gotgbot.NewBot(token, &gotgbot.BotOpts{
		BotClient: &gotgbot.BaseBotClient{
			Client: httpClient,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating bot: %w", err)
	}

	allowMap := make(map[int64]bool, len(allowlist))
	for _, id := range allowlist {
		allowMap[id] = true
	}

	b := &Bot{
		bot:       bot,
		allowlist: allowMap,
		broadcast: broadcast,
		logger:    logger,
	}
	b.typing = b.TypingLoop
	return b, nil
}

// SetDispatcher sets where inbound messages are sent
func (b *Bot) SetDispatcher(d Dispatcher) {
	b.dispatcher = d
}

// Username is the bot's @handle without the @
func (b *Bot) Username() string {
	return b.bot.Username
}

// Start begins polling for updates and blocks until context is cancelled
func (b *Bot) Start(ctx context.Context) error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(bot *gotgbot.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			b.logger.Error("dispatcher error", "error", err)
			return ext.DispatcherActionNoop
		},
	})

	b.updater = ext.NewUpdater(dispatcher, nil)
	dispatcher.AddHandler(handlers.NewMessage(nil, func(bot *gotgbot.Bot, uctx *ext.Context) error {
		return b.handleMessage(ctx, bot, uctx)
	}))

	err := b.updater.StartPolling(b.bot, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &gotgbot.GetUpdatesOpts{
			Timeout:        30,
			AllowedUpdates: []string{"message"},
			RequestOpts: &gotgbot.RequestOpts{
				Timeout: 60 * time.Second,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("starting polling: %w", err)
	}

	b.logger.Info("telegram bot started",
		"username", b.bot.Username,
		"allowlist_count", len(b.allowlist),
	)

	<-ctx.Done()

	// Stop polling gracefully
	b.updater.Stop()
	b.logger.Info("telegram bot stopped")
	return nil
}

// handleMessage turns an addressed message into an InboundMessage and dispatches it
func (b *Bot) handleMessage(ctx context.Context, bot *gotgbot.Bot, uctx *ext.Context) error {
	msg := uctx.EffectiveMessage
	in, ok := b.accept(msg, bot.Id, bot.Username)
	if !ok {
		return nil
	}

	stopTyping := b.typing(msg.Chat.Id)
	defer stopTyping()

	if err := b.dispatcher.Dispatch(ctx, in); err != nil {
		b.logger.Error("dispatching telegram message",
			"chat_id", msg.Chat.Id,
			"message_id", msg.MessageId,
			"error", err,
		)
	}
	return nil
}

// accept decides whether the bot answers msg, and converts it if so
func (b *Bot) accept(msg *gotgbot.Message, botID int64, username string) (types.InboundMessage, bool) {
	if msg == nil || msg.Text == "" || msg.From == nil {
		return types.InboundMessage{}, false
	}

	chatID := msg.Chat.Id
	if len(b.allowlist) > 0 && !b.allowlist[chatID] {
		b.logger.Debug("ignoring message from non-allowed chat",
			"chat_id", chatID,
			"username", msg.From.Username,
		)
		return types.InboundMessage{}, false
	}

	replyToBot := msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil && msg.ReplyToMessage.From.Id == botID
	if !Addressed(msg.Chat.Type, msg.Text, username, replyToBot) {
		return types.InboundMessage{}, false
	}

	if b.dispatcher == nil {
		return types.InboundMessage{}, false
	}
	return ToInbound(msg), true
}

// Addressed reports whether a message is meant for the bot: any private
// message, a reply to the bot, or a group message mentioning @username.
func Addressed(chatType, text, username string, replyToBot bool) bool {
	if chatType == gotgbot.ChatTypePrivate || replyToBot {
		return true
	}
	if username == "" {
		return false
	}
	text, mention := strings.ToLower(text), "@"+strings.ToLower(username)
	for {
		i := strings.Index(text, mention)
		if i < 0 {
			return false
		}
		rest := text[i+len(mention):]
		if rest == "" || !isHandleChar(rest[0]) {
			return true
		}
		text = rest
	}
}

func isHandleChar(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('0' <= c && c <= '9')
}

// ToInbound converts a Telegram message. Message ids are only unique per chat, so the id includes the chat.
func ToInbound(msg *gotgbot.Message) types.InboundMessage {
	handle := ""
	if msg.From != nil {
		handle = msg.From.Username
		if handle == "" {
			handle = strconv.FormatInt(msg.From.Id, 10)
		}
	}
	return types.InboundMessage{
		ID:             fmt.Sprintf("%d:%d", msg.Chat.Id, msg.MessageId),
		ConversationID: strconv.FormatInt(msg.Chat.Id, 10),
		Platform:       types.PlatformTelegram,
		Text:           msg.Text,
		SenderHandle:   handle,
		ReceivedAt:     time.Unix(msg.Date, 0).UTC(),
	}
}

func parseInboundID(msg types.InboundMessage) (chatID, messageID int64, err error) {
	chatPart, msgPart, ok := strings.Cut(msg.ID, ":")
	if !ok {
		return 0, 0, fmt.Errorf("malformed telegram message id %q", msg.ID)
	}
	if chatID, err = strconv.ParseInt(chatPart, 10, 64); err != nil {
		return 0, 0, fmt.Errorf("malformed chat id %q: %w", chatPart, err)
	}
	if messageID, err = strconv.ParseInt(msgPart, 10, 64); err != nil {
		return 0, 0, fmt.Errorf("malformed message id %q: %w", msgPart, err)
	}
	return chatID, messageID, nil
}

// PostReply sends text as a reply to the inbound message
func (b *Bot) PostReply(ctx context.Context, inReplyTo types.InboundMessage, text string) error {
	chatID, messageID, err := parseInboundID(inReplyTo)
	if err != nil {
		return err
	}
	_, err = b.bot.SendMessageWithContext(ctx, chatID, text, &gotgbot.SendMessageOpts{
		ReplyParameters: &gotgbot.ReplyParameters{
			MessageId:                messageID,
			AllowSendingWithoutReply: true,
		},
	})
	if err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}
	return nil
}

// Publish sends text to the broadcast chat
func (b *Bot) Publish(ctx context.Context, text string) error {
	if b.broadcast == 0 {
		return fmt.Errorf("no telegram broadcast chat configured")
	}
	if _, err := b.bot.SendMessageWithContext(ctx, b.broadcast, text, nil); err != nil {
		return fmt.Errorf("sending broadcast: %w", err)
	}
	return nil
}

// startTyping sends a typing indicator
func (b *Bot) startTyping(chatID int64) {
	_, _ = b.bot.SendChatAction(chatID, "typing", nil)
}

// TypingLoop starts a goroutine that sends typing indicators every 4 seconds
// Returns a cancel function to stop the loop
func (b *Bot) TypingLoop(chatID int64) func() {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(4 * time.Second)
		defer ticker.Stop()

		b.startTyping(chatID)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.startTyping(chatID)
			}
		}
	}()

	return cancel
}
