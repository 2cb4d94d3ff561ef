package telegram

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/mama165/sdk-go/logs"

	"github.com/codegangsta/chartbot/internal/types"
)

func TestAddressed(t *testing.T) {
	tests := []struct {
		name       string
		chatType   string
		text       string
		replyToBot bool
		want       bool
	}{
		{"private chat", "private", "spotify 2009-06-25", false, true},
		{"group mention", "group", "@ChartBot spotify 2009-06-25", false, true},
		{"supergroup mention lowercase", "supergroup", "hey @chartbot birthday 1990-01-15", false, true},
		{"group without mention", "group", "spotify 2009-06-25", false, false},
		{"reply to bot", "group", "2009-06-25 spotify", true, true},
		{"other bot mentioned", "group", "@chartbotfan spotify", false, false},
		{"mention after other bot", "group", "@chartbotfan @chartbot spotify", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Addressed(tt.chatType, tt.text, "chartbot", tt.replyToBot); got != tt.want {
				t.Errorf("Addressed(%q, %q) = %v, want %v", tt.chatType, tt.text, got, tt.want)
			}
		})
	}

	if Addressed("group", "@chartbot hi", "", false) {
		t.Error("Addressed() with unknown username should be false in groups")
	}
}

func TestToInbound(t *testing.T) {
	msg := &gotgbot.Message{
		MessageId: 77,
		Date:      1714554000,
		Chat:      gotgbot.Chat{Id: -1001, Type: "supergroup"},
		From:      &gotgbot.User{Id: 5, Username: "alice"},
		Text:      "@chartbot spotify 2009-06-25",
	}

	got := ToInbound(msg)
	want := types.InboundMessage{
		ID:             "-1001:77",
		ConversationID: "-1001",
		Platform:       types.PlatformTelegram,
		Text:           "@chartbot spotify 2009-06-25",
		SenderHandle:   "alice",
		ReceivedAt:     time.Unix(1714554000, 0).UTC(),
	}
	if got != want {
		t.Errorf("ToInbound() = %+v, want %+v", got, want)
	}

	msg.From = &gotgbot.User{Id: 9}
	if got := ToInbound(msg).SenderHandle; got != "9" {
		t.Errorf("SenderHandle without username = %q, want %q", got, "9")
	}
}

func TestParseInboundID(t *testing.T) {
	tests := []struct {
		id        string
		wantChat  int64
		wantMsg   int64
		wantError bool
	}{
		{"-1001:77", -1001, 77, false},
		{"42:1", 42, 1, false},
		{"1790000000000000020", 0, 0, true},
		{"x:1", 0, 0, true},
		{"1:y", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			chat, msg, err := parseInboundID(types.InboundMessage{ID: tt.id})
			if (err != nil) != tt.wantError {
				t.Fatalf("parseInboundID(%q) error = %v, wantError %v", tt.id, err, tt.wantError)
			}
			if chat != tt.wantChat || msg != tt.wantMsg {
				t.Errorf("parseInboundID(%q) = (%d, %d), want (%d, %d)", tt.id, chat, msg, tt.wantChat, tt.wantMsg)
			}
		})
	}
}

type recordingDispatcher struct {
	msgs []types.InboundMessage
	ctxs []context.Context
	err  error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, msg types.InboundMessage) error {
	d.msgs = append(d.msgs, msg)
	d.ctxs = append(d.ctxs, ctx)
	return d.err
}

func newTestBot(allowlist map[int64]bool, d Dispatcher) (*Bot, *int) {
	typed := 0
	b := &Bot{
		allowlist: allowlist,
		logger:    logs.GetLoggerFromLevel(slog.LevelDebug),
		typing: func(int64) func() {
			typed++
			return func() {}
		},
	}
	if d != nil {
		b.SetDispatcher(d)
	}
	return b, &typed
}

func groupMessage(chatID int64, text string) *gotgbot.Message {
	return &gotgbot.Message{
		MessageId: 12,
		Date:      1714554000,
		Chat:      gotgbot.Chat{Id: chatID, Type: "group"},
		From:      &gotgbot.User{Id: 5, Username: "alice"},
		Text:      text,
	}
}

func TestAccept(t *testing.T) {
	const botID = 99

	replyToBot := groupMessage(-1001, "spotify 2009-06-25")
	replyToBot.ReplyToMessage = &gotgbot.Message{From: &gotgbot.User{Id: botID}}

	noSender := groupMessage(-1001, "@chartbot spotify 2009-06-25")
	noSender.From = nil

	tests := []struct {
		name       string
		allowlist  map[int64]bool
		dispatcher bool
		msg        *gotgbot.Message
		want       bool
	}{
		{"addressed in open chat", nil, true, groupMessage(-1001, "@chartbot spotify 2009-06-25"), true},
		{"allowed chat", map[int64]bool{-1001: true}, true, groupMessage(-1001, "@chartbot spotify 2009-06-25"), true},
		{"chat not allowed", map[int64]bool{-2002: true}, true, groupMessage(-1001, "@chartbot spotify 2009-06-25"), false},
		{"not addressed", nil, true, groupMessage(-1001, "spotify 2009-06-25"), false},
		{"reply to bot", nil, true, replyToBot, true},
		{"no dispatcher", nil, false, groupMessage(-1001, "@chartbot spotify 2009-06-25"), false},
		{"no message", nil, true, nil, false},
		{"empty text", nil, true, groupMessage(-1001, ""), false},
		{"no sender", nil, true, noSender, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Dispatcher
			if tt.dispatcher {
				d = &recordingDispatcher{}
			}
			b, _ := newTestBot(tt.allowlist, d)

			in, ok := b.accept(tt.msg, botID, "chartbot")
			if ok != tt.want {
				t.Fatalf("accept() = %v, want %v", ok, tt.want)
			}
			if ok && in != ToInbound(tt.msg) {
				t.Errorf("accept() message = %+v, want %+v", in, ToInbound(tt.msg))
			}
		})
	}
}

type ctxKey struct{}

func TestHandleMessage(t *testing.T) {
	bot := &gotgbot.Bot{User: gotgbot.User{Id: 99, Username: "chartbot"}}
	ctx := context.WithValue(context.Background(), ctxKey{}, "run")

	t.Run("dispatches with the run context", func(t *testing.T) {
		d := &recordingDispatcher{}
		b, typed := newTestBot(map[int64]bool{-1001: true}, d)
		msg := groupMessage(-1001, "@chartbot spotify 2009-06-25")

		if err := b.handleMessage(ctx, bot, &ext.Context{EffectiveMessage: msg}); err != nil {
			t.Fatalf("handleMessage() error = %v", err)
		}
		if len(d.msgs) != 1 {
			t.Fatalf("Dispatch called %d times, want 1", len(d.msgs))
		}
		if d.msgs[0] != ToInbound(msg) {
			t.Errorf("Dispatch() message = %+v, want %+v", d.msgs[0], ToInbound(msg))
		}
		if d.ctxs[0].Value(ctxKey{}) != "run" {
			t.Error("Dispatch() did not receive the context passed to Start")
		}
		if *typed != 1 {
			t.Errorf("typing started %d times, want 1", *typed)
		}
	})

	t.Run("ignores a chat outside the allowlist", func(t *testing.T) {
		d := &recordingDispatcher{}
		b, typed := newTestBot(map[int64]bool{-2002: true}, d)

		if err := b.handleMessage(ctx, bot, &ext.Context{EffectiveMessage: groupMessage(-1001, "@chartbot hi")}); err != nil {
			t.Fatalf("handleMessage() error = %v", err)
		}
		if len(d.msgs) != 0 || *typed != 0 {
			t.Errorf("dispatched %d messages and typed %d times, want none", len(d.msgs), *typed)
		}
	})

	t.Run("swallows dispatch errors", func(t *testing.T) {
		d := &recordingDispatcher{err: errors.New("flood wait")}
		b, _ := newTestBot(nil, d)

		if err := b.handleMessage(ctx, bot, &ext.Context{EffectiveMessage: groupMessage(-1001, "@chartbot hi")}); err != nil {
			t.Errorf("handleMessage() error = %v, want nil", err)
		}
		if len(d.msgs) != 1 {
			t.Errorf("Dispatch called %d times, want 1", len(d.msgs))
		}
	})
}
