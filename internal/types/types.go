// Package types contains shared types used across packages
package types

//go:generate go run go.uber.org/mock/mockgen -source=types.go -destination=../mocks/mock_types.go -package=mocks

import (
	"context"
	"time"

	"github.com/codegangsta/chartbot/internal/dates"
)

// Platform names a social network the bot is connected to
type Platform string

const (
	PlatformTelegram Platform = "telegram"
	PlatformX        Platform = "x"
)

// InboundMessage is a mention or direct message addressed to the bot
type InboundMessage struct {
	ID             string // platform message id, unique per platform
	ConversationID string // chat id on Telegram, empty on X
	Platform       Platform
	Text           string
	SenderHandle   string // without the leading @
	ReceivedAt     time.Time
}

// BirthdayRecord associates a handle with a date of birth
type BirthdayRecord struct {
	Handle string
	Date   dates.Date
}

// Poster sends a reply threaded under an inbound message
type Poster interface {
	PostReply(ctx context.Context, inReplyTo InboundMessage, text string) error
}

// Publisher sends a standalone post
type Publisher interface {
	Publish(ctx context.Context, text string) error
}
