package replies

//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_replies.go -package=mocks

import (
	"context"

	"github.com/codegangsta/chartbot/internal/types"
)

// BirthdayStore records a sender's date of birth
type BirthdayStore interface {
	Put(ctx context.Context, rec types.BirthdayRecord) error
}

// Ledger remembers which inbound messages have been answered, and how many
// times answering one has failed
type Ledger interface {
	Seen(platform types.Platform, id string) (bool, error)
	Mark(platform types.Platform, id string) error
	Fail(platform types.Platform, id string) (int, error)
}
