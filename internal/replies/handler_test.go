package replies

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/codegangsta/chartbot/internal/catalog"
	"github.com/codegangsta/chartbot/internal/chart"
	"github.com/codegangsta/chartbot/internal/commands"
	"github.com/codegangsta/chartbot/internal/dates"
	"github.com/codegangsta/chartbot/internal/mocks"
	"github.com/codegangsta/chartbot/internal/songs"
	"github.com/codegangsta/chartbot/internal/types"
)

type handlerDeps struct {
	chart   *mocks.MockChartSource
	catalog *mocks.MockCatalog
	store   *mocks.MockBirthdayStore
	handler *Handler
}

func newHandlerDeps(t *testing.T) handlerDeps {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)

	source := mocks.NewMockChartSource(ctrl)
	cat := mocks.NewMockCatalog(ctrl)
	store := mocks.NewMockBirthdayStore(ctrl)

	classifier, err := commands.NewClassifier(nil)
	require.NoError(t, err)
	composer, err := NewComposer("en", log)
	require.NoError(t, err)

	today := func() time.Time {
		return time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	}
	resolver := songs.NewResolver(source, cat, log, songs.WithClock(today))

	return handlerDeps{
		chart:   source,
		catalog: cat,
		store:   store,
		handler: NewHandler(classifier, resolver, store, composer, log, WithClock(today)),
	}
}

func mention(text string) types.InboundMessage {
	return types.InboundMessage{
		ID:           "1001",
		Platform:     types.PlatformX,
		Text:         text,
		SenderHandle: "alice",
		ReceivedAt:   time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestHandler_Handle(t *testing.T) {
	ctx := context.Background()
	june25 := dates.Date{Year: 2009, Month: time.June, Day: 25}

	t.Run("should answer a song lookup end to end", func(t *testing.T) {
		req := require.New(t)
		deps := newHandlerDeps(t)

		deps.chart.EXPECT().TopEntry(gomock.Any(), june25).
			Return(chart.Entry{Song: "Billie Jean", Artist: "Michael Jackson"}, true, nil)
		deps.catalog.EXPECT().Search(gomock.Any(), "artist:Michael Jackson track:Billie Jean").
			Return([]catalog.Item{{URI: "spotify:track:7xyz"}}, nil)

		reply := deps.handler.Handle(ctx, mention("@bot spotify 2009-06-25"))

		req.Equal(commands.Command{Kind: commands.SongLookup, RawDate: "2009-06-25"}, reply.Command)
		req.Equal(SongResolved, reply.Outcome.Kind)
		req.Contains(reply.Text, "2009-06-25")
		req.Contains(reply.Text, "Billie Jean")
		req.Contains(reply.Text, "Michael Jackson")
		req.Contains(reply.Text, "https://open.spotify.com/track/7xyz")
		req.NotEmpty(reply.CycleID)
	})

	t.Run("should apologise for an unresolvable song date", func(t *testing.T) {
		req := require.New(t)
		deps := newHandlerDeps(t)

		deps.chart.EXPECT().TopEntry(gomock.Any(), gomock.Any()).Times(0)

		reply := deps.handler.Handle(ctx, mention("@bot spotify 2009-02-30"))

		req.Equal(DateInvalid, reply.Outcome.Kind)
		req.Contains(reply.Text, "however your date is invalid")
		req.Contains(reply.Text, "spotify song finding feature")
	})

	t.Run("should turn a chart outage into a glitch reply", func(t *testing.T) {
		req := require.New(t)
		deps := newHandlerDeps(t)

		deps.chart.EXPECT().TopEntry(gomock.Any(), june25).
			Return(chart.Entry{}, false, errors.New("connection refused"))

		reply := deps.handler.Handle(ctx, mention("@bot spotify 25-06-2009"))

		req.Equal(ServiceFault, reply.Outcome.Kind)
		req.Equal("Hello there! I couldn't look up the number one song on 2009-06-25 due to a technical glitch. Please try again.", reply.Text)
	})

	t.Run("should store a birthday under the sender handle", func(t *testing.T) {
		req := require.New(t)
		deps := newHandlerDeps(t)

		deps.store.EXPECT().Put(gomock.Any(), types.BirthdayRecord{
			Handle: "alice",
			Date:   dates.Date{Year: 1990, Month: time.January, Day: 15},
		}).Return(nil)

		reply := deps.handler.Handle(ctx, mention("@bot my birthday is 15/01/1990"))

		req.Equal(BirthdayStored, reply.Outcome.Kind)
		req.Equal("your birthday has been added to the database !", reply.Text)
	})

	t.Run("should apologise when the store fails", func(t *testing.T) {
		req := require.New(t)
		deps := newHandlerDeps(t)

		deps.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		reply := deps.handler.Handle(ctx, mention("@bot birthday 1990-01-15"))

		req.Equal(StoreFailed, reply.Outcome.Kind)
		req.Equal("your birthday was not added to the database due to a technical glitch. please try again.", reply.Text)
	})

	t.Run("should not store an invalid birthday", func(t *testing.T) {
		req := require.New(t)
		deps := newHandlerDeps(t)

		deps.store.EXPECT().Put(gomock.Any(), gomock.Any()).Times(0)

		reply := deps.handler.Handle(ctx, mention("@bot birthday 1990-02-31"))

		req.Equal(DateInvalid, reply.Outcome.Kind)
		req.Contains(reply.Text, "birthday wishing feature")
	})

	t.Run("should not store a birthday in the future", func(t *testing.T) {
		req := require.New(t)
		deps := newHandlerDeps(t)

		deps.store.EXPECT().Put(gomock.Any(), gomock.Any()).Times(0)

		reply := deps.handler.Handle(ctx, mention("@bot birthday 2030-01-01"))

		req.Equal(commands.BirthdayRegister, reply.Command.Kind)
		req.Equal(DateInvalid, reply.Outcome.Kind)
		req.Contains(reply.Text, "birthday wishing feature")
	})

	t.Run("should store a birthday of today", func(t *testing.T) {
		req := require.New(t)
		deps := newHandlerDeps(t)

		deps.store.EXPECT().Put(gomock.Any(), types.BirthdayRecord{
			Handle: "alice",
			Date:   dates.Date{Year: 2024, Month: time.May, Day: 1},
		}).Return(nil)

		reply := deps.handler.Handle(ctx, mention("@bot birthday 2024-05-01"))

		req.Equal(BirthdayStored, reply.Outcome.Kind)
	})

	t.Run("should send help for a keyword without a date", func(t *testing.T) {
		req := require.New(t)
		deps := newHandlerDeps(t)

		deps.store.EXPECT().Put(gomock.Any(), gomock.Any()).Times(0)

		reply := deps.handler.Handle(ctx, mention("@bot birthday not-a-date"))

		req.Equal(commands.Unrecognized, reply.Command.Kind)
		req.Equal(NoOutcome, reply.Outcome.Kind)
		req.Contains(reply.Text, "If you send a message containing the word spotify")
		req.NotContains(reply.Text, "birthday wishing feature")
	})
}
