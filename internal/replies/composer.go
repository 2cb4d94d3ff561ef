// Package replies turns inbound mentions into reply texts and posts them
package replies

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/codegangsta/chartbot/internal/commands"
	"github.com/codegangsta/chartbot/internal/dates"
	"github.com/codegangsta/chartbot/internal/songs"
)

//go:embed locales/*.json
var localeFS embed.FS

// Message IDs in locales/active.*.json
const (
	msgSongDateInvalid     = "ReplySongDateInvalid"
	msgSongNotFound        = "ReplySongNotFound"
	msgSongFound           = "ReplySongFound"
	msgSongFault           = "ReplySongFault"
	msgBirthdayDateInvalid = "ReplyBirthdayDateInvalid"
	msgBirthdayStoreFailed = "ReplyBirthdayStoreFailed"
	msgBirthdayStored      = "ReplyBirthdayStored"
	msgHelp                = "ReplyHelp"
	msgBirthdayGreeting    = "PostBirthdayGreeting"
	msgNumberOne           = "PostNumberOne"
)

// OutcomeKind enumerates what happened after a command was classified
type OutcomeKind int

const (
	NoOutcome OutcomeKind = iota
	DateInvalid
	SongResolved
	ServiceFault
	BirthdayStored
	StoreFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case DateInvalid:
		return "date_invalid"
	case SongResolved:
		return "song_resolved"
	case ServiceFault:
		return "service_fault"
	case BirthdayStored:
		return "birthday_stored"
	case StoreFailed:
		return "store_failed"
	default:
		return "none"
	}
}

// Outcome is the result of carrying out a command. Resolution is set for
// SongResolved, Date for ServiceFault.
type Outcome struct {
	Kind       OutcomeKind
	Resolution songs.Resolution
	Date       dates.Date
}

// Composer renders reply texts from the embedded message catalog
type Composer struct {
	localizer *i18n.Localizer
	logger    *slog.Logger
}

// NewComposer loads every embedded locale and localizes to lang, falling back to English
func NewComposer(lang string, logger *slog.Logger) (*Composer, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("reading locales: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, fmt.Errorf("loading locale %s: %w", name, err)
		}
		logger.Debug("locale loaded", "file", name)
	}

	return &Composer{
		localizer: i18n.NewLocalizer(bundle, lang, language.English.String()),
		logger:    logger,
	}, nil
}

// Compose returns the reply for a command and its outcome. Every pair has a
// reply; pairs that cannot happen get the help text.
func (c *Composer) Compose(cmd commands.Command, out Outcome) string {
	switch cmd.Kind {
	case commands.SongLookup:
		switch out.Kind {
		case DateInvalid:
			return c.msg(msgSongDateInvalid, nil)
		case ServiceFault:
			return c.msg(msgSongFault, map[string]any{"Date": out.Date.String()})
		case SongResolved:
			res := out.Resolution
			if !res.Found {
				return c.msg(msgSongNotFound, map[string]any{"Date": res.Date.String()})
			}
			return c.msg(msgSongFound, map[string]any{
				"Date":   res.Date.String(),
				"Song":   res.Song,
				"Artist": res.Artist,
				"Link":   res.Link,
			})
		}
	case commands.BirthdayRegister:
		switch out.Kind {
		case DateInvalid:
			return c.msg(msgBirthdayDateInvalid, nil)
		case StoreFailed:
			return c.msg(msgBirthdayStoreFailed, nil)
		case BirthdayStored:
			return c.msg(msgBirthdayStored, nil)
		}
	}
	return c.Help()
}

// Help is the reply for messages that ask for nothing the bot can do
func (c *Composer) Help() string {
	return c.msg(msgHelp, nil)
}

// BirthdayGreeting is the post wishing handle a happy birthday
func (c *Composer) BirthdayGreeting(handle string, age int) string {
	return c.msg(msgBirthdayGreeting, map[string]any{"Handle": handle, "Age": age})
}

// NumberOne is the scheduled post announcing a past number one
func (c *Composer) NumberOne(res songs.Resolution) string {
	return c.msg(msgNumberOne, map[string]any{
		"Date":   res.Date.String(),
		"Song":   res.Song,
		"Artist": res.Artist,
		"Link":   res.Link,
	})
}

func (c *Composer) msg(id string, data map[string]any) string {
	text, err := c.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		// the English catalog is embedded, so this only happens on a broken build
		c.logger.Error("missing reply text", "message_id", id, "error", err)
		return id
	}
	return text
}
