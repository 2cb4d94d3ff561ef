// Package commands decides which capability an inbound message asks for
package commands

import (
	"fmt"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"golang.org/x/text/cases"

	"github.com/codegangsta/chartbot/internal/dates"
	"github.com/codegangsta/chartbot/internal/types"
)

// Kind enumerates the capabilities a message can invoke
type Kind int

const (
	Unrecognized Kind = iota
	SongLookup
	BirthdayRegister
)

func (k Kind) String() string {
	switch k {
	case SongLookup:
		return "song_lookup"
	case BirthdayRegister:
		return "birthday_register"
	default:
		return "unrecognized"
	}
}

// Command is the classified intent of a message. RawDate is the unnormalized
// date substring and is only set for SongLookup and BirthdayRegister.
type Command struct {
	Kind    Kind
	RawDate string
}

// Keywords trigger a capability when they start a word outside an @handle.
// Earlier entries win when a message holds more than one.
var Keywords = []struct {
	Word string
	Kind Kind
}{
	{"spotify", SongLookup},
	{"birthday", BirthdayRegister},
}

// Classifier finds keywords with an Aho-Corasick automaton over case-folded text
type Classifier struct {
	matcher *goahocorasick.Machine
	kinds   map[string]Kind
	rank    map[Kind]int
	router  *Router
}

// NewClassifier builds the keyword automaton
func NewClassifier(router *Router) (*Classifier, error) {
	fold := cases.Fold()
	patterns := make([][]rune, len(Keywords))
	kinds := make(map[string]Kind, len(Keywords))
	rank := make(map[Kind]int, len(Keywords))
	for i, kw := range Keywords {
		word := fold.String(kw.Word)
		patterns[i] = []rune(word)
		kinds[word] = kw.Kind
		if _, ok := rank[kw.Kind]; !ok {
			rank[kw.Kind] = i
		}
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, fmt.Errorf("building keyword matcher: %w", err)
	}
	if router == nil {
		router = NewRouter()
	}
	return &Classifier{matcher: m, kinds: kinds, rank: rank, router: router}, nil
}

// Classify returns the command a message asks for. A keyword without a
// date-shaped argument is Unrecognized, like a message with no keyword.
func (c *Classifier) Classify(msg types.InboundMessage) Command {
	text := msg.Text
	if name, args := ParseCommand(text); name != "" {
		if kind, ok := c.router.Lookup(name); ok {
			return withDate(kind, args)
		}
	}

	kind, ok := c.keyword(text)
	if !ok {
		return Command{Kind: Unrecognized}
	}
	return withDate(kind, text)
}

func (c *Classifier) keyword(text string) (Kind, bool) {
	// a Caser keeps state, so each call folds with its own
	runes := []rune(cases.Fold().String(text))
	if len(runes) == 0 {
		return Unrecognized, false
	}

	best, found := Unrecognized, false
	for _, term := range c.matcher.MultiPatternSearch(runes, false) {
		if !startsWord(runes, term.Pos) || inHandle(runes, term.Pos) {
			continue
		}
		kind := c.kinds[string(term.Word)]
		if !found || c.rank[kind] < c.rank[best] {
			best, found = kind, true
		}
	}
	return best, found
}

func withDate(kind Kind, text string) Command {
	if kind == Unrecognized {
		return Command{Kind: Unrecognized}
	}
	raw, ok := dates.FindRaw(text)
	if !ok {
		return Command{Kind: Unrecognized}
	}
	return Command{Kind: kind, RawDate: raw}
}

func startsWord(runes []rune, pos int) bool {
	if pos == 0 {
		return true
	}
	prev := runes[pos-1]
	return !unicode.IsLetter(prev) && !unicode.IsDigit(prev) && prev != '_'
}

// inHandle reports whether pos falls inside an @mention
func inHandle(runes []rune, pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		switch r := runes[i]; {
		case r == '@':
			return true
		case unicode.IsSpace(r):
			return false
		}
	}
	return false
}
