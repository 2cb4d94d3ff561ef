package commands

import (
	"strings"
)

// Router maps slash commands (/spotify 2009-06-25, /birthday@chartbot 1990-01-01) to command kinds
type Router struct {
	commands map[string]Kind
}

// NewRouter creates a router with the built-in commands registered
func NewRouter() *Router {
	r := &Router{
		commands: make(map[string]Kind),
	}
	r.Register("spotify", SongLookup)
	r.Register("song", SongLookup)
	r.Register("birthday", BirthdayRegister)
	r.Register("start", Unrecognized)
	r.Register("help", Unrecognized)
	return r
}

// Register adds a command name for a kind
func (r *Router) Register(name string, kind Kind) {
	r.commands[strings.ToLower(name)] = kind
}

// Lookup returns the kind registered for a command name
func (r *Router) Lookup(name string) (Kind, bool) {
	// Normalize: remove leading slash, convert underscores to hyphens
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, "_", "-")
	kind, ok := r.commands[strings.ToLower(name)]
	return kind, ok
}

// ParseCommand extracts the command name and args from a message.
// A trailing @botname on the command is dropped. Returns empty string if not a command.
func ParseCommand(text string) (name string, args string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	parts := strings.SplitN(text, " ", 2)
	name = strings.TrimPrefix(parts[0], "/")
	name, _, _ = strings.Cut(name, "@")
	name = strings.ReplaceAll(name, "_", "-")
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}
	return name, args
}
