// Package intent turns free-text booking requests into a structured
// {event, tickets, intent} guess. A remote chat-completion model is tried
// first; a rule-based parser covers for it when the remote call is
// unavailable or returns something unusable.
//
// Results are best-effort and untrusted. Callers must validate them before
// acting on them.
package intent

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Kind is what the user appears to want.
type Kind string

const (
	Book  Kind = "book"
	Show  Kind = "show"
	Greet Kind = "greet"
)

func (k Kind) valid() bool {
	return k == Book || k == Show || k == Greet
}

var (
	// ErrEmptyText is returned for blank input.
	ErrEmptyText = errors.New("missing text")
	// ErrUnparseable is returned when the text asks to book but no event
	// name can be found in it.
	ErrUnparseable = errors.New("could not understand request")
)

// Result is a structured guess. Event is empty when none was recognised.
type Result struct {
	Event   string
	Tickets int
	Intent  Kind
}

// Completer asks a remote model to parse text.
type Completer interface {
	Complete(ctx context.Context, text string) (Result, error)
}

// Resolver chains a remote Completer with the rule-based fallback.
type Resolver struct {
	remote Completer
	log    *zap.Logger
}

// NewResolver constructs a Resolver. A nil remote leaves only the rule
// parser.
func NewResolver(remote Completer, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{remote: remote, log: log}
}

// Resolve parses text into a Result.
func (r *Resolver) Resolve(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyText
	}

	if r.remote != nil {
		res, err := r.remote.Complete(ctx, text)
		if err == nil {
			// The model understood the intent but dropped the event name;
			// the rules usually still find it after "for".
			if res.Intent == Book && res.Event == "" {
				res.Event = Fallback(text).Event
			}
			return res, nil
		}
		r.log.Warn("remote intent resolution failed, using rule parser", zap.Error(err))
	}

	res := Fallback(text)
	if res.Intent == Book && res.Event == "" {
		return Result{}, ErrUnparseable
	}
	return res, nil
}
