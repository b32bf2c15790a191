package output

import (
	"context"
	"time"
)

// Tone selects how a private message is presented.
type Tone int

const (
	ToneQuestion Tone = iota
	ToneFailure
	ToneInfo
)

// Message is a private message to a single user.
type Message struct {
	Title string
	Body  string
	Tone  Tone
}

// Conversation talks privately with one user at a time.
type Conversation interface {
	// Ask sends msg and waits up to timeout for the user's next reply.
	// It returns domain.ErrInputTimeout when nothing arrives and
	// domain.ErrConversationBusy when the user already has a pending question.
	Ask(ctx context.Context, userID string, msg Message, timeout time.Duration) (string, error)
	Tell(ctx context.Context, userID string, msg Message) error
}
