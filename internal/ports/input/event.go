package input

import (
	"context"

	"eventboard/internal/domain"
	"eventboard/internal/domain/entities"
)

// CreateRequest is an "eventboard create" command issued in a guild channel.
type CreateRequest struct {
	GuildID   string
	ChannelID string
	AuthorID  string
}

// DeleteRequest is a trash reaction on an event post.
type DeleteRequest struct {
	GuildID   string
	ChannelID string
	PostID    string
	MemberID  string
	Emoji     string // glyph as received, used to revert the reaction
}

type LifecycleUseCase interface {
	CreateEvent(ctx context.Context, req CreateRequest) (*entities.Event, error)
	RequestDelete(ctx context.Context, req DeleteRequest) error
}

// Reaction is a reaction added to or removed from a post.
type Reaction struct {
	GuildID   string
	ChannelID string
	PostID    string
	MemberID  string
	Emoji     string
	Kind      domain.ReactionKind
}

type RSVPUseCase interface {
	ReactionAdded(ctx context.Context, r Reaction) error
	ReactionRemoved(ctx context.Context, r Reaction) error
}
