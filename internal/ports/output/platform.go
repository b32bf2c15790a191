package output

import (
	"context"
	"time"

	"eventboard/internal/domain/entities"
)

// PostState is what the platform reports about an existing event post.
type PostState struct {
	HasEmbed bool
}

// Platform is the subset of chat operations the engine needs. Implementations
// render events themselves; callers only ever pass copies of cached records.
type Platform interface {
	// PublishEvent sends a new post for event in channelID and returns its id.
	PublishEvent(ctx context.Context, channelID string, event *entities.Event) (string, error)
	RenderEvent(ctx context.Context, event *entities.Event) error
	// InspectPost returns domain.ErrPostNotFound when the post is gone.
	InspectPost(ctx context.Context, channelID, postID string) (PostState, error)
	DeletePost(ctx context.Context, channelID, postID string) error
	AttachReactions(ctx context.Context, channelID, postID string) error
	RemoveReaction(ctx context.Context, channelID, postID, glyph, userID string) error
	SendReminder(ctx context.Context, userID string, event *entities.Event) error
	// SendTransient posts content in channelID and deletes it after ttl.
	SendTransient(ctx context.Context, channelID, content string, ttl time.Duration) error
}

// Members answers guild membership and permission questions.
type Members interface {
	IsMember(ctx context.Context, guildID, userID string) (bool, error)
	// IsModerator is true for the owner and members allowed to manage the guild or its messages.
	IsModerator(ctx context.Context, guildID, userID string) (bool, error)
}
