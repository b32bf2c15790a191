package domain

// Status is the RSVP state of a member for one event.
type Status int

const (
	StatusNone Status = iota
	StatusAttending
	StatusDeclined
	StatusMaybe
)

// Listed are the statuses backed by an attendance list, in display order.
var Listed = []Status{StatusAttending, StatusDeclined, StatusMaybe}

func (s Status) String() string {
	switch s {
	case StatusAttending:
		return "attending"
	case StatusDeclined:
		return "declined"
	case StatusMaybe:
		return "maybe"
	default:
		return "none"
	}
}

// Transition computes the status a member ends up with when they request
// requested while holding current, and the lists they must leave.
// A member holds at most one status, so at most one list is ever cleared.
func Transition(current, requested Status) (next Status, cleared []Status) {
	if requested == current {
		return current, nil
	}
	if current != StatusNone {
		cleared = []Status{current}
	}
	return requested, cleared
}

// ReactionKind is what a reaction glyph means on an event post.
type ReactionKind int

const (
	ReactionUnknown ReactionKind = iota
	ReactionAttend
	ReactionDecline
	ReactionMaybe
	ReactionTrash
)

// Reaction glyphs attached to every event post.
const (
	GlyphAttend  = "✅"
	GlyphDecline = "❌"
	GlyphMaybe   = "❔"
	GlyphTrash   = "🗑️"
)

// PostGlyphs is the order in which reactions are attached to a new post.
var PostGlyphs = []string{GlyphAttend, GlyphDecline, GlyphMaybe, GlyphTrash}

// KindOf maps an emoji name to its meaning.
func KindOf(emoji string) ReactionKind {
	switch emoji {
	case GlyphAttend:
		return ReactionAttend
	case GlyphDecline:
		return ReactionDecline
	case GlyphMaybe:
		return ReactionMaybe
	case GlyphTrash, "🗑":
		return ReactionTrash
	default:
		return ReactionUnknown
	}
}

// Status returns the RSVP status a reaction requests, StatusNone for trash or unknown.
func (k ReactionKind) Status() Status {
	switch k {
	case ReactionAttend:
		return StatusAttending
	case ReactionDecline:
		return StatusDeclined
	case ReactionMaybe:
		return StatusMaybe
	default:
		return StatusNone
	}
}

// GlyphFor returns the reaction glyph representing a status on the post.
func GlyphFor(s Status) string {
	switch s {
	case StatusAttending:
		return GlyphAttend
	case StatusDeclined:
		return GlyphDecline
	case StatusMaybe:
		return GlyphMaybe
	default:
		return ""
	}
}
