package entities

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"eventboard/internal/domain"
)

const (
	MinNameLength        = 4
	MaxNameLength        = 199
	MaxDescriptionLength = 1600
)

// ImagePattern accepte les liens http(s) se terminant par une extension d'image.
var ImagePattern = regexp.MustCompile(`(?i)^https?://[^"'\s]*\.(?:png|jpg|jpeg|gif)$`)

// Event is one scheduled gathering rendered as a channel post.
type Event struct {
	ID            int64
	GuildID       string
	ChannelID     string
	Creator       string
	CreateTime    time.Time
	Name          string
	Description   string // empty = no description
	MaxAttendees  int    // 0 = unlimited
	EventStart    time.Time
	PostID        string
	Attending     MemberList
	Declined      MemberList
	Maybe         MemberList
	Image         string
	ReminderSent  bool
	MentionTarget string // role id, or the guild id for @everyone
}

// EventParams holds the user-supplied fields of a new event.
type EventParams struct {
	ID            int64
	GuildID       string
	ChannelID     string
	Creator       string
	CreateTime    time.Time
	Name          string
	Description   string
	MaxAttendees  int
	EventStart    time.Time
	Image         string
	MentionTarget string
}

// NewEvent validates p and returns an event with empty attendance lists.
func NewEvent(p EventParams) (*Event, error) {
	if strings.TrimSpace(p.Creator) == "" {
		return nil, domain.ErrMissingCreator
	}
	if err := ValidateName(p.Name); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(p.Description) > MaxDescriptionLength {
		return nil, domain.ErrDescTooLong
	}
	if p.MaxAttendees < 0 {
		return nil, domain.ErrInvalidCapacity
	}
	if p.EventStart.IsZero() {
		return nil, domain.ErrInvalidDate
	}
	if p.Image != "" && !ImagePattern.MatchString(p.Image) {
		return nil, domain.ErrInvalidImage
	}
	return &Event{
		ID:            p.ID,
		GuildID:       p.GuildID,
		ChannelID:     p.ChannelID,
		Creator:       p.Creator,
		CreateTime:    p.CreateTime,
		Name:          p.Name,
		Description:   p.Description,
		MaxAttendees:  p.MaxAttendees,
		EventStart:    p.EventStart,
		Attending:     MemberList{},
		Declined:      MemberList{},
		Maybe:         MemberList{},
		Image:         p.Image,
		MentionTarget: p.MentionTarget,
	}, nil
}

func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < MinNameLength {
		return domain.ErrTitleTooShort
	}
	if n > MaxNameLength {
		return domain.ErrTitleTooLong
	}
	return nil
}

// StatusOf returns the first list holding member.
func (e *Event) StatusOf(member string) domain.Status {
	for _, s := range domain.Listed {
		if e.list(s).Has(member) {
			return s
		}
	}
	return domain.StatusNone
}

// Join puts member in the list for status and takes them out of the others.
// It returns the statuses the member was cleared from; changed is false when
// the member already held status. Capacity is only checked on admission.
func (e *Event) Join(member string, status domain.Status) (cleared []domain.Status, changed bool, err error) {
	if status == domain.StatusNone {
		return nil, false, nil
	}
	current := e.StatusOf(member)
	next, _ := domain.Transition(current, status)
	if next == current && e.holdsOnly(member, status) {
		return nil, false, nil
	}
	if status == domain.StatusAttending && current != domain.StatusAttending && e.IsFull() {
		return nil, false, domain.ErrCapacityExceeded
	}
	l, _ := e.list(status).Add(member)
	e.setList(status, l)
	// Every other list is scrubbed, not only the one Transition names, so
	// records loaded with a member listed twice heal on the next mutation.
	for _, s := range domain.Listed {
		if s == status {
			continue
		}
		if l, removed := e.list(s).Remove(member); removed {
			e.setList(s, l)
			cleared = append(cleared, s)
		}
	}
	return cleared, true, nil
}

// Leave removes member from the list for status; false if they were not in it.
func (e *Event) Leave(member string, status domain.Status) bool {
	if status == domain.StatusNone {
		return false
	}
	l, removed := e.list(status).Remove(member)
	if removed {
		e.setList(status, l)
	}
	return removed
}

// Prune removes member from every list and reports whether anything changed.
func (e *Event) Prune(member string) bool {
	changed := false
	for _, s := range domain.Listed {
		if e.Leave(member, s) {
			changed = true
		}
	}
	return changed
}

// Members returns every member id present in any list, without duplicates.
func (e *Event) Members() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range domain.Listed {
		for _, m := range e.list(s) {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

func (e *Event) IsFull() bool {
	return e.MaxAttendees > 0 && len(e.Attending) >= e.MaxAttendees
}

// HasStarted reports whether the start time is before now.
func (e *Event) HasStarted(now time.Time) bool {
	return e.EventStart.Before(now)
}

// Clone returns a deep copy; the cache never hands out its own records.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	c.Attending = e.Attending.Clone()
	c.Declined = e.Declined.Clone()
	c.Maybe = e.Maybe.Clone()
	return &c
}

func (e *Event) holdsOnly(member string, status domain.Status) bool {
	for _, s := range domain.Listed {
		if s != status && e.list(s).Has(member) {
			return false
		}
	}
	return e.list(status).Has(member)
}

func (e *Event) list(s domain.Status) MemberList {
	switch s {
	case domain.StatusAttending:
		return e.Attending
	case domain.StatusDeclined:
		return e.Declined
	case domain.StatusMaybe:
		return e.Maybe
	}
	return nil
}

func (e *Event) setList(s domain.Status, l MemberList) {
	switch s {
	case domain.StatusAttending:
		e.Attending = l
	case domain.StatusDeclined:
		e.Declined = l
	case domain.StatusMaybe:
		e.Maybe = l
	}
}
