package entities

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventboard/internal/domain"
)

func newTestEvent(t *testing.T, max int) *Event {
	t.Helper()
	e, err := NewEvent(EventParams{
		ID:           1,
		GuildID:      "g1",
		ChannelID:    "c1",
		Creator:      "u0",
		CreateTime:   time.Unix(1_700_000_000, 0),
		Name:         "Board games",
		MaxAttendees: max,
		EventStart:   time.Unix(1_800_000_000, 0),
	})
	require.NoError(t, err)
	return e
}

func TestNewEvent_Validation(t *testing.T) {
	base := EventParams{Creator: "u0", Name: "Picnic", EventStart: time.Unix(1_800_000_000, 0)}

	tests := []struct {
		name   string
		mutate func(*EventParams)
		want   error
	}{
		{"missing creator", func(p *EventParams) { p.Creator = " " }, domain.ErrMissingCreator},
		{"title too short", func(p *EventParams) { p.Name = "abc" }, domain.ErrTitleTooShort},
		{"title too long", func(p *EventParams) { p.Name = strings.Repeat("x", MaxNameLength+1) }, domain.ErrTitleTooLong},
		{"description too long", func(p *EventParams) { p.Description = strings.Repeat("é", MaxDescriptionLength+1) }, domain.ErrDescTooLong},
		{"negative capacity", func(p *EventParams) { p.MaxAttendees = -1 }, domain.ErrInvalidCapacity},
		{"no start", func(p *EventParams) { p.EventStart = time.Time{} }, domain.ErrInvalidDate},
		{"bad image", func(p *EventParams) { p.Image = "https://example.com/cat.webp" }, domain.ErrInvalidImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			_, err := NewEvent(p)
			require.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrValidationFailed)
		})
	}

	p := base
	p.Image = "https://example.com/cat.PNG"
	e, err := NewEvent(p)
	require.NoError(t, err)
	assert.Empty(t, e.Attending)
	assert.NotNil(t, e.Attending)
	assert.False(t, e.ReminderSent)
}

func TestJoin_MutualExclusion(t *testing.T) {
	e := newTestEvent(t, 0)
	sequence := []domain.Status{
		domain.StatusAttending, domain.StatusDeclined, domain.StatusMaybe,
		domain.StatusMaybe, domain.StatusAttending, domain.StatusDeclined,
	}
	for _, s := range sequence {
		_, _, err := e.Join("u1", s)
		require.NoError(t, err)

		count := 0
		for _, l := range []MemberList{e.Attending, e.Declined, e.Maybe} {
			if l.Has("u1") {
				count++
			}
		}
		assert.Equal(t, 1, count, "after %s", s)
		assert.Equal(t, s, e.StatusOf("u1"))
	}
}

func TestJoin_ReportsClearedList(t *testing.T) {
	e := newTestEvent(t, 0)
	_, changed, err := e.Join("u1", domain.StatusAttending)
	require.NoError(t, err)
	assert.True(t, changed)

	cleared, changed, err := e.Join("u1", domain.StatusDeclined)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []domain.Status{domain.StatusAttending}, cleared)
	assert.Empty(t, e.Attending)
	assert.Equal(t, MemberList{"u1"}, e.Declined)
}

func TestJoin_SameStatusIsNoop(t *testing.T) {
	e := newTestEvent(t, 0)
	_, _, err := e.Join("u1", domain.StatusMaybe)
	require.NoError(t, err)

	cleared, changed, err := e.Join("u1", domain.StatusMaybe)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, cleared)
	assert.Equal(t, MemberList{"u1"}, e.Maybe)
}

func TestJoin_HealsDuplicateMembership(t *testing.T) {
	e := newTestEvent(t, 0)
	e.Attending = MemberList{"u1"}
	e.Maybe = MemberList{"u1"}

	cleared, changed, err := e.Join("u1", domain.StatusAttending)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []domain.Status{domain.StatusMaybe}, cleared)
	assert.Empty(t, e.Maybe)
}

func TestJoin_Capacity(t *testing.T) {
	e := newTestEvent(t, 2)
	for _, m := range []string{"a", "b"} {
		_, _, err := e.Join(m, domain.StatusAttending)
		require.NoError(t, err)
	}

	_, _, err := e.Join("c", domain.StatusAttending)
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, MemberList{"a", "b"}, e.Attending)
	assert.Equal(t, domain.StatusNone, e.StatusOf("c"))

	// Declining or staying is still possible on a full event.
	_, changed, err := e.Join("a", domain.StatusAttending)
	require.NoError(t, err)
	assert.False(t, changed)
	_, _, err = e.Join("c", domain.StatusDeclined)
	require.NoError(t, err)
}

func TestLeave_Idempotent(t *testing.T) {
	e := newTestEvent(t, 0)
	_, _, err := e.Join("u1", domain.StatusAttending)
	require.NoError(t, err)

	assert.False(t, e.Leave("u1", domain.StatusDeclined))
	assert.True(t, e.Leave("u1", domain.StatusAttending))
	assert.False(t, e.Leave("u1", domain.StatusAttending))
	assert.Empty(t, e.Attending)
}

func TestPruneAndMembers(t *testing.T) {
	e := newTestEvent(t, 0)
	e.Attending = MemberList{"a", "b"}
	e.Declined = MemberList{"c"}
	e.Maybe = MemberList{"b"}

	assert.Equal(t, []string{"a", "b", "c"}, e.Members())
	assert.True(t, e.Prune("b"))
	assert.False(t, e.Prune("b"))
	assert.Equal(t, MemberList{"a"}, e.Attending)
	assert.Empty(t, e.Maybe)
}

func TestClone_IsDeep(t *testing.T) {
	e := newTestEvent(t, 0)
	e.Attending = MemberList{"a"}
	c := e.Clone()
	c.Attending[0] = "z"
	c.Name = "Changed"
	assert.Equal(t, MemberList{"a"}, e.Attending)
	assert.Equal(t, "Board games", e.Name)
}
