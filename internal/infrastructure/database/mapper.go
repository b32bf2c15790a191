package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"eventboard/internal/domain/entities"
)

// eventRecord is the JSON shape of one event inside the guild's events document.
type eventRecord struct {
	ID            int64      `json:"id"`
	Creator       snowflake  `json:"creator"`
	CreateTime    int64      `json:"create_time"`
	Name          string     `json:"event_name"`
	Description   string     `json:"description"`
	MaxAttendees  int        `json:"max_attendees"`
	EventStart    int64      `json:"event_start"`
	PostID        snowflake  `json:"post_id"`
	ChannelID     snowflake  `json:"channel_id"`
	Attending     snowflakes `json:"attending"`
	Declined      snowflakes `json:"declined"`
	Maybe         snowflakes `json:"maybe"`
	Image         string     `json:"image"`
	ReminderSent  bool       `json:"reminder_sent"`
	MentionTarget snowflake  `json:"mention_target"`
}

// snowflake accepts an id written either as a JSON string or a number.
type snowflake string

func (m *snowflake) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = snowflake(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("snowflake %s: %w", b, err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("snowflake %s: %w", b, err)
	}
	*m = snowflake(n.String())
	return nil
}

type snowflakes []snowflake

func (l snowflakes) toDomain() entities.MemberList {
	out := make(entities.MemberList, 0, len(l))
	for _, id := range l {
		out, _ = out.Add(string(id))
	}
	return out
}

func fromMembers(l entities.MemberList) snowflakes {
	out := make(snowflakes, len(l))
	for i, id := range l {
		out[i] = snowflake(id)
	}
	return out
}

func unixOrZero(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

func unixOf(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func eventToDomain(guildID, key string, r eventRecord) *entities.Event {
	postID := string(r.PostID)
	if postID == "" {
		postID = key
	}
	return &entities.Event{
		ID:            r.ID,
		GuildID:       guildID,
		ChannelID:     string(r.ChannelID),
		Creator:       string(r.Creator),
		CreateTime:    unixOrZero(r.CreateTime),
		Name:          r.Name,
		Description:   r.Description,
		MaxAttendees:  r.MaxAttendees,
		EventStart:    unixOrZero(r.EventStart),
		PostID:        postID,
		Attending:     r.Attending.toDomain(),
		Declined:      r.Declined.toDomain(),
		Maybe:         r.Maybe.toDomain(),
		Image:         r.Image,
		ReminderSent:  r.ReminderSent,
		MentionTarget: string(r.MentionTarget),
	}
}

func eventFromDomain(e *entities.Event) eventRecord {
	return eventRecord{
		ID:            e.ID,
		Creator:       snowflake(e.Creator),
		CreateTime:    unixOf(e.CreateTime),
		Name:          e.Name,
		Description:   e.Description,
		MaxAttendees:  e.MaxAttendees,
		EventStart:    unixOf(e.EventStart),
		PostID:        snowflake(e.PostID),
		ChannelID:     snowflake(e.ChannelID),
		Attending:     fromMembers(e.Attending),
		Declined:      fromMembers(e.Declined),
		Maybe:         fromMembers(e.Maybe),
		Image:         e.Image,
		ReminderSent:  e.ReminderSent,
		MentionTarget: snowflake(e.MentionTarget),
	}
}

// decodeEvents turns the stored events document into domain events keyed by post id.
func decodeEvents(guildID string, raw []byte) (map[string]*entities.Event, error) {
	events := make(map[string]*entities.Event)
	if len(bytes.TrimSpace(raw)) == 0 {
		return events, nil
	}
	var doc map[string]eventRecord
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	for key, r := range doc {
		e := eventToDomain(guildID, key, r)
		events[e.PostID] = e
	}
	return events, nil
}

func encodeEvents(events map[string]*entities.Event) ([]byte, error) {
	doc := make(map[string]eventRecord, len(events))
	for key, e := range events {
		doc[key] = eventFromDomain(e)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode events: %w", err)
	}
	return b, nil
}
