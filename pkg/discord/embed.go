package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"eventboard/internal/domain"
	"eventboard/internal/domain/entities"
)

const (
	EmbedColor = 0xffff00

	// Discord rejects field values longer than this.
	maxFieldValue = 1024
	emptyRoster   = "-"
)

// EmbedLabels are the localized strings of an event post.
type EmbedLabels struct {
	Time           string
	Accepted       string
	Declined       string
	Tentative      string
	CreatedBy      string // already rendered with the creator's name
	ReminderPrefix string
}

// BuildEventEmbed renders the post of an event: title, description, start
// time and the three rosters.
func BuildEventEmbed(event *entities.Event, labels EmbedLabels, loc *time.Location) *discordgo.MessageEmbed {
	accepted := domain.GlyphAttend + " " + labels.Accepted
	if event.MaxAttendees > 0 {
		accepted += fmt.Sprintf(" (%d/%d)", len(event.Attending), event.MaxAttendees)
	}
	emb := &discordgo.MessageEmbed{
		Title:       event.Name,
		Description: event.Description,
		Color:       EmbedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: labels.Time, Value: orDash(FormatEventDateTime(event.EventStart, loc)), Inline: false},
			{Name: accepted, Value: FormatRoster(event.Attending), Inline: true},
			{Name: domain.GlyphDecline + " " + labels.Declined, Value: FormatRoster(event.Declined), Inline: true},
			{Name: domain.GlyphMaybe + " " + labels.Tentative, Value: FormatRoster(event.Maybe), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: labels.CreatedBy},
	}
	if !event.CreateTime.IsZero() {
		emb.Timestamp = event.CreateTime.UTC().Format(time.RFC3339)
	}
	if event.Image != "" {
		emb.Image = &discordgo.MessageEmbedImage{URL: event.Image}
	}
	return emb
}

// BuildReminderEmbed is the post embed with the title prefixed, sent by DM.
func BuildReminderEmbed(event *entities.Event, labels EmbedLabels, loc *time.Location) *discordgo.MessageEmbed {
	emb := BuildEventEmbed(event, labels, loc)
	emb.Title = labels.ReminderPrefix + emb.Title
	return emb
}

// FormatRoster lists members as mentions, one per line, cut to fit a field.
func FormatRoster(members entities.MemberList) string {
	if len(members) == 0 {
		return emptyRoster
	}
	var b strings.Builder
	for i, id := range members {
		line := "<@" + id + ">"
		if i > 0 {
			line = "\n" + line
		}
		if b.Len()+len(line) > maxFieldValue {
			more := fmt.Sprintf("\n+%d", len(members)-i)
			if b.Len()+len(more) <= maxFieldValue {
				b.WriteString(more)
			}
			break
		}
		b.WriteString(line)
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return emptyRoster
	}
	return s
}
