package application

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"eventboard/internal/domain"
	"eventboard/internal/domain/entities"
	"eventboard/internal/ports/output"
)

// Délais d'attente des étapes de l'assistant.
const (
	shortAnswerTimeout  = 300 * time.Second
	descriptionTimeout  = 600 * time.Second
	confirmationTimeout = 300 * time.Second
)

// noneAnswer skips an optional wizard step.
const noneAnswer = "none"

// startPattern: YYYY-MM-DD HH:MM, leading zeros optional on month, day, hour and minute.
var startPattern = regexp.MustCompile(`^([0-9]{4})-(0?[1-9]|1[012])-(0?[1-9]|[12][0-9]|3[01]) (0?[0-9]|1[0-9]|2[0-3]):(0?[0-9]|[1-5][0-9])$`)

type wizardAnswers struct {
	name          string
	description   string
	maxAttendees  int
	start         time.Time
	mentionTarget string
	image         string
}

// runWizard asks the creator every field of a new event, one DM at a time.
// The first failing step ends the whole dialogue.
func (s *LifecycleService) runWizard(ctx context.Context, guildID, userID string, settings *entities.GuildSettings) (wizardAnswers, error) {
	var a wizardAnswers

	answer, err := s.ask(ctx, userID, "wizard.title", nil, shortAnswerTimeout)
	if err != nil {
		return a, err
	}
	if a.name, err = parseTitle(answer); err != nil {
		return a, err
	}

	answer, err = s.ask(ctx, userID, "wizard.description", nil, descriptionTimeout)
	if err != nil {
		return a, err
	}
	a.description = parseDescription(answer)

	answer, err = s.ask(ctx, userID, "wizard.capacity", nil, shortAnswerTimeout)
	if err != nil {
		return a, err
	}
	if a.maxAttendees, err = parseCapacity(answer); err != nil {
		return a, err
	}

	answer, err = s.ask(ctx, userID, "wizard.start", nil, shortAnswerTimeout)
	if err != nil {
		return a, err
	}
	if a.start, err = parseStart(answer, s.now(), s.location()); err != nil {
		return a, err
	}

	if settings.HasMentionTargets() {
		options := mentionOptions(guildID, settings)
		answer, err = s.ask(ctx, userID, "wizard.mention", map[string]any{"Options": formatMentionOptions(guildID, options)}, shortAnswerTimeout)
		if err != nil {
			return a, err
		}
		if a.mentionTarget, err = parseMention(answer, options); err != nil {
			return a, err
		}
	}

	answer, err = s.ask(ctx, userID, "wizard.image", nil, shortAnswerTimeout)
	if err != nil {
		return a, err
	}
	if a.image, err = parseImage(answer); err != nil {
		return a, err
	}
	return a, nil
}

func (s *LifecycleService) ask(ctx context.Context, userID, step string, data map[string]any, timeout time.Duration) (string, error) {
	return s.Conversation.Ask(ctx, userID, output.Message{
		Title: s.t(step+".prompt", data),
		Body:  s.t(step+".hint", data),
		Tone:  output.ToneQuestion,
	}, timeout)
}

func parseTitle(answer string) (string, error) {
	name := truncateRunes(strings.TrimSpace(answer), entities.MaxNameLength)
	if err := entities.ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}

func parseDescription(answer string) string {
	desc := strings.TrimSpace(answer)
	if strings.EqualFold(desc, noneAnswer) {
		return ""
	}
	return truncateRunes(desc, entities.MaxDescriptionLength)
}

func parseCapacity(answer string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || n < 0 {
		return 0, domain.ErrInvalidCapacity
	}
	return n, nil
}

// parseStart reads a start date in loc and rejects dates before now.
func parseStart(answer string, now time.Time, loc *time.Location) (time.Time, error) {
	m := startPattern.FindStringSubmatch(strings.TrimSpace(answer))
	if m == nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	var parts [5]int
	for i := range parts {
		parts[i], _ = strconv.Atoi(m[i+1])
	}
	start := time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], 0, 0, loc)
	// time.Date normalise le 31 février en mars : on refuse.
	if start.Day() != parts[2] || int(start.Month()) != parts[1] {
		return time.Time{}, domain.ErrInvalidDate
	}
	if start.Before(now) {
		return time.Time{}, domain.ErrDateTimeInPast
	}
	return start, nil
}

func parseImage(answer string) (string, error) {
	url := strings.TrimSpace(answer)
	if url == "" || strings.EqualFold(url, noneAnswer) {
		return "", nil
	}
	if !entities.ImagePattern.MatchString(url) {
		return "", domain.ErrInvalidImage
	}
	return url, nil
}

// mentionOptions lists the selectable mention targets; the guild id stands for @everyone.
func mentionOptions(guildID string, settings *entities.GuildSettings) []string {
	options := append([]string{}, settings.MentionRoles...)
	if settings.MentionAll {
		options = append(options, guildID)
	}
	return options
}

func formatMentionOptions(guildID string, options []string) string {
	var b strings.Builder
	for i, id := range options {
		fmt.Fprintf(&b, "`%d` %s\n", i+1, MentionText(guildID, id))
	}
	return b.String()
}

// parseMention accepts "none", a 1-based option index, or the role id itself.
func parseMention(answer string, options []string) (string, error) {
	answer = strings.TrimSpace(answer)
	if strings.EqualFold(answer, noneAnswer) {
		return "", nil
	}
	answer = strings.TrimSuffix(strings.TrimPrefix(answer, "<@&"), ">")
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], nil
	}
	for _, id := range options {
		if id == answer {
			return id, nil
		}
	}
	return "", domain.ErrInvalidRole
}

// MentionText renders a mention target as message text.
func MentionText(guildID, target string) string {
	switch target {
	case "":
		return ""
	case guildID:
		return "@everyone"
	default:
		return "<@&" + target + ">"
	}
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}
