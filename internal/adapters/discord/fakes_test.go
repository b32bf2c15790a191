package discord

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"

	"eventboard/internal/domain/entities"
)

// fakeAPI records the REST calls the adapter makes.
type fakeAPI struct {
	mu       sync.Mutex
	sent     []*discordgo.MessageSend
	texts    []string
	embeds   []*discordgo.MessageEmbed
	edits    []*discordgo.MessageEdit
	deleted  []string
	messages map[string]*discordgo.Message
	members  map[string]*discordgo.Member
	guild    *discordgo.Guild
	dmErr    error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		messages: make(map[string]*discordgo.Message),
		members:  make(map[string]*discordgo.Member),
		guild:    &discordgo.Guild{ID: "g1"},
	}
}

func unknown(code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusNotFound},
		Message:  &discordgo.APIErrorMessage{Code: code},
	}
}

func (f *fakeAPI) textsSent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

func (f *fakeAPI) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[messageID]
	if !ok {
		return nil, unknown(discordgo.ErrCodeUnknownMessage)
	}
	return m, nil
}

func (f *fakeAPI) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, content)
	return &discordgo.Message{ID: fmt.Sprintf("t%d", len(f.texts)), ChannelID: channelID}, nil
}

func (f *fakeAPI) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return &discordgo.Message{ID: fmt.Sprintf("m%d", len(f.sent)), ChannelID: channelID}, nil
}

func (f *fakeAPI) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, embed)
	return &discordgo.Message{ID: fmt.Sprintf("e%d", len(f.embeds)), ChannelID: channelID}, nil
}

func (f *fakeAPI) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.messages[m.ID]; !ok {
		return nil, unknown(discordgo.ErrCodeUnknownMessage)
	}
	f.edits = append(f.edits, m)
	return &discordgo.Message{ID: m.ID}, nil
}

func (f *fakeAPI) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	delete(f.messages, messageID)
	return nil
}

func (f *fakeAPI) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	return nil
}

func (f *fakeAPI) MessageReactionRemove(channelID, messageID, emojiID, userID string, _ ...discordgo.RequestOption) error {
	return nil
}

func (f *fakeAPI) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.dmErr != nil {
		return nil, f.dmErr
	}
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeAPI) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[userID]
	if !ok {
		return nil, unknown(discordgo.ErrCodeUnknownMember)
	}
	return m, nil
}

func (f *fakeAPI) Guild(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	return f.guild, nil
}

// fakeSettings is a SettingsUseCase keeping the last call.
type fakeSettings struct {
	mu       sync.Mutex
	channel  string
	calls    []string
	err      error
	autoDel  int
	reminder int
	roles    []string
	all      bool
}

func (s *fakeSettings) record(call string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	return s.err
}

func (s *fakeSettings) Settings(ctx context.Context, guildID string) (*entities.GuildSettings, error) {
	g := entities.NewGuildSettings(guildID)
	g.EventChannelID = s.channel
	g.AutoDeleteMinutes = s.autoDel
	g.ReminderMinutes = s.reminder
	g.MentionRoles = s.roles
	g.MentionAll = s.all
	return g, nil
}

func (s *fakeSettings) IsEventChannel(ctx context.Context, guildID, channelID string) bool {
	return s.channel != "" && s.channel == channelID
}

func (s *fakeSettings) SetEventChannel(ctx context.Context, guildID, memberID, channelID string) error {
	return s.record("channel " + channelID)
}

func (s *fakeSettings) SetAutoDelete(ctx context.Context, guildID, memberID string, minutes int) error {
	return s.record(fmt.Sprintf("autodelete %d", minutes))
}

func (s *fakeSettings) SetReminder(ctx context.Context, guildID, memberID string, minutes int) error {
	return s.record(fmt.Sprintf("reminder %d", minutes))
}

func (s *fakeSettings) AddMentionRole(ctx context.Context, guildID, memberID, roleID string) error {
	return s.record("add " + roleID)
}

func (s *fakeSettings) RemoveMentionRole(ctx context.Context, guildID, memberID, roleID string) error {
	return s.record("remove " + roleID)
}

func (s *fakeSettings) SetMentionAll(ctx context.Context, guildID, memberID string, enabled bool) error {
	return s.record(fmt.Sprintf("mentionall %t", enabled))
}
