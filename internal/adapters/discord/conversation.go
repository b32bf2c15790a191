package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"eventboard/internal/domain"
	"eventboard/internal/ports/output"
)

var _ output.Conversation = (*Prompter)(nil)

var toneColors = map[output.Tone]int{
	output.ToneQuestion: 0xffff00,
	output.ToneFailure:  0xff0000,
	output.ToneInfo:     0x0000ff,
}

// Prompter runs private question/answer exchanges. Replies arrive through
// Deliver, called by the message handler for every direct message.
type Prompter struct {
	api api

	mu      sync.Mutex
	waiting map[string]chan string
}

func NewPrompter(a api) *Prompter {
	return &Prompter{api: a, waiting: make(map[string]chan string)}
}

func (p *Prompter) Ask(ctx context.Context, userID string, msg output.Message, timeout time.Duration) (string, error) {
	replies, err := p.wait(userID)
	if err != nil {
		return "", err
	}
	defer p.release(userID)

	if err := p.Tell(ctx, userID, msg); err != nil {
		return "", err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case answer := <-replies:
		return answer, nil
	case <-timer.C:
		return "", domain.ErrInputTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *Prompter) Tell(ctx context.Context, userID string, msg output.Message) error {
	ch, err := p.api.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open DM: %w", dmError(err))
	}
	emb := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Body,
		Color:       toneColors[msg.Tone],
	}
	if _, err := p.api.ChannelMessageSendEmbed(ch.ID, emb, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send DM: %w", dmError(err))
	}
	return nil
}

// Deliver hands a direct message to the pending question of userID, if any.
func (p *Prompter) Deliver(userID, content string) bool {
	p.mu.Lock()
	replies, ok := p.waiting[userID]
	p.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case replies <- content:
		return true
	default:
		return false
	}
}

func (p *Prompter) wait(userID string) (chan string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.waiting[userID]; busy {
		return nil, domain.ErrConversationBusy
	}
	replies := make(chan string, 1)
	p.waiting[userID] = replies
	return replies, nil
}

func (p *Prompter) release(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.waiting, userID)
}
