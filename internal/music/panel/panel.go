// Package panel renders a controller's state into the interactive
// control-panel message and enforces who may press its buttons.
package panel

import (
	"errors"
	"log"
	"math"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/music/controller"
)

var (
	ErrNotInVoiceChannel = errors.New("you're not in the voice channel")
	ErrPanelLocked       = errors.New("the player is locked; only moderators and the DJ can use it")
)

// Panel owns the single tracked control-panel message for one controller.
// It implements controller.Menu.
type Panel struct {
	dg   *discordgo.Session
	ctrl *controller.Controller

	mu        sync.Mutex
	channelID string
	messageID string
}

var _ controller.Menu = (*Panel)(nil)

func New(dg *discordgo.Session, ctrl *controller.Controller, channelID string) *Panel {
	return &Panel{dg: dg, ctrl: ctrl, channelID: channelID}
}

// Update re-renders the panel, posting the message on first call and editing
// afterwards. A message deleted out from under us is recreated.
func (p *Panel) Update() {
	snap := p.ctrl.Snapshot()
	embed := RenderEmbed(snap)
	components := RenderComponents(snap)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.messageID != "" {
		_, err := p.dg.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         p.messageID,
			Channel:    p.channelID,
			Embeds:     &[]*discordgo.MessageEmbed{embed},
			Components: &components,
		})
		if err == nil {
			return
		}
		log.Printf("[Panel] Edit failed for guild %s, re-posting: %v", snap.GuildID, err)
		p.messageID = ""
	}

	msg, err := p.dg.ChannelMessageSendComplex(p.channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		log.Printf("[Panel] Failed to post panel for guild %s: %v", snap.GuildID, err)
		return
	}
	p.messageID = msg.ID
}

// Delete removes the panel message, tolerating it being already gone.
func (p *Panel) Delete() {
	p.mu.Lock()
	messageID := p.messageID
	p.messageID = ""
	p.mu.Unlock()

	if messageID == "" {
		return
	}
	if err := p.dg.ChannelMessageDelete(p.channelID, messageID); err != nil {
		log.Printf("[Panel] Failed to delete panel message: %v", err)
	}
}

// ChannelID returns the text channel the panel lives in.
func (p *Panel) ChannelID() string {
	return p.channelID
}

// MessageID returns the tracked message, empty when none is posted.
func (p *Panel) MessageID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messageID
}

// Authorize decides whether a user may operate the panel: they must share the
// player's voice channel, and a locked panel additionally requires the DJ or
// a moderator.
func Authorize(snap controller.Snapshot, userChannelID, playerChannelID, userID string, canModerate bool) error {
	if userChannelID == "" || userChannelID != playerChannelID {
		return ErrNotInVoiceChannel
	}
	if snap.Locked && userID != snap.DJUserID && !canModerate {
		return ErrPanelLocked
	}
	return nil
}

// NextVolumeStep computes the next volume for the up/down buttons: 0.05
// increments on the coarse range, 0.01 near the floor.
func NextVolumeStep(v float64, up bool) float64 {
	if up {
		if v >= 0.05 {
			return roundToBase(v+0.05, 0.05)
		}
		return roundToBase(v+0.01, 0.01)
	}
	if v > 0.05 {
		return roundToBase(v-0.05, 0.05)
	}
	return roundToBase(v-0.01, 0.01)
}

func roundToBase(v, base float64) float64 {
	return math.Round(math.Round(v/base)*base*100) / 100
}
