// Package music implements the playback slash commands and the control-panel
// interaction handler.
package music

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
	"github.com/Maselkov/Toothy/internal/music/controller"
	"github.com/Maselkov/Toothy/internal/music/panel"
	"github.com/Maselkov/Toothy/internal/music/queue"
	"github.com/Maselkov/Toothy/internal/music/track"
)

const category = "🎵 Music"

// activeController returns the running controller for the interaction's
// guild, or replies that nothing is playing.
func activeController(ctx *core.SlashContext) (*controller.Controller, bool) {
	ctrl, ok := ctx.Deps.Players.Get(ctx.Event.GuildID)
	if !ok {
		_ = core.Respond(ctx.Session, ctx.Event, "Currently not playing.", true)
		return nil, false
	}
	return ctrl, true
}

// connectAndEnqueue joins the caller's voice channel, spins the controller up
// if needed, binds a fresh control panel, and queues the tracks. The reply
// text mirrors single-track and playlist adds.
func connectAndEnqueue(ctx *core.SlashContext, tracks []track.Track, asPlaylist bool) error {
	s, e := ctx.Session, ctx.Event
	user := e.Member.User

	channelID, ok := core.UserVoiceChannel(s, e.GuildID, user.ID)
	if !ok {
		return core.Followup(s, e, "You are not in a voice channel.")
	}

	for i := range tracks {
		tracks[i].RequesterID = user.ID
		tracks[i].RequesterName = user.Username
	}

	ctrl := ctx.Deps.Players.GetOrCreate(context.Background(), e.GuildID, user.ID)
	if err := ctrl.Connect(channelID); err != nil {
		log.Printf("[ERR] Failed to join voice channel %s: %v", channelID, err)
		return core.Followup(s, e, "Failed to join your voice channel.")
	}

	freshPanel := false
	if ctrl.NowPlaying() == nil && ctrl.QueueLen() == 0 {
		p := panel.New(s, ctrl, e.ChannelID)
		ctrl.SetMenu(p)
		freshPanel = true
	}

	var reply string
	if asPlaylist {
		added, err := ctrl.EnqueueBatch(tracks)
		switch {
		case errors.Is(err, queue.ErrQueueFull):
			reply = fmt.Sprintf("Added %d tracks; the rest didn't fit, the queue is full.", added)
		case err != nil:
			return core.Followup(s, e, "Failed to queue the playlist.")
		default:
			reply = "Added the playlist to queue."
		}
	} else {
		if err := ctrl.Enqueue(tracks[0]); err != nil {
			return core.Followup(s, e, "The queue is full.")
		}
		reply = "Added the song to queue."
	}

	if !freshPanel {
		ctrl.UpdateMenu()
	}
	return core.Followup(s, e, reply)
}

// rememberSearch stores the query for play autocomplete; failures only log.
func rememberSearch(ctx *core.SlashContext, query string) {
	user := ctx.Event.Member.User
	if err := ctx.Deps.Storage.AddRecentSearch(ctx.Event.GuildID, user.ID, query); err != nil {
		log.Printf("[WARN] Failed to store recent search: %v", err)
	}
}

// searchAutocomplete offers the user's recent searches while the field is
// empty and live search results once they start typing. Shared by the play
// commands.
func searchAutocomplete(ctx *core.AutocompleteContext) error {
	s, e := ctx.Session, ctx.Event

	var current string
	for _, opt := range e.ApplicationCommandData().Options {
		if opt.Focused {
			current = opt.StringValue()
		}
	}

	if current == "" {
		recents, err := ctx.Deps.Storage.RecentSearches(e.GuildID, core.UserID(e))
		if err != nil {
			return respondChoices(s, e, nil)
		}
		choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(recents))
		for _, q := range recents {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  q,
				Value: q,
			})
		}
		return respondChoices(s, e, choices)
	}

	searchCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	results, err := ctx.Deps.Resolver.ByQuery(searchCtx, current)
	if err != nil {
		return respondChoices(s, e, nil)
	}
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(results))
	for _, t := range results {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  t.ChoiceName(),
			Value: t.URL,
		})
	}
	return respondChoices(s, e, choices)
}

func respondChoices(s *discordgo.Session, e *discordgo.InteractionCreate, choices []*discordgo.ApplicationCommandOptionChoice) error {
	if len(choices) > 25 {
		choices = choices[:25]
	}
	return s.InteractionRespond(e.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
}
