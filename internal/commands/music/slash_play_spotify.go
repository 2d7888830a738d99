package music

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
	"github.com/Maselkov/Toothy/internal/music/resolver"
	"github.com/Maselkov/Toothy/internal/music/track"
)

type PlaySpotifyCommand struct{}

func (c *PlaySpotifyCommand) Name() string { return "play-spotify" }
func (c *PlaySpotifyCommand) Description() string {
	return "Add a song to the queue from a Spotify link"
}
func (c *PlaySpotifyCommand) Group() string    { return "music" }
func (c *PlaySpotifyCommand) Category() string { return category }

func (c *PlaySpotifyCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         "url",
				Description:  "The Spotify track URL, or a search term",
				Required:     true,
				Autocomplete: true,
			},
		},
	}
}

// Run matches the Spotify track against YouTube by title. Input that is not
// a Spotify link falls back to a plain search.
func (c *PlaySpotifyCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	s, e := sc.Session, sc.Event

	query := e.ApplicationCommandData().Options[0].StringValue()

	if _, ok := core.UserVoiceChannel(s, e.GuildID, e.Member.User.ID); !ok {
		return core.Respond(s, e, "You are not in a voice channel.", true)
	}
	if err := core.Defer(s, e, false); err != nil {
		return err
	}

	resolveCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	var tracks []track.Track
	var err error
	if resolver.IsSpotifyURL(query) {
		tracks, err = sc.Deps.Resolver.BySpotify(resolveCtx, query)
		if errors.Is(err, resolver.ErrInvalidSpotifyURL) {
			return core.Followup(s, e, "Invalid Spotify URL.")
		}
	} else {
		tracks, err = sc.Deps.Resolver.Resolve(resolveCtx, query)
	}
	if err != nil {
		if !errors.Is(err, resolver.ErrNoResults) && !errors.Is(err, resolver.ErrUnsupportedURL) {
			log.Printf("[ERR] Resolve spotify %q failed: %v", query, err)
		}
		return core.Followup(s, e, "Could not find any songs with that query.")
	}

	rememberSearch(sc, query)
	return connectAndEnqueue(sc, tracks, len(tracks) > 1)
}

func (c *PlaySpotifyCommand) Autocomplete(ctx *core.AutocompleteContext) error {
	return searchAutocomplete(ctx)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&PlaySpotifyCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		),
	)
}
