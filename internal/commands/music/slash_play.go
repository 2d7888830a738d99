package music

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
	"github.com/Maselkov/Toothy/internal/music/resolver"
)

type PlayCommand struct{}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Search for and add a song to the queue" }
func (c *PlayCommand) Group() string       { return "music" }
func (c *PlayCommand) Category() string    { return category }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         "query",
				Description:  "The URL of the song to play, or a search term",
				Required:     true,
				Autocomplete: true,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx interface{}) error {
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

	tracks, err := sc.Deps.Resolver.Resolve(resolveCtx, query)
	if err != nil {
		if errors.Is(err, resolver.ErrNoResults) || errors.Is(err, resolver.ErrUnsupportedURL) {
			return core.Followup(s, e, "Could not find any songs with that query.")
		}
		log.Printf("[ERR] Resolve %q failed: %v", query, err)
		return core.Followup(s, e, "Could not find any songs with that query.")
	}

	rememberSearch(sc, query)
	return connectAndEnqueue(sc, tracks, len(tracks) > 1)
}

func (c *PlayCommand) Autocomplete(ctx *core.AutocompleteContext) error {
	return searchAutocomplete(ctx)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&PlayCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		),
	)
}
