package music

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
)

type PlaylistCommand struct{}

func (c *PlaylistCommand) Name() string        { return "playlist" }
func (c *PlaylistCommand) Description() string { return "Queue a playlist" }
func (c *PlaylistCommand) Group() string       { return "music" }
func (c *PlaylistCommand) Category() string    { return category }

func (c *PlaylistCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "url",
				Description: "The URL of the playlist to play",
				Required:    true,
			},
		},
	}
}

func (c *PlaylistCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	s, e := sc.Session, sc.Event

	url := e.ApplicationCommandData().Options[0].StringValue()

	if _, ok := core.UserVoiceChannel(s, e.GuildID, e.Member.User.ID); !ok {
		return core.Respond(s, e, "You are not in a voice channel.", true)
	}
	if err := core.Defer(s, e, false); err != nil {
		return err
	}

	resolveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracks, err := sc.Deps.Resolver.ByURL(resolveCtx, url)
	if err != nil {
		log.Printf("[WARN] Playlist resolve %q failed: %v", url, err)
		return core.Followup(s, e, "Could not find any playlists with that URL.")
	}

	return connectAndEnqueue(sc, tracks, true)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&PlaylistCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		),
	)
}
