package music

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
)

type SongCommand struct{}

func (c *SongCommand) Name() string        { return "song" }
func (c *SongCommand) Description() string { return "Retrieve the currently playing song" }
func (c *SongCommand) Group() string       { return "music" }
func (c *SongCommand) Category() string    { return category }

func (c *SongCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *SongCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	ctrl, ok := activeController(sc)
	if !ok {
		return nil
	}

	now := ctrl.NowPlaying()
	if now == nil {
		return core.Respond(sc.Session, sc.Event, "I am not currently playing anything!", true)
	}
	return core.Respond(sc.Session, sc.Event, fmt.Sprintf("Now playing: `%s`", now), false)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&SongCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		),
	)
}
