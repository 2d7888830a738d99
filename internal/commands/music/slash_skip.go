package music

import (
	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
)

type SkipCommand struct{}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Skip the currently playing song" }
func (c *SkipCommand) Group() string       { return "music" }
func (c *SkipCommand) Category() string    { return category }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *SkipCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	ctrl, ok := activeController(sc)
	if !ok {
		return nil
	}
	if ctrl.NowPlaying() == nil {
		return core.Respond(sc.Session, sc.Event, "I am not currently playing anything!", true)
	}

	if err := core.Respond(sc.Session, sc.Event, "Skipping the song!", false); err != nil {
		return err
	}
	ctrl.Skip()
	return nil
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&SkipCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		),
	)
}
