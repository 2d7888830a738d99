package music

import (
	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
)

type ShuffleCommand struct{}

func (c *ShuffleCommand) Name() string        { return "shuffle" }
func (c *ShuffleCommand) Description() string { return "Toggle shuffled playback" }
func (c *ShuffleCommand) Group() string       { return "music" }
func (c *ShuffleCommand) Category() string    { return category }

func (c *ShuffleCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *ShuffleCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	ctrl, ok := activeController(sc)
	if !ok {
		return nil
	}

	on := !ctrl.Snapshot().Shuffle
	ctrl.SetShuffle(on)
	ctrl.UpdateMenu()
	if on {
		return core.Respond(sc.Session, sc.Event, "Shuffle is on.", false)
	}
	return core.Respond(sc.Session, sc.Event, "Shuffle is off.", false)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&ShuffleCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		),
	)
}
