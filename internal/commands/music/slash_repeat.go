package music

import (
	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
)

type RepeatCommand struct{}

func (c *RepeatCommand) Name() string        { return "repeat" }
func (c *RepeatCommand) Description() string { return "Toggle repeating the play history" }
func (c *RepeatCommand) Group() string       { return "music" }
func (c *RepeatCommand) Category() string    { return category }

func (c *RepeatCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *RepeatCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	ctrl, ok := activeController(sc)
	if !ok {
		return nil
	}

	on := !ctrl.Snapshot().Repeat
	ctrl.SetRepeat(on)
	ctrl.UpdateMenu()
	if on {
		return core.Respond(sc.Session, sc.Event, "Repeat is on.", false)
	}
	return core.Respond(sc.Session, sc.Event, "Repeat is off.", false)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&RepeatCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		),
	)
}
