package music

import (
	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
)

type StopCommand struct{}

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop and disconnect the player" }
func (c *StopCommand) Group() string       { return "music" }
func (c *StopCommand) Category() string    { return category }

func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *StopCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	ctrl, ok := activeController(sc)
	if !ok {
		return nil
	}

	ctrl.Stop()
	return core.Respond(sc.Session, sc.Event, "Disconnected the player.", false)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&StopCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		),
	)
}
