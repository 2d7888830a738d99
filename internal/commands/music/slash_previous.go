package music

import (
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
	"github.com/Maselkov/Toothy/internal/music/controller"
)

type PreviousCommand struct{}

func (c *PreviousCommand) Name() string        { return "previous" }
func (c *PreviousCommand) Description() string { return "Play the previous song again" }
func (c *PreviousCommand) Group() string       { return "music" }
func (c *PreviousCommand) Category() string    { return category }

func (c *PreviousCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *PreviousCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	ctrl, ok := activeController(sc)
	if !ok {
		return nil
	}

	if err := ctrl.Previous(); err != nil {
		if errors.Is(err, controller.ErrNoPreviousTrack) {
			return core.Respond(sc.Session, sc.Event, "There is no previous track.", true)
		}
		return core.Respond(sc.Session, sc.Event, "Could not go back.", true)
	}
	return core.Respond(sc.Session, sc.Event, "Going back!", false)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&PreviousCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		),
	)
}
