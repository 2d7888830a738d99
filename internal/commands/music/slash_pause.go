package music

import (
	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
)

type PauseCommand struct{}

func (c *PauseCommand) Name() string        { return "pause" }
func (c *PauseCommand) Description() string { return "Pause the playback" }
func (c *PauseCommand) Group() string       { return "music" }
func (c *PauseCommand) Category() string    { return category }

func (c *PauseCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

// Run pauses, or resumes when already paused, matching the panel button.
func (c *PauseCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	ctrl, ok := activeController(sc)
	if !ok {
		return nil
	}

	paused, err := ctrl.TogglePause()
	if err != nil {
		return core.Respond(sc.Session, sc.Event, "Currently not playing.", true)
	}
	ctrl.UpdateMenu()
	if paused {
		return core.Respond(sc.Session, sc.Event, "Paused the playback.", false)
	}
	return core.Respond(sc.Session, sc.Event, "Resumed the playback.", false)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&PauseCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		),
	)
}
