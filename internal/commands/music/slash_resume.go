package music

import (
	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
)

type ResumeCommand struct{}

func (c *ResumeCommand) Name() string        { return "resume" }
func (c *ResumeCommand) Description() string { return "Resume the player from a paused state" }
func (c *ResumeCommand) Group() string       { return "music" }
func (c *ResumeCommand) Category() string    { return category }

func (c *ResumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *ResumeCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	ctrl, ok := activeController(sc)
	if !ok {
		return nil
	}

	snap := ctrl.Snapshot()
	if !snap.Paused {
		return core.Respond(sc.Session, sc.Event, "Currently not paused.", true)
	}
	if _, err := ctrl.TogglePause(); err != nil {
		return core.Respond(sc.Session, sc.Event, "Currently not playing.", true)
	}
	ctrl.UpdateMenu()
	return core.Respond(sc.Session, sc.Event, "Resumed the playback.", false)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&ResumeCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		),
	)
}
