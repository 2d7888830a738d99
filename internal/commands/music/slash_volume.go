package music

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
)

type VolumeCommand struct{}

func (c *VolumeCommand) Name() string        { return "volume" }
func (c *VolumeCommand) Description() string { return "Set the player volume" }
func (c *VolumeCommand) Group() string       { return "music" }
func (c *VolumeCommand) Category() string    { return category }

func (c *VolumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	minValue := 0.0
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "volume",
				Description: "The volume, between 0 and 100. Moderators can increase the volume up to 200.",
				Required:    true,
				MinValue:    &minValue,
				MaxValue:    200,
			},
		},
	}
}

func (c *VolumeCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	s, e := sc.Session, sc.Event
	ctrl, ok := activeController(sc)
	if !ok {
		return nil
	}

	volume := e.ApplicationCommandData().Options[0].IntValue()
	if volume > 100 && !core.CanModerate(s, e) {
		return core.Respond(s, e, "Only moderators can push the volume past 100.", true)
	}

	ctrl.AdjustVolume(float64(volume) / 100)
	ctrl.UpdateMenu()
	return core.Respond(s, e, fmt.Sprintf("Setting the player volume to `%d`", volume), false)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&VolumeCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		),
	)
}
