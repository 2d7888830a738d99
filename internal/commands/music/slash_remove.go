package music

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
)

type RemoveCommand struct{}

func (c *RemoveCommand) Name() string        { return "remove" }
func (c *RemoveCommand) Description() string { return "Remove a song from the queue by position" }
func (c *RemoveCommand) Group() string       { return "music" }
func (c *RemoveCommand) Category() string    { return category }

func (c *RemoveCommand) SlashDefinition() *discordgo.ApplicationCommand {
	minValue := 1.0
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "position",
				Description: "Queue position of the song, starting at 1",
				Required:    true,
				MinValue:    &minValue,
			},
		},
	}
}

func (c *RemoveCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	ctrl, ok := activeController(sc)
	if !ok {
		return nil
	}

	position := sc.Event.ApplicationCommandData().Options[0].IntValue()
	removed, err := ctrl.RemoveAt(int(position) - 1)
	if err != nil {
		return core.Respond(sc.Session, sc.Event, "There is no song at that position.", true)
	}
	ctrl.UpdateMenu()
	return core.Respond(sc.Session, sc.Event, fmt.Sprintf("Removed `%s` from the queue.", removed), false)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&RemoveCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		),
	)
}
