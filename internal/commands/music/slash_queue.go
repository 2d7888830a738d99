package music

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"github.com/Maselkov/Toothy/internal/core"
)

type QueueCommand struct{}

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Retrieve the next songs from the queue" }
func (c *QueueCommand) Group() string       { return "music" }
func (c *QueueCommand) Category() string    { return category }

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *QueueCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	ctrl, ok := activeController(sc)
	if !ok {
		return nil
	}

	upcoming := ctrl.Upcoming(5)
	if len(upcoming) == 0 {
		return core.Respond(sc.Session, sc.Event, "There are no songs currently in the queue.", false)
	}

	var lines []string
	for _, song := range upcoming {
		lines = append(lines, fmt.Sprintf("**`%s`**", song))
	}
	emb := embed.NewEmbed().
		SetColor(core.EmbedColor).
		SetTitle(fmt.Sprintf("Upcoming - Next %d", len(upcoming))).
		SetDescription(strings.Join(lines, "\n")).
		MessageEmbed
	return core.RespondEmbed(sc.Session, sc.Event, emb, false)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&QueueCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		),
	)
}
