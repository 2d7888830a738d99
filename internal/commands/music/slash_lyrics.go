package music

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"github.com/Maselkov/Toothy/internal/core"
	"github.com/Maselkov/Toothy/internal/music/lyrics"
)

type LyricsCommand struct{}

func (c *LyricsCommand) Name() string        { return "lyrics" }
func (c *LyricsCommand) Description() string { return "Look up the lyrics of the current song" }
func (c *LyricsCommand) Group() string       { return "music" }
func (c *LyricsCommand) Category() string    { return category }

func (c *LyricsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *LyricsCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	s, e := sc.Session, sc.Event
	ctrl, ok := activeController(sc)
	if !ok {
		return nil
	}

	now := ctrl.NowPlaying()
	if now == nil {
		return core.Respond(s, e, "I am not currently playing anything!", true)
	}
	if err := core.Defer(s, e, true); err != nil {
		return err
	}

	lookupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := sc.Deps.Lyrics.Get(lookupCtx, now.Title)
	if err != nil {
		if !errors.Is(err, lyrics.ErrNoLyrics) {
			log.Printf("[WARN] Lyrics lookup for %q failed: %v", now.Title, err)
		}
		return core.Followup(s, e, "Unable to find lyrics for this song")
	}

	emb := lyricsEmbed(result)
	_, err = s.FollowupMessageCreate(e.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{emb},
	})
	return err
}

func lyricsEmbed(result lyrics.Lyrics) *discordgo.MessageEmbed {
	text := result.Text
	if runes := []rune(text); len(runes) > 1024 {
		text = string(runes[:1024])
	}
	emb := embed.NewEmbed().
		SetColor(core.EmbedColor).
		SetTitle(result.Title).
		SetDescription(text)
	if result.Author != "" {
		emb = emb.SetAuthor(result.Author)
	}
	if result.Links.Genius != "" {
		emb = emb.SetURL(result.Links.Genius)
	}
	return emb.MessageEmbed
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&LyricsCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		),
	)
}
