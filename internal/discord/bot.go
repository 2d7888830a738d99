package discord

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/config"
	"github.com/Maselkov/Toothy/internal/core"
)

// Bot wires the Discord gateway to the registered commands and the
// per-guild players.
type Bot struct {
	dg   *discordgo.Session
	cfg  *config.Config
	deps *core.Deps
}

// NewBot builds the gateway session. The session is not opened until Run.
func NewBot(cfg *config.Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	b := &Bot{dg: dg, cfg: cfg}
	b.configureIntents()
	return b, nil
}

// Session exposes the underlying gateway session so voice sessions can be
// built on it.
func (b *Bot) Session() *discordgo.Session {
	return b.dg
}

// Run opens the gateway and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context, deps *core.Deps) error {
	b.deps = deps

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onInteractionCreate)
	b.dg.AddHandler(b.onVoiceStateUpdate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	b.deps.Players.StopAll()
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates
}

// onReady registers the slash commands once the gateway session is up.
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}

	// Empty guild ID registers the commands globally.
	if err := b.registerCommands(b.cfg.GuildID); err != nil {
		log.Println("[ERR] Error registering slash commands:", err)
	}

	log.Printf("[INFO] ✅ Discord bot %v is running.", botInfo.Username)
}
