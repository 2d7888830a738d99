package discord

import (
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
)

// onInteractionCreate routes slash commands, autocomplete keystrokes, button
// presses, and modal submits to their handlers.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleSlash(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.handleAutocomplete(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	case discordgo.InteractionModalSubmit:
		b.handleModal(s, i)
	}
}

func (b *Bot) handleSlash(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	cmd, ok := core.GetCommand(name)
	if !ok {
		log.Printf("[WARN] Unknown command: %s", name)
		return
	}

	ctx := &core.SlashContext{Session: s, Event: i, Deps: b.deps}
	if err := cmd.Run(ctx); err != nil {
		log.Printf("[ERR] Error running slash command /%s: %v", name, err)
		_ = core.RespondEmbed(s, i, core.SimpleEmbed(fmt.Sprintf("Error running command: %v", err)), true)
	}
}

func (b *Bot) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	cmd, ok := core.GetCommand(name)
	if !ok {
		return
	}
	handler, ok := cmd.(core.AutocompleteHandler)
	if !ok {
		return
	}

	ctx := &core.AutocompleteContext{Session: s, Event: i, Deps: b.deps}
	if err := handler.Autocomplete(ctx); err != nil {
		log.Printf("[WARN] Autocomplete for /%s failed: %v", name, err)
	}
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	cmd := matchByCustomID(customID)
	if cmd == nil {
		log.Printf("[WARN] No matching command for component %s", customID)
		return
	}
	handler, ok := cmd.(core.ComponentHandler)
	if !ok {
		return
	}

	ctx := &core.ComponentContext{Session: s, Event: i, Deps: b.deps}
	if err := handler.Component(ctx); err != nil {
		log.Printf("[ERR] Error running component %s: %v", customID, err)
	}
}

func (b *Bot) handleModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.ModalSubmitData().CustomID

	cmd := matchByCustomID(customID)
	if cmd == nil {
		log.Printf("[WARN] No matching command for modal %s", customID)
		return
	}
	handler, ok := cmd.(core.ModalHandler)
	if !ok {
		return
	}

	ctx := &core.ModalContext{Session: s, Event: i, Deps: b.deps}
	if err := handler.Modal(ctx); err != nil {
		log.Printf("[ERR] Error running modal %s: %v", customID, err)
	}
}

// matchByCustomID finds the command whose name prefixes the custom ID. Panel
// buttons all use IDs of the form "musicpanel_...".
func matchByCustomID(customID string) core.Command {
	for _, cmd := range core.AllCommands() {
		if customID == cmd.Name() || strings.HasPrefix(customID, cmd.Name()+"_") {
			return cmd
		}
	}
	return nil
}
