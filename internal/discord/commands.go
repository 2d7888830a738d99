package discord

import (
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
)

// registerCommands reconciles the registered commands with what Discord
// already has, creating, updating, or deleting only what changed. guildID
// may be empty for global registration.
func (b *Bot) registerCommands(guildID string) error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	existing, _ := b.dg.ApplicationCommands(appID, guildID)
	localHashes := loadCommandHashes(guildID)

	var wanted []*discordgo.ApplicationCommand
	wantedHashes := make(map[string]string)
	for _, cmd := range core.AllCommands() {
		if def := slashDefinition(cmd); def != nil {
			wanted = append(wanted, def)
			wantedHashes[def.Name] = hashCommand(def)
		}
	}

	for _, old := range existing {
		if _, ok := wantedHashes[old.Name]; !ok {
			log.Printf("[INFO] Deleting obsolete command: %s", old.Name)
			if err := b.dg.ApplicationCommandDelete(appID, guildID, old.ID); err != nil {
				log.Printf("[ERR] Failed to delete %s: %v", old.Name, err)
			}
			delete(localHashes, old.Name)
		}
	}

	var changed []*discordgo.ApplicationCommand
	for _, cmd := range wanted {
		if localHashes[cmd.Name] != wantedHashes[cmd.Name] {
			changed = append(changed, cmd)
		}
	}

	if len(changed) > 0 {
		log.Printf("[INFO] %d commands changed — updating with rate limit...", len(changed))
		b.createCommandsWithRateLimit(appID, guildID, changed)
		for _, c := range changed {
			localHashes[c.Name] = wantedHashes[c.Name]
		}
	}

	saveCommandHashes(guildID, localHashes)
	return nil
}

// slashDefinition extracts the slash definition if the command has one.
// Component-only commands such as the control panel return nil.
func slashDefinition(cmd core.Command) *discordgo.ApplicationCommand {
	provider, ok := cmd.(core.SlashProvider)
	if !ok {
		return nil
	}
	def := provider.SlashDefinition()
	if def != nil && def.Type == 0 {
		def.Type = discordgo.ChatApplicationCommand
	}
	return def
}

func (b *Bot) createCommandsWithRateLimit(appID, guildID string, cmds []*discordgo.ApplicationCommand) {
	ticker := time.NewTicker(time.Second / 40)
	defer ticker.Stop()

	var wg sync.WaitGroup
	for _, job := range cmds {
		wg.Add(1)
		go func(cmd *discordgo.ApplicationCommand) {
			defer wg.Done()
			<-ticker.C

			if _, err := b.dg.ApplicationCommandCreate(appID, guildID, cmd); err != nil {
				log.Printf("[ERR] Can't create command %s: %v", cmd.Name, err)
			} else {
				log.Printf("[DONE] Command created: %s", cmd.Name)
			}
		}(job)
	}
	wg.Wait()
}
