package discord

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
)

// onVoiceStateUpdate stops the player when the bot is kicked out of voice or
// when the last listener leaves its channel.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	ctrl, ok := b.deps.Players.Get(v.GuildID)
	if !ok {
		return
	}

	// The bot itself was moved or force-disconnected.
	if v.UserID == s.State.User.ID {
		if v.ChannelID == "" {
			log.Printf("[INFO] Disconnected from voice in guild %s, stopping playback", v.GuildID)
			ctrl.Stop()
		}
		return
	}

	// Only channel departures matter from here on.
	if v.BeforeUpdate == nil || v.BeforeUpdate.ChannelID == v.ChannelID {
		return
	}

	botChannel, ok := core.UserVoiceChannel(s, v.GuildID, s.State.User.ID)
	if !ok || v.BeforeUpdate.ChannelID != botChannel {
		return
	}

	if humansInChannel(s, v.GuildID, botChannel) > 0 {
		return
	}

	log.Printf("[INFO] All users left voice in guild %s, stopping playback", v.GuildID)
	if channelID := ctrl.MenuChannelID(); channelID != "" {
		if _, err := s.ChannelMessageSend(channelID, "All users have left. Stopping playback."); err != nil {
			log.Printf("[WARN] Failed to announce playback stop: %v", err)
		}
	}
	ctrl.Stop()
}

// humansInChannel counts non-bot members currently in a voice channel.
func humansInChannel(s *discordgo.Session, guildID, channelID string) int {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return 0
	}

	count := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}
		member, err := s.State.Member(guildID, vs.UserID)
		if err != nil || member.User == nil || member.User.Bot {
			continue
		}
		count++
	}
	return count
}
