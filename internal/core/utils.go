package core

import (
	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"
)

// EmbedColor is the accent color used across the bot's embeds.
const EmbedColor = 0xFF0000

func userID(event *discordgo.InteractionCreate) string {
	if event.Member != nil && event.Member.User != nil {
		return event.Member.User.ID
	}
	if event.User != nil {
		return event.User.ID
	}
	return ""
}

// UserID returns the invoking user's ID regardless of guild or DM context.
func UserID(event *discordgo.InteractionCreate) string {
	return userID(event)
}

// Respond sends the initial interaction response as plain text.
func Respond(s *discordgo.Session, event *discordgo.InteractionCreate, content string, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	return s.InteractionRespond(event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
}

// RespondEmbed sends the initial interaction response as a single embed.
func RespondEmbed(s *discordgo.Session, event *discordgo.InteractionCreate, emb *discordgo.MessageEmbed, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	return s.InteractionRespond(event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{emb},
			Flags:  flags,
		},
	})
}

// SimpleEmbed builds a one-line embed in the bot's accent color.
func SimpleEmbed(description string) *discordgo.MessageEmbed {
	return embed.NewEmbed().
		SetColor(EmbedColor).
		SetDescription(description).
		MessageEmbed
}

// Defer acknowledges the interaction so a slow handler can follow up later.
func Defer(s *discordgo.Session, event *discordgo.InteractionCreate, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	return s.InteractionRespond(event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags},
	})
}

// Followup sends a followup message after Defer.
func Followup(s *discordgo.Session, event *discordgo.InteractionCreate, content string) error {
	_, err := s.FollowupMessageCreate(event.Interaction, true, &discordgo.WebhookParams{
		Content: content,
	})
	return err
}

// UpdateComponent acknowledges a component press without changing the
// message; the panel re-renders itself from controller state.
func UpdateComponent(s *discordgo.Session, event *discordgo.InteractionCreate) error {
	return s.InteractionRespond(event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

// UserVoiceChannel returns the voice channel a user currently occupies.
func UserVoiceChannel(s *discordgo.Session, guildID, userID string) (string, bool) {
	if guildID == "" || userID == "" {
		return "", false
	}
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return "", false
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID, true
		}
	}
	return "", false
}

// CanModerate reports whether the user may override the player lock and the
// volume ceiling: Mute Members or Administrator.
func CanModerate(s *discordgo.Session, event *discordgo.InteractionCreate) bool {
	if event.Member == nil {
		return false
	}
	perms, err := s.UserChannelPermissions(event.Member.User.ID, event.ChannelID)
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionAdministrator != 0 ||
		perms&discordgo.PermissionVoiceMuteMembers != 0
}
