package core

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/storage"
)

// WithCommandLogger wraps a command to log its execution
func WithCommandLogger() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				err := dispatch(cmd, ctx)

				switch v := ctx.(type) {
				case *SlashContext:
					logCommand(v, v.Event, cmd.Name())
				case *ComponentContext:
					logCommand(&SlashContext{Session: v.Session, Event: v.Event, Deps: v.Deps}, v.Event, cmd.Name())
				}

				return err
			},
		}
	}
}

func logCommand(ctx *SlashContext, event *discordgo.InteractionCreate, name string) {
	if event.Member == nil || event.GuildID == "" {
		return
	}
	user := event.Member.User

	var guildName, channelName string
	if guild, err := ctx.Session.Guild(event.GuildID); err == nil {
		guildName = guild.Name
	}
	if channel, err := ctx.Session.Channel(event.ChannelID); err == nil {
		channelName = channel.Name
	}

	rec := storage.CommandHistoryRecord{
		ChannelID:   event.ChannelID,
		ChannelName: channelName,
		GuildName:   guildName,
		UserID:      user.ID,
		Username:    user.Username,
		Command:     name,
		Datetime:    time.Now(),
	}
	if err := ctx.Deps.Storage.AppendCommandToHistory(event.GuildID, rec); err != nil {
		log.Printf("[WARN] Failed to log command /%s: %v", name, err)
	}
}
