package core

// WithVoiceChannelCheck rejects invocations from users who are not in a
// voice channel of the guild.
func WithVoiceChannelCheck() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				switch v := ctx.(type) {
				case *SlashContext:
					if _, ok := UserVoiceChannel(v.Session, v.Event.GuildID, userID(v.Event)); !ok {
						return Respond(v.Session, v.Event, "You must be in a voice channel to use this.", true)
					}
				case *ComponentContext:
					if _, ok := UserVoiceChannel(v.Session, v.Event.GuildID, userID(v.Event)); !ok {
						return Respond(v.Session, v.Event, "You must be in a voice channel to use this.", true)
					}
				}
				return dispatch(cmd, ctx)
			},
		}
	}
}
