package core

func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				switch v := ctx.(type) {
				case *SlashContext:
					if v.Event.GuildID == "" {
						return Respond(v.Session, v.Event, "This command only works in a server.", true)
					}
				case *ComponentContext:
					if v.Event.GuildID == "" {
						return Respond(v.Session, v.Event, "This only works in a server.", true)
					}
				}
				return dispatch(cmd, ctx)
			},
		}
	}
}
