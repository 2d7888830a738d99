package core

import (
	"github.com/bwmarrin/discordgo"
)

type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *wrappedCommand) Component(ctx *ComponentContext) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	if ch, ok := w.Command.(ComponentHandler); ok {
		return ch.Component(ctx)
	}
	return nil
}

func (w *wrappedCommand) Modal(ctx *ModalContext) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	if mh, ok := w.Command.(ModalHandler); ok {
		return mh.Modal(ctx)
	}
	return nil
}

func (w *wrappedCommand) Autocomplete(ctx *AutocompleteContext) error {
	// Autocomplete fires on every keystroke; middlewares stay out of its way.
	if ah, ok := w.Command.(AutocompleteHandler); ok {
		return ah.Autocomplete(ctx)
	}
	return nil
}

func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// dispatch hands ctx to the innermost command, picking the right hook for the
// context type.
func dispatch(cmd Command, ctx interface{}) error {
	switch v := ctx.(type) {
	case *ComponentContext:
		if ch, ok := cmd.(ComponentHandler); ok {
			return ch.Component(v)
		}
		return nil
	case *ModalContext:
		if mh, ok := cmd.(ModalHandler); ok {
			return mh.Modal(v)
		}
		return nil
	default:
		return cmd.Run(ctx)
	}
}

func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}
