package core

import (
	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/music/controller"
	"github.com/Maselkov/Toothy/internal/music/download"
	"github.com/Maselkov/Toothy/internal/music/lyrics"
	"github.com/Maselkov/Toothy/internal/music/resolver"
	"github.com/Maselkov/Toothy/internal/storage"
)

type Command interface {
	Name() string
	Description() string
	Group() string
	Category() string
	Run(ctx interface{}) error
}

// Providers - how this command should be registered with Discord
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// Optional hooks beyond Run
type ComponentHandler interface {
	Component(*ComponentContext) error
}

type ModalHandler interface {
	Modal(*ModalContext) error
}

type AutocompleteHandler interface {
	Autocomplete(*AutocompleteContext) error
}

// Deps carries the bot's shared services into command handlers.
type Deps struct {
	Storage    *storage.Storage
	Players    *controller.Registry
	Resolver   *resolver.Resolver
	Downloader *download.Downloader
	Lyrics     *lyrics.Client
}

// Contexts - what runtime hands you when executing a command

// Slash command
type SlashContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Deps    *Deps
}

// Button or select menu press
type ComponentContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Deps    *Deps
}

// Modal submit
type ModalContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Deps    *Deps
}

// Autocomplete query while the user types
type AutocompleteContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Deps    *Deps
}
