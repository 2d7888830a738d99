package music

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/core"
	"github.com/Maselkov/Toothy/internal/music/controller"
	"github.com/Maselkov/Toothy/internal/music/download"
	"github.com/Maselkov/Toothy/internal/music/lyrics"
	"github.com/Maselkov/Toothy/internal/music/panel"
)

const seekStep = 10 * time.Second

// PanelCommand handles every musicpanel_* button press and the add-track
// modal. It is never registered as a slash command.
type PanelCommand struct{}

func (c *PanelCommand) Name() string        { return "musicpanel" }
func (c *PanelCommand) Description() string { return "Control panel interactions" }
func (c *PanelCommand) Group() string       { return "music" }
func (c *PanelCommand) Category() string    { return category }

func (c *PanelCommand) Run(ctx interface{}) error { return nil }

func (c *PanelCommand) Component(ctx *core.ComponentContext) error {
	s, e := ctx.Session, ctx.Event

	ctrl, ok := ctx.Deps.Players.Get(e.GuildID)
	if !ok {
		return core.Respond(s, e, "Currently not playing.", true)
	}

	snap := ctrl.Snapshot()
	userID := core.UserID(e)
	userChannel, _ := core.UserVoiceChannel(s, e.GuildID, userID)
	botChannel, _ := core.UserVoiceChannel(s, e.GuildID, s.State.User.ID)
	canModerate := core.CanModerate(s, e)

	if err := panel.Authorize(snap, userChannel, botChannel, userID, canModerate); err != nil {
		return core.Respond(s, e, err.Error(), true)
	}

	customID := e.MessageComponentData().CustomID
	switch customID {
	case panel.IDPrevious:
		if err := ctrl.Previous(); err != nil {
			return core.Respond(s, e, "No previous song", true)
		}
		return core.UpdateComponent(s, e)

	case panel.IDPause:
		if _, err := ctrl.TogglePause(); err != nil {
			return core.Respond(s, e, "I am not currently playing anything!", true)
		}
		ctrl.UpdateMenu()
		return core.UpdateComponent(s, e)

	case panel.IDNext:
		if snap.NowPlaying == nil {
			return core.Respond(s, e, "I am not currently playing anything!", true)
		}
		if err := core.UpdateComponent(s, e); err != nil {
			return err
		}
		ctrl.Skip()
		return nil

	case panel.IDStop:
		if err := core.Respond(s, e, fmt.Sprintf("Playback stopped by <@%s>...", userID), true); err != nil {
			return err
		}
		ctrl.Stop()
		return nil

	case panel.IDSeekBack:
		return c.seek(ctx, ctrl, -seekStep)

	case panel.IDSeekFwd:
		return c.seek(ctx, ctrl, seekStep)

	case panel.IDVolDown:
		ctrl.AdjustVolume(panel.NextVolumeStep(snap.Volume, false))
		ctrl.UpdateMenu()
		return core.UpdateComponent(s, e)

	case panel.IDVolUp:
		ctrl.AdjustVolume(panel.NextVolumeStep(snap.Volume, true))
		ctrl.UpdateMenu()
		return core.UpdateComponent(s, e)

	case panel.IDShuffle:
		ctrl.SetShuffle(!snap.Shuffle)
		ctrl.UpdateMenu()
		return core.UpdateComponent(s, e)

	case panel.IDRepeat:
		ctrl.SetRepeat(!snap.Repeat)
		ctrl.UpdateMenu()
		return core.UpdateComponent(s, e)

	case panel.IDEqualizer:
		ctrl.SetEqualizer(!snap.Equalizer)
		ctrl.UpdateMenu()
		return core.UpdateComponent(s, e)

	case panel.IDLock:
		if userID != snap.DJUserID && !canModerate {
			return core.Respond(s, e, "Only the DJ and moderators can use this button.", true)
		}
		ctrl.ToggleLock()
		ctrl.UpdateMenu()
		return core.UpdateComponent(s, e)

	case panel.IDAddTrack:
		return c.openAddModal(s, e)

	case panel.IDLyrics:
		return c.sendLyrics(ctx, ctrl)

	case panel.IDDownload:
		return c.sendDownload(ctx, ctrl)
	}

	log.Printf("[WARN] Unknown panel component %s", customID)
	return core.UpdateComponent(s, e)
}

func (c *PanelCommand) seek(ctx *core.ComponentContext, ctrl *controller.Controller, delta time.Duration) error {
	if err := ctrl.SeekBy(delta); err != nil {
		return core.Respond(ctx.Session, ctx.Event, "I am not currently playing anything!", true)
	}
	ctrl.UpdateMenu()
	return core.UpdateComponent(ctx.Session, ctx.Event)
}

func (c *PanelCommand) openAddModal(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	return s.InteractionRespond(e.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: panel.IDAddModal,
			Title:    "Search song",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID: "query",
						Label:    "Track to search for",
						Style:    discordgo.TextInputShort,
						Required: true,
					},
				}},
			},
		},
	})
}

// Modal handles the add-track submit.
func (c *PanelCommand) Modal(ctx *core.ModalContext) error {
	s, e := ctx.Session, ctx.Event

	data := e.ModalSubmitData()
	if data.CustomID != panel.IDAddModal {
		return nil
	}
	query := data.Components[0].(*discordgo.ActionsRow).
		Components[0].(*discordgo.TextInput).Value

	if err := core.Defer(s, e, true); err != nil {
		return err
	}

	resolveCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	tracks, err := ctx.Deps.Resolver.Resolve(resolveCtx, query)
	if err != nil {
		return core.Followup(s, e, fmt.Sprintf("No results found for `%s`", query))
	}

	sc := &core.SlashContext{Session: s, Event: e, Deps: ctx.Deps}
	return connectAndEnqueue(sc, tracks, len(tracks) > 1)
}

func (c *PanelCommand) sendLyrics(ctx *core.ComponentContext, ctrl *controller.Controller) error {
	s, e := ctx.Session, ctx.Event

	now := ctrl.NowPlaying()
	if now == nil {
		return core.Respond(s, e, "I am not currently playing anything!", true)
	}
	if err := core.Defer(s, e, true); err != nil {
		return err
	}

	lookupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := ctx.Deps.Lyrics.Get(lookupCtx, now.Title)
	if err != nil {
		if !errors.Is(err, lyrics.ErrNoLyrics) {
			log.Printf("[WARN] Lyrics lookup for %q failed: %v", now.Title, err)
		}
		return core.Followup(s, e, "Unable to find lyrics for this song")
	}

	_, err = s.FollowupMessageCreate(e.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{lyricsEmbed(result)},
	})
	return err
}

func (c *PanelCommand) sendDownload(ctx *core.ComponentContext, ctrl *controller.Controller) error {
	s, e := ctx.Session, ctx.Event

	now := ctrl.NowPlaying()
	if now == nil {
		return core.Respond(s, e, "I am not currently playing anything!", true)
	}
	if err := core.Defer(s, e, true); err != nil {
		return err
	}

	path, err := ctx.Deps.Downloader.Fetch(*now)
	switch {
	case errors.Is(err, download.ErrDownloadInProgress):
		return core.Followup(s, e, "This track is currently being downloaded. Please wait!")
	case errors.Is(err, download.ErrTrackTooLong):
		return core.Followup(s, e, "Unable to download track")
	case errors.Is(err, download.ErrDownloadTimeout):
		return core.Followup(s, e, "Download timed out")
	case err != nil:
		log.Printf("[ERR] Download of %s failed: %v", now.ID, err)
		return core.Followup(s, e, "The downloader encountered an error. Please try again later.")
	}

	file, err := os.Open(path)
	if err != nil {
		return core.Followup(s, e, "The downloader encountered an error. Please try again later.")
	}
	defer file.Close()

	_, err = s.FollowupMessageCreate(e.Interaction, true, &discordgo.WebhookParams{
		Content: "Your download is here.",
		Files: []*discordgo.File{{
			Name:   now.Title + filepath.Ext(path),
			Reader: file,
		}},
	})
	return err
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&PanelCommand{},
			core.WithGuildOnly(),
		),
	)
}
