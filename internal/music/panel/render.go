package panel

import (
	"fmt"
	"math"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/music/controller"
)

const (
	EmbedColor = 0xFF0000

	progressWidth = 6
	upcomingLimit = 5
)

// Component custom IDs, all routed through the music panel handler.
const (
	IDPrevious  = "musicpanel_prev"
	IDSeekBack  = "musicpanel_seek_back"
	IDPause     = "musicpanel_pause"
	IDSeekFwd   = "musicpanel_seek_forward"
	IDNext      = "musicpanel_next"
	IDStop      = "musicpanel_stop"
	IDVolDown   = "musicpanel_voldown"
	IDVolUp     = "musicpanel_volup"
	IDShuffle   = "musicpanel_shuffle"
	IDRepeat    = "musicpanel_repeat"
	IDEqualizer = "musicpanel_equalizer"
	IDLock      = "musicpanel_lock"
	IDAddTrack  = "musicpanel_add"
	IDLyrics    = "musicpanel_lyrics"
	IDDownload  = "musicpanel_download"
	IDAddModal  = "musicpanel_add_modal"
)

// RenderEmbed builds the control-panel embed from a controller snapshot.
func RenderEmbed(snap controller.Snapshot) *discordgo.MessageEmbed {
	if snap.NowPlaying == nil {
		return &discordgo.MessageEmbed{
			Title: "No track playing",
			Color: EmbedColor,
		}
	}
	t := snap.NowPlaying

	embed := &discordgo.MessageEmbed{
		Title: "Now Playing: " + t.Title,
		URL:   t.URL,
		Color: EmbedColor,
	}
	if t.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: t.Thumbnail}
	}
	if t.RequesterName != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: "Requested by " + t.RequesterName}
	}

	// The next track is random under shuffle, so the list would mislead.
	if len(snap.Upcoming) > 0 && !snap.Shuffle {
		upcoming := snap.Upcoming
		if len(upcoming) > upcomingLimit {
			upcoming = upcoming[:upcomingLimit]
		}
		var list string
		for _, u := range upcoming {
			list += fmt.Sprintf("**`%s`**\n", u.String())
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Upcoming",
			Value: list,
		})
	}

	if snap.Paused {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Progress",
			Value: "Paused",
		})
	} else {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Progress",
			Value: progressLine(snap.Position, t.Duration),
		})
	}

	if snap.Locked {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Locked",
			Value: "Only moderators and the DJ can control the player. " +
				"Click the padlock button to disengage.",
		})
	}

	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Volume: %d%%", int(math.Round(snap.Volume*100))),
	}
	return embed
}

func progressLine(position, duration time.Duration) string {
	percent := 0
	if duration > 0 {
		percent = int(position * 100 / duration)
	}
	bar := ProgressBar(percent, progressWidth)

	start := time.Now().Add(-position)
	end := start.Add(duration)
	return fmt.Sprintf("<t:%d:R> %s <t:%d:R>", start.Unix(), bar, end.Unix())
}

// RenderComponents builds the button rows, enabling, disabling and recoloring
// them from the snapshot.
func RenderComponents(snap controller.Snapshot) []discordgo.MessageComponent {
	pauseEmoji, pauseStyle := "⏸️", discordgo.DangerButton
	if snap.Paused {
		pauseEmoji, pauseStyle = "▶️", discordgo.SuccessButton
	}
	lockEmoji, lockStyle := "🔓", discordgo.SecondaryButton
	if snap.Locked {
		lockEmoji, lockStyle = "🔒", discordgo.DangerButton
	}

	row1 := discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		button(IDPrevious, "⏪", discordgo.SecondaryButton, false),
		button(IDPause, pauseEmoji, pauseStyle, false),
		button(IDNext, "⏩", discordgo.SecondaryButton, snap.QueueLen == 0),
		button(IDStop, "⏹️", discordgo.DangerButton, false),
	}}
	row2 := discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		button(IDSeekBack, "⬅️", discordgo.SecondaryButton, false),
		button(IDSeekFwd, "➡️", discordgo.SecondaryButton, false),
	}}
	row3 := discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		button(IDVolDown, "🔈", discordgo.SecondaryButton, snap.Volume <= controller.MinVolume),
		button(IDVolUp, "🔊", discordgo.SecondaryButton, snap.Volume > 1),
		button(IDShuffle, "🔀", toggleStyle(snap.Shuffle), false),
		button(IDRepeat, "🔁", toggleStyle(snap.Repeat), false),
		button(IDEqualizer, "🎚️", toggleStyle(snap.Equalizer), false),
	}}
	row4 := discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		button(IDLock, lockEmoji, lockStyle, false),
		labelButton(IDAddTrack, "Add track...", "🔎"),
		labelButton(IDLyrics, "Lyrics...", "📃"),
		labelButton(IDDownload, "Download track", "⬇️"),
	}}

	return []discordgo.MessageComponent{row1, row2, row3, row4}
}

func toggleStyle(on bool) discordgo.ButtonStyle {
	if on {
		return discordgo.SuccessButton
	}
	return discordgo.SecondaryButton
}

func button(id, emoji string, style discordgo.ButtonStyle, disabled bool) discordgo.Button {
	return discordgo.Button{
		CustomID: id,
		Emoji:    &discordgo.ComponentEmoji{Name: emoji},
		Style:    style,
		Disabled: disabled,
	}
}

func labelButton(id, label, emoji string) discordgo.Button {
	return discordgo.Button{
		CustomID: id,
		Label:    label,
		Emoji:    &discordgo.ComponentEmoji{Name: emoji},
		Style:    discordgo.SecondaryButton,
	}
}
