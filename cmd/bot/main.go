// cmd/bot/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/Maselkov/Toothy/internal/commands/music"

	"github.com/Maselkov/Toothy/internal/config"
	"github.com/Maselkov/Toothy/internal/core"
	"github.com/Maselkov/Toothy/internal/discord"
	"github.com/Maselkov/Toothy/internal/music/controller"
	"github.com/Maselkov/Toothy/internal/music/download"
	"github.com/Maselkov/Toothy/internal/music/lyrics"
	"github.com/Maselkov/Toothy/internal/music/resolver"
	"github.com/Maselkov/Toothy/internal/music/session"
	"github.com/Maselkov/Toothy/internal/music/sponsorblock"
	"github.com/Maselkov/Toothy/internal/storage"
)

func main() {
	log.Println("[INFO] Starting Toothy bot...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}

	store, err := storage.New(ctx, cfg.StoragePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	downloader, err := download.New(cfg.DownloadDir)
	if err != nil {
		log.Fatal(err)
	}
	go downloader.RunJanitor(ctx)

	lyricsClient := lyrics.NewClient(cfg.LyricsURL)
	go lyricsClient.RunJanitor(ctx)

	bot, err := discord.NewBot(cfg)
	if err != nil {
		log.Fatal(err)
	}

	players := controller.NewRegistry(store, func(guildID string) session.Session {
		return session.NewVoiceSession(bot.Session(), guildID)
	}, controller.WithSegmentSource(sponsorblock.NewClient("")))

	deps := &core.Deps{
		Storage:    store,
		Players:    players,
		Resolver:   resolver.New(),
		Downloader: downloader,
		Lyrics:     lyricsClient,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.Run(ctx, deps)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...", s)
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
		cancel()
	}

	log.Println("[INFO] Discord bot exited cleanly")
}
