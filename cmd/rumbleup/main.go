package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/canhlinh/rumbleup"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const settingsFile = ".env"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#85C742")).
			Padding(0, 1).
			Margin(1, 0)

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log.Logger

	settings, err := rumbleup.LoadSettings(settingsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load settings")
	}

	opts, err := rumbleup.OptionsFromSettings(settings)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid settings")
	}

	folder, err := settings.Path(rumbleup.KeyFolderPath)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid settings")
	}
	video, err := rumbleup.FindFirstVideo(folder)
	if err != nil {
		log.Fatal().Err(err).Msg("nothing to upload")
	}
	log.Info().Str("path", video).Msg("found video")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	videoURL, err := rumbleup.New(opts).Upload(ctx, video)
	if err != nil {
		log.Error().Err(err).Msg("upload finished with errors")
		stop()
		os.Exit(1)
	}

	fmt.Println(titleStyle.Render("Published"))
	fmt.Println(linkStyle.Render(videoURL))
}
