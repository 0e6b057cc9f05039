package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/okieraised/points-of-interests/internal/client"
	"github.com/okieraised/points-of-interests/internal/config"
	"github.com/okieraised/points-of-interests/internal/device"
	"github.com/okieraised/points-of-interests/internal/localsearch"
	"github.com/okieraised/points-of-interests/internal/logging"
	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/okieraised/points-of-interests/internal/tui"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

func main() {
	logFile := flag.String("log", "poi.log", "File to write logs to; the terminal belongs to the UI")
	denied := flag.Bool("denied", false, "Simulate a device that refuses location permission")
	noFix := flag.Bool("no-location", false, "Simulate a device without a position fix")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot load config: %v\n", err)
		os.Exit(1)
	}

	out, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open log file: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()
	logging.InitWithWriter(out, "poi", cfg.Environment, cfg.LogLevel)

	if err := run(cfg, *denied, *noFix); err != nil {
		log.Error().Err(err).Msg("poi exited with error")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config, denied, noFix bool) error {
	api, err := client.New(cfg.APIBaseURL, client.WithRateLimit(cfg.RequestsPerSec, cfg.RequestBurst))
	if err != nil {
		return err
	}

	var position *models.Coordinate
	if !noFix {
		position = &models.Coordinate{Latitude: cfg.DeviceLat, Longitude: cfg.DeviceLon}
	}
	grant := localsearch.AuthorizationAuthorized
	if denied {
		grant = localsearch.AuthorizationDenied
	}
	gps := device.NewFixedProvider(position, device.WithAuthorization(localsearch.AuthorizationNotDetermined, grant))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := localsearch.NewLoop(0)
	go loop.Run(ctx)

	locationState := localsearch.NewLocationState(api)
	defer locationState.Close()

	localizer := localsearch.NewLocalizer(language.Make(cfg.Language))
	var sender tui.Sender
	session := localsearch.NewSession(loop, locationState, localsearch.Providers{
		Location:   gps,
		Completion: api,
		Search:     api,
		Features:   api,
	}, localizer, tui.Events(sender.Send))
	defer session.Close()

	program := tea.NewProgram(tui.New(session, localizer.Placeholder(), session.Rows()), tea.WithAltScreen())
	sender.Attach(program)

	session.Start()
	log.Info().Str("api", cfg.APIBaseURL).Str("language", localizer.Language().String()).Msg("Session started")

	_, err = program.Run()
	return err
}
