package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clickshot/clickshot/internal/annotate"
	"github.com/clickshot/clickshot/internal/capture"
	"github.com/clickshot/clickshot/internal/coordinator"
	"github.com/clickshot/clickshot/internal/logger"
	"github.com/clickshot/clickshot/internal/sequence"
	"github.com/clickshot/clickshot/internal/trigger"
	"github.com/clickshot/clickshot/internal/window"
)

func runCapture(cmd *cobra.Command, args []string) error {
	if flagListWindows {
		return runList(cmd, args)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel, true)
	log := logger.WithComponent("session")

	if flagWindow == "" {
		return errors.New("--window is required (use --list-windows to see candidates)")
	}

	resolver, err := window.NewResolver()
	if err != nil {
		return err
	}
	defer resolver.Close()

	// Startup resolution failures are fatal: there is no window to target.
	target, err := resolver.Resolve(flagWindow)
	if err != nil {
		return err
	}
	log.Info().
		Str("title", target.Title).
		Str("class", target.Class).
		Uint32("id", target.ID).
		Int("width", target.Geometry.Width).
		Int("height", target.Geometry.Height).
		Msg("Target window resolved")

	spec, err := annotate.SpecFromConfig(cfg.Annotation)
	if err != nil {
		return err
	}

	grabber, err := capture.NewService()
	if err != nil {
		return err
	}
	defer grabber.Close()

	source, err := trigger.NewSource(trigger.Options{
		ManualOnly: flagManualOnly,
		Hotkey:     cfg.Hotkey.Trigger,
	})
	if err != nil {
		return err
	}

	namer := sequence.NewNamer(flagOutput, cfg.Capture.Format)
	coord := coordinator.New(source.Events(), resolver, grabber, namer, coordinator.Options{
		Target:     target,
		OutputDir:  flagOutput,
		Format:     cfg.Capture.Format,
		Delay:      time.Duration(cfg.Capture.DelayMs) * time.Millisecond,
		Annotate:   cfg.Annotation.Enabled,
		Spec:       spec,
		Gif:        cfg.Gif.Enabled,
		GifOptions: annotate.DefaultZoomOptions(spec),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := source.Start(); err != nil {
		return err
	}

	log.Info().Str("dir", flagOutput).Msg("Recording started")
	if !flagManualOnly {
		log.Info().Msg("Click inside the target window to capture")
	}
	log.Info().
		Str("hotkey", cfg.Hotkey.Trigger).
		Msg("Press the hotkey for a manual capture, Ctrl+C to stop")

	runErr := coord.Run(ctx)
	stop()
	source.Stop()

	log.Info().Int("captures", coord.Captured()).Msg("Recording finished")
	return runErr
}
