package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clickshot/clickshot/internal/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "clickshot",
		Short: "clickshot - click-triggered screenshot capture for tutorial documentation",
		Long: `clickshot watches a named application window and captures a screenshot
every time you click inside it (or press the trigger hotkey), burning a
visual marker onto the click location. Output files are numbered
sequentially so a single manual walkthrough produces an ordered,
annotated screenshot series ready for tutorial documentation.`,
		Example: `  # Capture clicks in a browser window
  clickshot --window "Firefox"

  # Manual captures only, via the hotkey
  clickshot --window "Terminal" --manual-only

  # Green markers, longer settle delay, jpg output
  clickshot -w "Settings" --box-color "#00FF00" --delay 300 --format jpg

  # See which windows can be targeted
  clickshot --list-windows`,
		SilenceUsage: true,
		RunE:         runCapture,
	}
)

var (
	flagWindow      string
	flagOutput      string
	flagManualOnly  bool
	flagNoAnnotate  bool
	flagNoGif       bool
	flagBoxColor    string
	flagBoxSize     int
	flagDelay       int
	flagFormat      string
	flagListWindows bool
	flagLogLevel    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/clickshot/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")

	f := rootCmd.Flags()
	f.StringVarP(&flagWindow, "window", "w", "", "target window (fuzzy title/class match)")
	f.StringVarP(&flagOutput, "output", "o", "./captures", "output directory")
	f.BoolVar(&flagManualOnly, "manual-only", false, "only the hotkey triggers captures (no click listener)")
	f.BoolVar(&flagNoAnnotate, "no-annotate", false, "do not draw the click marker")
	f.BoolVar(&flagNoGif, "no-gif", false, "do not write zoom-to-click GIFs")
	f.StringVar(&flagBoxColor, "box-color", "", "marker color (hex, e.g. #FF3B30)")
	f.IntVar(&flagBoxSize, "box-size", 0, "marker size in px")
	f.IntVar(&flagDelay, "delay", 0, "delay between trigger and capture in ms")
	f.StringVar(&flagFormat, "format", "", "output format (png or jpg)")
	f.BoolVar(&flagListWindows, "list-windows", false, "list candidate windows and exit")
}

// loadConfig reads the config file and layers the CLI flags on top
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	var o config.Overrides
	flags := cmd.Flags()
	if flags.Changed("no-annotate") {
		enabled := !flagNoAnnotate
		o.AnnotationEnabled = &enabled
	}
	if flags.Changed("box-color") {
		o.AnnotationColor = &flagBoxColor
	}
	if flags.Changed("box-size") {
		o.AnnotationSize = &flagBoxSize
	}
	if flags.Changed("delay") {
		o.DelayMs = &flagDelay
	}
	if flags.Changed("format") {
		o.Format = &flagFormat
	}
	if flags.Changed("no-gif") {
		enabled := !flagNoGif
		o.GifEnabled = &enabled
	}
	if cmd.Root().PersistentFlags().Changed("log-level") {
		o.LogLevel = &flagLogLevel
	}
	cfg.Apply(o)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
