package main

import (
	"fmt"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gpu-price-tracker/src/analysis"
	"gpu-price-tracker/src/client"
	"gpu-price-tracker/src/config"
	"gpu-price-tracker/src/interfaces"
	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"
	"gpu-price-tracker/src/views"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	source     string
	smooth     bool
	noColor    bool

	conf   *models.MConfig
	loader interfaces.ISeriesLoader
	closer func() error
	log    *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "viewer",
		Short: "Inspect tracked GPU prices",
		Long: `Print the latest snapshot or the price trend of tracked GPU series.

Examples:
  viewer latest                       # every tracked series
  viewer latest H100_80GB             # all socket variants of one GPU type
  viewer trend H100_80GB_SXM5 72      # last 72 hours of one series
  viewer --source http://127.0.0.1:8000 trend B200_180GB --smooth`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closer != nil {
				return a.closer()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (defaults apply when empty)")
	root.PersistentFlags().StringVar(&a.source, "source", "", "directory of series files or http(s) server URL")
	root.PersistentFlags().BoolVar(&a.smooth, "smooth", false, "apply exponential smoothing to trends")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newLatestCmd(a), newTrendCmd(a))
	return root
}

// -----------------------------------------------------------------------------

func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}

	a.conf = config.Defaults()
	if a.configPath != "" {
		conf, err := config.NewConfig(a.configPath)
		if err != nil {
			return err
		}
		a.conf = conf.MConfig
	}
	if a.source == "" {
		a.source = a.conf.Viewer.Source
	}
	if !cmd.Flags().Changed("smooth") {
		a.smooth = a.conf.Viewer.Smoothing
	}

	a.log = logger.NewLoggerWithWriter(cmd.ErrOrStderr(), "Viewer", logger.LevelWarning)
	loader, closer, err := client.NewLoader(a.conf, a.source, a.log)
	if err != nil {
		return fmt.Errorf("failed to open source %s: %w", a.source, err)
	}
	a.loader = loader
	a.closer = closer
	return nil
}

func (a *app) renderer(cmd *cobra.Command) *views.Renderer {
	return views.NewRenderer(cmd.OutOrStdout(), !a.noColor && !color.NoColor)
}

// resolveKeys maps a command argument to series keys. An empty argument
// means every tracked series; a split GPU type expands to its sockets.
// Untracked series resolve to nothing, whatever the source.
func (a *app) resolveKeys(arg string) []models.SeriesKey {
	partitions := analysis.SocketPartitions(a.conf.Tracking.SocketPartitions)
	tracked := partitions.Keys(a.conf.Tracking.GPUTypes)
	if arg == "" {
		return tracked
	}

	wanted := []models.SeriesKey{models.ParseSeriesID(arg, a.conf.Tracking.SocketPartitions)}
	if _, split := partitions.Sockets(arg); split {
		wanted = partitions.Keys([]string{arg})
	}
	keys := make([]models.SeriesKey, 0, len(wanted))
	for _, k := range wanted {
		if slices.Contains(tracked, k) {
			keys = append(keys, k)
		}
	}
	return keys
}
