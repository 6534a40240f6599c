package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gpu-price-tracker/src/analysis"
	"gpu-price-tracker/src/client"
)

const defaultTrendHours = 24

func newTrendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trend <gpu_type> [hours]",
		Short: "Show the price trend over the last hours",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			window := analysis.LastHours(defaultTrendHours)
			if len(args) == 2 {
				h, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("hours must be a positive integer, got %q", args[1])
				}
				if window, err = analysis.HoursWindow(h); err != nil {
					return err
				}
			}
			return a.runTrend(cmd, args[0], window)
		},
	}
}

func (a *app) runTrend(cmd *cobra.Command, arg string, window analysis.TimeWindow) error {
	r := a.renderer(cmd)
	viewer := client.NewViewer(a.loader)

	keys := a.resolveKeys(arg)
	if len(keys) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No data for %s\n", arg)
		return nil
	}
	for _, key := range keys {
		state, err := viewer.SelectSeries(cmd.Context(), client.ViewState{Window: window, Smooth: a.smooth}, key.ID())
		if err != nil {
			return err
		}
		if len(state.Series) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No data for %s\n", key)
			continue
		}
		r.RenderTrend(key.String(), window.String(), state.Points, state.Smooth)
	}
	return nil
}
