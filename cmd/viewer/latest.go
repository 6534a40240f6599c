package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpu-price-tracker/src/views"
)

func newLatestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "latest [gpu_type]",
		Short: "Show the latest snapshot of each series",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			return a.runLatest(cmd, arg)
		},
	}
}

func (a *app) runLatest(cmd *cobra.Command, arg string) error {
	r := a.renderer(cmd)
	out := cmd.OutOrStdout()

	shown := 0
	for _, key := range a.resolveKeys(arg) {
		series, err := a.loader.Load(cmd.Context(), key.ID())
		if err != nil {
			return err
		}
		report, ok := views.BuildLatestReport(series)
		if !ok {
			continue
		}
		r.RenderReport(report)
		shown++
	}

	if shown == 0 {
		if arg == "" {
			fmt.Fprintln(out, "No data available")
		} else {
			fmt.Fprintf(out, "No data for %s\n", arg)
		}
	}
	return nil
}
