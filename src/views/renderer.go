package views

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"gpu-price-tracker/src/analysis"
	"gpu-price-tracker/src/analysis/core"
	"gpu-price-tracker/src/models"
)

const timeLayout = "2006-01-02 15:04 UTC"

// Renderer writes reports and trends as terminal tables.
type Renderer struct {
	out       io.Writer
	useColors bool
}

func NewRenderer(out io.Writer, useColors bool) *Renderer {
	return &Renderer{out: out, useColors: useColors}
}

// -----------------------------------------------------------------------------

func (r *Renderer) paint(attrs ...color.Attribute) func(a ...interface{}) string {
	if !r.useColors {
		return fmt.Sprint
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint
}

func (r *Renderer) table(headers []string, rows [][]string) {
	table := tablewriter.NewTable(r.out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)
	table.Header(headers)
	table.Bulk(rows)
	table.Render()
}

// -----------------------------------------------------------------------------

func money(v float64) string {
	return fmt.Sprintf("$%.2f", core.Round2(v))
}

func (r *Renderer) spotBadge(spot bool) string {
	if spot {
		return r.paint(color.FgYellow)("spot")
	}
	return r.paint(color.FgGreen)("on-demand")
}

// -----------------------------------------------------------------------------

// RenderReport prints headline stats, availability, configurations and
// providers of one snapshot.
func (r *Renderer) RenderReport(rep Report) {
	bold := r.paint(color.Bold)
	fmt.Fprintf(r.out, "%s  %s\n", bold(rep.Title), rep.Timestamp.UTC().Format(timeLayout))

	if ps := rep.PriceStats; ps != nil {
		fmt.Fprintf(r.out, "  Price per GPU: %s - %s (median %s, mean %s)\n",
			r.paint(color.FgGreen)(money(ps.Min)), money(ps.Max), money(ps.Median), money(ps.Mean))
		fmt.Fprintf(r.out, "  Percentiles:   p10 %s  p25 %s  p75 %s  p90 %s\n",
			money(ps.P10), money(ps.P25), money(ps.P75), money(ps.P90))
	} else {
		fmt.Fprintln(r.out, "  No price data")
	}
	if rep.MedianChange != nil {
		fmt.Fprintf(r.out, "  Median change: %s\n", r.change(*rep.MedianChange))
	}
	if a := rep.Availability; a != nil {
		fmt.Fprintf(r.out, "  Availability:  %d/%d available (low %d, medium %d, high %d)\n",
			a.Available, a.Total, a.Low, a.Medium, a.High)
	}

	if len(rep.Configs) > 0 {
		fmt.Fprintln(r.out)
		rows := make([][]string, 0, len(rep.Configs))
		for _, c := range rep.Configs {
			rows = append(rows, []string{
				c.Label,
				fmt.Sprintf("%d", c.Count),
				money(c.MinPerGPU),
				money(c.MinTotal),
				money(c.AvgPerGPU),
				c.Provider,
				c.Location,
				r.spotBadge(c.Spot),
			})
		}
		r.table([]string{"Config", "Offers", "Min/GPU", "Min Total", "Avg/GPU", "Best Provider", "Location", "Type"}, rows)
	}

	if len(rep.Providers) > 0 {
		fmt.Fprintln(r.out)
		rows := make([][]string, 0, len(rep.Providers))
		for _, p := range rep.Providers {
			rows = append(rows, []string{p.Provider, fmt.Sprintf("%d", p.Count), money(p.Min), money(p.Avg)})
		}
		r.table([]string{"Provider", "Offers", "Min/GPU", "Avg/GPU"}, rows)
	}
	fmt.Fprintln(r.out)
}

// offerCount is the number of listings behind a snapshot.
func offerCount(s *models.Snapshot) int {
	if s.Availability != nil {
		return s.Availability.Total
	}
	n := 0
	for _, c := range s.ByConfig {
		n += c.Count
	}
	return n
}

func (r *Renderer) change(v float64) string {
	s := fmt.Sprintf("%+.2f%%", v*100)
	switch {
	case v > 0:
		return r.paint(color.FgRed)(s)
	case v < 0:
		return r.paint(color.FgGreen)(s)
	}
	return s
}

// -----------------------------------------------------------------------------

// RenderTrend prints one row per display point. Mean is only known for
// unsmoothed points that map to a single snapshot; offers come from the
// source snapshot.
func (r *Renderer) RenderTrend(title string, window string, points []models.DisplayPoint, smoothed bool) {
	bold := r.paint(color.Bold)
	fmt.Fprintf(r.out, "%s  window %s, %d points\n", bold(title), window, len(points))
	if len(points) == 0 {
		fmt.Fprintln(r.out, "  No data in window")
		return
	}

	rows := make([][]string, 0, len(points))
	for _, p := range points {
		mean, offers := "-", "-"
		if p.Source != nil {
			if !p.IsAggregated && !smoothed && p.Source.PriceStats != nil {
				mean = money(p.Source.PriceStats.Mean)
			}
			offers = fmt.Sprintf("%d", offerCount(p.Source))
		}
		ts := p.Timestamp.UTC().Format(timeLayout)
		if p.IsAggregated {
			ts += fmt.Sprintf(" (%d)", p.BucketSize)
		}
		rows = append(rows, []string{ts, money(p.PriceStats.Min), money(p.PriceStats.Median), mean, money(p.PriceStats.Max), offers})
	}
	r.table([]string{"Timestamp", "Min", "Median", "Mean", "Max", "Offers"}, rows)

	sum := analysis.SummarizeTrend(points)
	fmt.Fprintf(r.out, "  Median avg %s, stddev %s, change %s\n\n",
		money(sum.MeanMedian), money(sum.StdMedian), r.change(sum.ChangePercent))
}
