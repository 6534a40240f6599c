package client

import (
	"context"
	"fmt"
	"time"

	"gpu-price-tracker/src/analysis"
	"gpu-price-tracker/src/interfaces"
	"gpu-price-tracker/src/models"
	"gpu-price-tracker/src/views"
)

// ViewState is everything a view renders from. It is a value: every
// operation returns a new state and never mutates its input.
type ViewState struct {
	SeriesID string
	Window   analysis.TimeWindow
	Smooth   bool
	Series   []models.Snapshot
	Points   []models.DisplayPoint
	// Selected is the snapshot shown in detail; nil means the latest.
	Selected *models.Snapshot
}

// Viewer applies user interactions to a ViewState.
type Viewer struct {
	Loader   interfaces.ISeriesLoader
	Resolver *analysis.TrendResolver
	Now      func() time.Time
}

func NewViewer(loader interfaces.ISeriesLoader) *Viewer {
	return &Viewer{Loader: loader, Resolver: analysis.NewTrendResolver(), Now: time.Now}
}

// -----------------------------------------------------------------------------

func (v *Viewer) resolve(s ViewState) ViewState {
	s.Points = v.Resolver.Resolve(s.Series, analysis.TrendQuery{Window: s.Window, Smooth: s.Smooth, Now: v.Now().UTC()})
	return s
}

// -----------------------------------------------------------------------------

// SelectSeries loads a series and resolves it with the state's window and
// smoothing. On failure the previous state is returned unchanged together
// with the DataLoadError.
func (v *Viewer) SelectSeries(ctx context.Context, prev ViewState, seriesID string) (ViewState, error) {
	series, err := v.Loader.Load(ctx, seriesID)
	if err != nil {
		return prev, err
	}
	next := prev
	next.SeriesID = seriesID
	next.Series = series
	next.Selected = nil
	return v.resolve(next), nil
}

// SetWindow recomputes the points for a new window.
func (v *Viewer) SetWindow(prev ViewState, w analysis.TimeWindow) ViewState {
	next := prev
	next.Window = w
	return v.resolve(next)
}

// SetSmoothing recomputes the points with smoothing on or off.
func (v *Viewer) SetSmoothing(prev ViewState, smooth bool) ViewState {
	next := prev
	next.Smooth = smooth
	return v.resolve(next)
}

// SelectPoint shows the snapshot behind the i-th display point.
func (v *Viewer) SelectPoint(prev ViewState, i int) (ViewState, error) {
	if i < 0 || i >= len(prev.Points) {
		return prev, fmt.Errorf("point %d out of range [0, %d)", i, len(prev.Points))
	}
	next := prev
	next.Selected = analysis.SelectSnapshot(prev.Points[i])
	return next, nil
}

// -----------------------------------------------------------------------------

// Report builds the detail report of the selected snapshot, or of the latest
// one when nothing is selected. ok is false for an empty series.
func (s ViewState) Report() (views.Report, bool) {
	if s.Selected == nil {
		return views.BuildLatestReport(s.Series)
	}
	var previous *models.Snapshot
	for i := range s.Series {
		if &s.Series[i] == s.Selected && i > 0 {
			previous = &s.Series[i-1]
		}
	}
	return views.BuildReport(s.Selected, previous), true
}
