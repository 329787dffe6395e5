package renderdb

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteReport renders an HTML bar chart of the most recent render runs
// (stage-free total wall time per run) so tuning sessions can be compared at
// a glance. Runs are shown oldest to newest, left to right.
func (rdb *RenderDB) WriteReport(w io.Writer, limit int) error {
	runs, err := rdb.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("no render runs recorded")
	}

	// ListRuns returns newest first; flip for a left-to-right timeline.
	labels := make([]string, 0, len(runs))
	elapsed := make([]opts.BarData, 0, len(runs))
	pointCounts := make([]opts.BarData, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		labels = append(labels, fmt.Sprintf("%s\n%s", r.CreatedAt.Format("01-02 15:04:05"), shortID(r.RunID)))
		elapsed = append(elapsed, opts.BarData{Value: r.ElapsedMS})
		pointCounts = append(pointCounts, opts.BarData{Value: r.PointCount})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Yard Map Render Runs", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Render runs",
			Subtitle: fmt.Sprintf("last %d runs, wall time per render", len(runs)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "elapsed (ms)"}),
	)
	bar.SetXAxis(labels).
		AddSeries("elapsed_ms", elapsed).
		AddSeries("points", pointCounts)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("rendering run report: %w", err)
	}
	return nil
}

func shortID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}
