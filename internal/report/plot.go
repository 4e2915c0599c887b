package report

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/anchorscope/anchorscope/internal/analyzers/structural"
)

const (
	chartWidth  = "100%"
	chartHeight = "600px"

	// maxPlotFiles keeps the x axis readable on big workspaces.
	maxPlotFiles = 40
)

// WritePlot renders an HTML bar chart of per-file complexity so hotspots
// stand out at a glance. Files are ordered by total complexity, highest
// first.
func WritePlot(result *structural.Result, w io.Writer) error {
	files := append([]structural.FileResult(nil), result.Files...)

	sort.Slice(files, func(i, j int) bool {
		return files[i].Metrics.TotalComplexity > files[j].Metrics.TotalComplexity
	})

	if len(files) > maxPlotFiles {
		files = files[:maxPlotFiles]
	}

	labels := make([]string, len(files))
	cyclomatic := make([]opts.BarData, len(files))
	cognitive := make([]opts.BarData, len(files))

	for i, file := range files {
		labels[i] = filepath.Base(file.Path)
		cyclomatic[i] = opts.BarData{Value: file.Metrics.TotalComplexity}
		cognitive[i] = opts.BarData{Value: file.Metrics.TotalCognitive}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Complexity by file",
			Subtitle: fmt.Sprintf("Code volume factor: %.2f / 100", result.Workspace.CodeVolumeFactor),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Complexity"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	bar.SetXAxis(labels).
		AddSeries("cyclomatic", cyclomatic).
		AddSeries("cognitive", cognitive)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render complexity chart: %w", err)
	}

	return nil
}
