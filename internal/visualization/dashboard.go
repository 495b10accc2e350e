package visualization

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/inferloop/synthetizer/internal/sampling"
	"github.com/inferloop/synthetizer/pkg/constants"
)

// ChartRenderer writes an HTML page with one chart per description node:
// a top-values bar chart for categorical models and a histogram with the
// fitted density drawn over it for continuous ones.
type ChartRenderer struct {
	height string
}

// NewChartRenderer creates an HTML chart renderer
func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{height: "400px"}
}

// ContentType returns the MIME type of the rendered output
func (cr *ChartRenderer) ContentType() string {
	return constants.ContentTypeHTML
}

// Render writes the page to w
func (cr *ChartRenderer) Render(w io.Writer, d *sampling.Description) error {
	page := components.NewPage()
	page.PageTitle = d.Title

	walk(d, func(node *sampling.Description) {
		switch node.Kind {
		case sampling.KindContinuous:
			page.AddCharts(cr.histogramChart(node))
		case sampling.KindCategorical, sampling.KindUniqueCategorical:
			page.AddCharts(cr.topValuesChart(node))
		}
	})

	return page.Render(w)
}

func (cr *ChartRenderer) globalOptions(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Height:    cr.height,
		}),
		charts.WithToolboxOpts(opts.Toolbox{
			Show: true,
			Feature: &opts.ToolBoxFeature{
				SaveAsImage: &opts.ToolBoxFeatureSaveAsImage{
					Show:  true,
					Title: "Save",
				},
			},
		}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
	}
}

// histogramChart draws the trimmed observations against the fitted density
func (cr *ChartRenderer) histogramChart(d *sampling.Description) *charts.Bar {
	subtitle := "count " + strconv.Itoa(d.Count) + ", trimmed " + strconv.Itoa(d.Trimmed)
	if d.Constant != nil {
		subtitle += ", constant " + strconv.Itoa(*d.Constant)
	}

	labels := make([]string, len(d.Histogram))
	bars := make([]opts.BarData, len(d.Histogram))
	for i, bin := range d.Histogram {
		labels[i] = binLabel(bin)
		bars[i] = opts.BarData{Value: bin.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(cr.globalOptions(d.Title, subtitle)...)
	bar.SetXAxis(labels).AddSeries("Observed", bars)

	if expected := expectedCounts(d); expected != nil {
		points := make([]opts.LineData, len(expected))
		for i, v := range expected {
			points[i] = opts.LineData{Value: v}
		}
		line := charts.NewLine()
		line.SetXAxis(labels).AddSeries("Fitted density", points)
		bar.Overlap(line)
	}

	return bar
}

func (cr *ChartRenderer) topValuesChart(d *sampling.Description) *charts.Bar {
	subtitle := "count " + strconv.Itoa(d.Count) + ", distinct " + strconv.Itoa(d.Distinct)

	labels := make([]string, len(d.TopValues))
	bars := make([]opts.BarData, len(d.TopValues))
	for i, vc := range d.TopValues {
		labels[i] = vc.Value
		bars[i] = opts.BarData{Value: vc.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(cr.globalOptions(d.Title, subtitle)...)
	bar.SetXAxis(labels).AddSeries("Top values", bars)
	return bar
}
