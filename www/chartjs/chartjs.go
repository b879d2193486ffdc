package chartjs

import (
	"github.com/icodeforyou/weatherboard-go/convert"
)

const ColorOrange = "#ff9800d4"
const ColorBlue = "#2196f3d4"

// NewChart creates a two axis line chart with one empty dataset per axis
// and one point per label.
func NewChart(title string, labels []string) Chart {
	chart := Chart{
		Type: "line",
		Data: ChartData{
			Labels: labels,
			Datasets: []ChartDataset{
				{
					Data:        make([]*float64, len(labels)),
					BorderWidth: 2,
					Tension:     0.4,
					Fill:        false,
					BorderColor: ColorOrange,
					YAxisID:     "YAxis1",
				},
				{
					Type:            "bar",
					Data:            make([]*float64, len(labels)),
					BorderWidth:     1,
					BorderColor:     ColorBlue,
					BackgroundColor: ColorBlue,
					YAxisID:         "YAxis2",
				},
			},
		},
		Options: ChartOptions{
			Responsive: true,
			Plugins: ChartPlugins{
				Legend: ChartLegend{Display: false},
				Title:  ChartTitle{Display: false},
			},
			Scales: map[string]ChartScale{
				"YAxis1": {
					Type:     "linear",
					Display:  true,
					Position: "left",
					Title:    ChartScaleTitle{Display: true, Text: "", Color: ColorOrange}},
				"YAxis2": {
					Type:     "linear",
					Display:  true,
					Position: "right",
					Title:    ChartScaleTitle{Display: true, Text: "", Color: ColorBlue}},
			},
		},
	}

	if title != "" {
		chart.Options.Plugins.Title = ChartTitle{Display: true, Text: title}
	}

	return chart
}

func (cs ChartScale) WithTitle(title string) ChartScale {
	cs.Title.Text = title
	return cs
}

func (cs ChartScale) WithMinAndMax(min, max float64) ChartScale {
	cs.Min = &min
	cs.Max = &max
	return cs
}

func (cs ChartScale) WithMin(min float64) ChartScale {
	cs.Min = &min
	return cs
}

// FixedFloat64 is a chart point rounded to precision decimals.
func FixedFloat64(num float64, precision int) *float64 {
	result := convert.RoundFloat64(num, precision)
	return &result
}
