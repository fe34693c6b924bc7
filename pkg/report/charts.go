// deploywatch
// (C) 2026, the deploywatch authors
//
// The deploywatch authors and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/deploywatch/deploywatch/internal/logger"
	"github.com/deploywatch/deploywatch/pkg/monitor"
)

// RenderCharts writes latency and availability charts for the run as PNG
// files into outputDir. Runs with fewer than two cycles carry too few data
// points for a time series and are skipped.
func RenderCharts(ctx context.Context, run monitor.Run, outputDir string) error {
	log := logger.FromContext(ctx)

	if len(run.Cycles) < 2 {
		log.Warn("Not enough cycles to render charts", "cycles", len(run.Cycles))
		return nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := renderLatencyChart(run, outputDir); err != nil {
		return fmt.Errorf("failed to render latency chart: %w", err)
	}
	if err := renderAvailabilityChart(run, outputDir); err != nil {
		return fmt.Errorf("failed to render availability chart: %w", err)
	}

	log.Info("Charts rendered", "dir", outputDir)
	return nil
}

// renderLatencyChart plots the probe latency of every endpoint over time
func renderLatencyChart(run monitor.Run, outputDir string) error {
	endpointData := make(map[string]struct {
		timestamps []time.Time
		values     []float64
	})
	var order []string

	for _, res := range run.Results() {
		data, ok := endpointData[res.Endpoint]
		if !ok {
			order = append(order, res.Endpoint)
		}
		data.timestamps = append(data.timestamps, res.Timestamp)
		data.values = append(data.values, res.Latency*1000)
		endpointData[res.Endpoint] = data
	}

	var allSeries []chart.Series
	for i, endpoint := range order {
		data := endpointData[endpoint]
		allSeries = append(allSeries, chart.TimeSeries{
			Name: endpoint,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				StrokeWidth: 2,
			},
			XValues: data.timestamps,
			YValues: data.values,
		})
	}

	graph := chart.Chart{
		Title: "Probe Latency",
		TitleStyle: chart.Style{
			FontSize: 16,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    20,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:  1200,
		Height: 400,
		XAxis: chart.XAxis{
			Name: "Time",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			ValueFormatter: chart.TimeMinuteValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Latency (ms)",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			GridMajorStyle: chart.Style{
				StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
				StrokeWidth: 1.0,
			},
		},
		Series: allSeries,
	}

	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
	}

	return renderPNG(graph, filepath.Join(outputDir, "latency.png"))
}

// renderAvailabilityChart plots the per-cycle success rate over time
func renderAvailabilityChart(run monitor.Run, outputDir string) error {
	var timestamps []time.Time
	var values []float64

	for _, c := range run.Cycles {
		if len(c.Results) == 0 {
			continue
		}
		healthy := 0
		for _, res := range c.Results {
			if res.Healthy {
				healthy++
			}
		}
		timestamps = append(timestamps, c.Start)
		values = append(values, float64(healthy)/float64(len(c.Results))*100)
	}

	graph := chart.Chart{
		Title: "Endpoint Availability per Cycle",
		TitleStyle: chart.Style{
			FontSize: 16,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    20,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:  1200,
		Height: 400,
		XAxis: chart.XAxis{
			Name: "Time",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			ValueFormatter: chart.TimeMinuteValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Healthy %",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: 100,
			},
			GridMajorStyle: chart.Style{
				StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
				StrokeWidth: 1.0,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "availability",
				Style: chart.Style{
					StrokeColor: chart.GetDefaultColor(0),
					StrokeWidth: 2,
				},
				XValues: timestamps,
				YValues: values,
			},
		},
	}

	return renderPNG(graph, filepath.Join(outputDir, "availability.png"))
}

func renderPNG(graph chart.Chart, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}
