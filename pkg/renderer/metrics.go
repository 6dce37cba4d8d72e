package renderer

import (
	"context"

	"github.com/golang/glog"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	sceneKey = tag.MustNewKey("scene")

	rowsRendered   = stats.Int64("raytracer/rows_rendered", "Scanlines written to the output", stats.UnitDimensionless)
	samplesTraced  = stats.Int64("raytracer/samples_traced", "Camera rays traced", stats.UnitDimensionless)
	rowRenderTime  = stats.Float64("raytracer/row_render_time", "Wall-clock time to render one scanline", stats.UnitMilliseconds)
	renderFailures = stats.Int64("raytracer/render_failures", "Renders aborted by an error", stats.UnitDimensionless)
)

// Views exposes the renderer's measures for an exporter
var Views = []*view.View{
	{
		Name:        "raytracer/rows_rendered",
		Description: "Counter of scanlines written to the output",
		TagKeys:     []tag.Key{sceneKey},
		Measure:     rowsRendered,
		Aggregation: view.Sum(),
	},
	{
		Name:        "raytracer/samples_traced",
		Description: "Counter of camera rays traced",
		TagKeys:     []tag.Key{sceneKey},
		Measure:     samplesTraced,
		Aggregation: view.Sum(),
	},
	{
		Name:        "raytracer/row_render_time",
		Description: "Distribution of scanline render times",
		TagKeys:     []tag.Key{sceneKey},
		Measure:     rowRenderTime,
		Aggregation: view.Distribution(1, 5, 10, 50, 100, 500, 1000, 5000, 10000),
	},
	{
		Name:        "raytracer/render_failures",
		Description: "Counter of renders aborted by an error",
		TagKeys:     []tag.Key{sceneKey},
		Measure:     renderFailures,
		Aggregation: view.Count(),
	},
}

// RegisterViews registers Views with the opencensus view worker
func RegisterViews() error {
	return view.Register(Views...)
}

// UnregisterViews stops collecting Views
func UnregisterViews() {
	view.Unregister(Views...)
}

func recordMeasurements(ctx context.Context, sceneName string, ms ...stats.Measurement) {
	err := stats.RecordWithOptions(
		ctx,
		stats.WithTags(tag.Upsert(sceneKey, sceneName)),
		stats.WithMeasurements(ms...))
	if err != nil {
		glog.V(2).Infof("Dropping render measurements: %v", err)
	}
}
