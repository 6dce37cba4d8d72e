package renderer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "go-weekend-raytracer/renderer"

// RowWriter receives the rendered image one scanline at a time
type RowWriter interface {
	// WriteHeader is called once before any rows
	WriteHeader(width, height int) error
	// WriteRow is called once per scanline, top row first. row is reused
	// after WriteRow returns.
	WriteRow(y int, row []RGB) error
}

// Raytracer renders a world through a camera
type Raytracer struct {
	world  geometry.Hittable
	camera *Camera

	workers    int
	logger     core.Logger
	seed       uint64
	newSampler func(i, j int) core.Sampler
	progress   func(remaining int)
	sceneName  string
}

// Option configures a Raytracer
type Option func(*Raytracer)

// WithWorkers sets the number of goroutines rendering each scanline. A
// non-positive count selects one per CPU.
func WithWorkers(n int) Option {
	return func(rt *Raytracer) { rt.workers = n }
}

// WithLogger sets the logger for render progress and summaries
func WithLogger(logger core.Logger) Option {
	return func(rt *Raytracer) { rt.logger = logger }
}

// WithSeed makes the render reproducible: every pixel draws from its own
// random stream derived from seed and the pixel index. Zero picks a random
// seed.
func WithSeed(seed uint64) Option {
	return func(rt *Raytracer) { rt.seed = seed }
}

// WithSamplerFactory overrides how the sampler for pixel (i, j) is created.
// Each call must return a sampler that is not shared with other pixels.
func WithSamplerFactory(f func(i, j int) core.Sampler) Option {
	return func(rt *Raytracer) { rt.newSampler = f }
}

// WithProgress sets the callback invoked before each scanline with the
// number of scanlines left, counting the one about to render.
func WithProgress(f func(remaining int)) Option {
	return func(rt *Raytracer) { rt.progress = f }
}

// WithSceneName sets the scene tag attached to metrics and traces
func WithSceneName(name string) Option {
	return func(rt *Raytracer) { rt.sceneName = name }
}

// NewRaytracer creates a raytracer for world as seen through camera
func NewRaytracer(world geometry.Hittable, camera *Camera, opts ...Option) *Raytracer {
	rt := &Raytracer{
		world:     world,
		camera:    camera,
		sceneName: "unnamed",
	}
	for _, opt := range opts {
		opt(rt)
	}

	if rt.logger == nil {
		rt.logger = NewDefaultLogger()
	}
	if rt.seed == 0 {
		rt.seed = rand.Uint64() | 1
	}
	if rt.newSampler == nil {
		width := uint64(camera.ImageWidth())
		seed := rt.seed
		rt.newSampler = func(i, j int) core.Sampler {
			return core.NewPixelSampler(seed, uint64(j)*width+uint64(i))
		}
	}
	if rt.progress == nil {
		rt.progress = NewProgressReporter(rt.logger, time.Second).Report
	}
	return rt
}

// Seed returns the seed pixel samplers are derived from
func (rt *Raytracer) Seed() uint64 {
	return rt.seed
}

// Camera returns the camera the raytracer renders through
func (rt *Raytracer) Camera() *Camera {
	return rt.camera
}

// RenderPixel averages the camera's samples for pixel (i, j) and returns the
// quantized color.
func (rt *Raytracer) RenderPixel(i, j int, sampler core.Sampler) RGB {
	var pixelColor core.Color
	for sample := 0; sample < rt.camera.SamplesPerPixel(); sample++ {
		r := rt.camera.GetRay(i, j, sampler)
		pixelColor = pixelColor.Add(RayColor(r, rt.camera.MaxDepth(), rt.world, sampler))
	}
	return QuantizeColor(pixelColor.Multiply(rt.camera.PixelSamplesScale()))
}

// Render renders the image and streams it to out, one scanline at a time
// from the top. Each scanline is rendered in parallel and handed to out only
// after every pixel in it is done.
func (rt *Raytracer) Render(ctx context.Context, out RowWriter) (RenderStats, error) {
	tracer := otel.Tracer(tracerName)
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Raytracer.Render")
	defer span.End()

	width, height := rt.camera.ImageWidth(), rt.camera.ImageHeight()
	pool := NewWorkerPool(rt.workers)
	span.SetAttributes(
		attribute.String("scene", rt.sceneName),
		attribute.Int("width", width),
		attribute.Int("height", height),
		attribute.Int("samples_per_pixel", rt.camera.SamplesPerPixel()),
		attribute.Int("workers", pool.GetNumWorkers()),
	)

	stats := RenderStats{
		Width:           width,
		Height:          height,
		SamplesPerPixel: rt.camera.SamplesPerPixel(),
		Workers:         pool.GetNumWorkers(),
	}
	start := time.Now()

	if err := rt.render(ctx, pool, out, &stats); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		recordMeasurements(ctx, rt.sceneName, renderFailures.M(1))
		stats.Elapsed = time.Since(start)
		return stats, err
	}

	stats.Elapsed = time.Since(start)
	rt.logger.Printf("Done. %v\n", stats)
	return stats, nil
}

func (rt *Raytracer) render(ctx context.Context, pool *WorkerPool, out RowWriter, stats *RenderStats) error {
	width, height := stats.Width, stats.Height

	if err := out.WriteHeader(width, height); err != nil {
		return fmt.Errorf("while writing image header: %w", err)
	}

	row := make([]RGB, width)
	for j := 0; j < height; j++ {
		rt.progress(height - j)

		rowStart := time.Now()
		if err := rt.renderRow(ctx, pool, j, row); err != nil {
			return fmt.Errorf("while rendering scanline %d: %w", j, err)
		}
		if err := out.WriteRow(j, row); err != nil {
			return fmt.Errorf("while writing scanline %d: %w", j, err)
		}

		stats.TotalPixels += width
		stats.TotalSamples += width * rt.camera.SamplesPerPixel()
		recordMeasurements(ctx, rt.sceneName,
			rowsRendered.M(1),
			samplesTraced.M(int64(width*rt.camera.SamplesPerPixel())),
			rowRenderTime.M(float64(time.Since(rowStart))/float64(time.Millisecond)))
	}
	return nil
}

func (rt *Raytracer) renderRow(ctx context.Context, pool *WorkerPool, j int, row []RGB) error {
	tracer := otel.Tracer(tracerName)
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Raytracer.renderRow")
	defer span.End()
	span.SetAttributes(attribute.Int("row", j))

	// Workers write disjoint slots of row
	return pool.Run(ctx, len(row), func(ctx context.Context, i int) error {
		row[i] = rt.RenderPixel(i, j, rt.newSampler(i, j))
		return nil
	})
}
