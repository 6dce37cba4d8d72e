package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/df07/go-weekend-raytracer/pkg/loaders"
	"github.com/df07/go-weekend-raytracer/pkg/output"
	"github.com/df07/go-weekend-raytracer/pkg/publish"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
	"github.com/golang/glog"
	"golang.org/x/term"
)

var (
	sceneFlag    = flag.String("scene", "default", "Built-in scene name or path to a .yaml, .yml or .pbrt scene file")
	outFlag      = flag.String("out", output.Stdout, "Output path ending in .ppm or .png, or - for PPM on stdout")
	width        = flag.Int("width", 0, "Override the scene's image width in pixels")
	samples      = flag.Int("samples", 0, "Override the scene's samples per pixel")
	depth        = flag.Int("depth", 0, "Override the scene's maximum bounce depth")
	workers      = flag.Int("workers", 0, "Number of render workers (0 uses every CPU)")
	seed         = flag.Uint64("seed", 0, "Random seed for a reproducible render (0 picks one)")
	preview      = flag.String("preview", "", "Also write a PNG thumbnail to this path")
	previewWidth = flag.Uint("preview-width", 200, "Maximum thumbnail width in pixels")
	publishTo    = flag.String("publish", "", "Upload the output file to s3://bucket/key or gs://bucket/key")
	s3Endpoint   = flag.String("s3-endpoint", "", "S3-compatible endpoint for -publish, e.g. a MinIO server")
	s3Region     = flag.String("s3-region", "us-east-1", "S3 region for -publish")
	listScenes   = flag.Bool("list-scenes", false, "Print the built-in scene names and exit")
)

// options holds everything a render run needs, decoupled from the flag set
type options struct {
	scene        string
	out          string
	camera       renderer.CameraConfig
	workers      int
	seed         uint64
	preview      string
	previewWidth uint
	publishTo    string
	publish      publish.Options
	progress     io.Writer // Interactive progress line, nil to log progress instead
}

func optionsFromFlags() options {
	opts := options{
		scene: *sceneFlag,
		out:   *outFlag,
		camera: renderer.CameraConfig{
			ImageWidth:      *width,
			SamplesPerPixel: *samples,
			MaxDepth:        *depth,
		},
		workers:      *workers,
		seed:         *seed,
		preview:      *preview,
		previewWidth: *previewWidth,
		publishTo:    *publishTo,
		publish: publish.Options{
			S3Endpoint: *s3Endpoint,
			S3Region:   *s3Region,
		},
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		opts.progress = os.Stderr
	}
	return opts
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if *listScenes {
		for _, name := range scene.Names() {
			fmt.Println(name)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, optionsFromFlags()); err != nil {
		glog.Exitf("Error: %v", err)
	}
}

func run(ctx context.Context, opts options) error {
	if opts.publishTo != "" {
		if opts.out == output.Stdout {
			return errors.New("-publish needs -out to name a file")
		}
		if _, err := publish.ParseDestination(opts.publishTo); err != nil {
			return err
		}
	}

	if err := renderer.RegisterViews(); err != nil {
		return fmt.Errorf("while registering metric views: %w", err)
	}
	defer renderer.UnregisterViews()

	s, err := createScene(opts.scene, opts.camera)
	if err != nil {
		return err
	}

	rtOpts := []renderer.Option{
		renderer.WithWorkers(opts.workers),
		renderer.WithSeed(opts.seed),
	}
	var status *terminalProgress
	if opts.progress != nil {
		status = &terminalProgress{w: opts.progress}
		rtOpts = append(rtOpts, renderer.WithProgress(status.report))
	}
	rt, err := s.NewRaytracer(rtOpts...)
	if err != nil {
		return fmt.Errorf("while configuring scene %q: %w", s.Name, err)
	}

	out, err := output.NewFileWriter(opts.out)
	if err != nil {
		return err
	}
	writers := []renderer.RowWriter{out}
	var thumb *output.ImageWriter
	if opts.preview != "" {
		thumb = output.NewImageWriter()
		writers = append(writers, thumb)
	}

	camera := rt.Camera()
	glog.Infof("Rendering scene %q at %dx%d, %d samples/pixel, seed %d",
		s.Name, camera.ImageWidth(), camera.ImageHeight(), camera.SamplesPerPixel(), rt.Seed())

	_, renderErr := rt.Render(ctx, output.MultiWriter(writers...))
	closeErr := out.Close()
	if status != nil {
		status.finish(renderErr == nil)
	}
	if renderErr != nil {
		return fmt.Errorf("while rendering scene %q: %w", s.Name, renderErr)
	}
	if closeErr != nil {
		return closeErr
	}

	if thumb != nil {
		if err := output.WritePreview(opts.preview, thumb.Image(), opts.previewWidth); err != nil {
			return err
		}
		glog.Infof("Wrote preview %s", opts.preview)
	}

	if opts.publishTo != "" {
		publisher, err := publish.New(ctx, opts.publishTo, opts.publish)
		if err != nil {
			return err
		}
		defer publisher.Close()
		if err := publisher.Publish(ctx, out.Path()); err != nil {
			return err
		}
	}
	return nil
}

// createScene resolves a built-in scene name or a scene file path and applies
// the non-zero camera overrides.
func createScene(name string, overrides renderer.CameraConfig) (*scene.Scene, error) {
	if loaders.IsSceneFile(name) {
		s, err := loaders.LoadScene(name)
		if err != nil {
			return nil, err
		}
		s.Camera = renderer.MergeCameraConfig(s.Camera, overrides)
		return s, nil
	}

	build, err := scene.Lookup(name)
	if err != nil {
		return nil, err
	}
	return build(overrides), nil
}

// terminalProgress rewrites a single status line on an interactive terminal
type terminalProgress struct {
	w io.Writer
}

func (p *terminalProgress) report(remaining int) {
	fmt.Fprintf(p.w, "\rScanlines remaining: %d ", remaining)
}

func (p *terminalProgress) finish(ok bool) {
	if ok {
		fmt.Fprint(p.w, "\rDone.                 \n")
		return
	}
	fmt.Fprintln(p.w)
}
