package renderer

import (
	"fmt"
	"time"
)

// RenderStats contains statistics about a finished render
type RenderStats struct {
	Width           int           // Image width in pixels
	Height          int           // Image height in pixels
	TotalPixels     int           // Total number of pixels rendered
	TotalSamples    int           // Total number of camera rays traced
	SamplesPerPixel int           // Camera rays per pixel
	Workers         int           // Goroutines used per scanline
	Elapsed         time.Duration // Wall-clock time spent rendering
}

// SamplesPerSecond returns the camera ray throughput of the render
func (s RenderStats) SamplesPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.TotalSamples) / s.Elapsed.Seconds()
}

func (s RenderStats) String() string {
	return fmt.Sprintf("%dx%d, %d samples/pixel, %d workers, %v (%.0f samples/s)",
		s.Width, s.Height, s.SamplesPerPixel, s.Workers, s.Elapsed.Round(time.Millisecond), s.SamplesPerSecond())
}
