package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/output"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
	"github.com/golang/glog"
)

// SSEEvent is one Server-Sent Event. Data is JSON encoded.
type SSEEvent struct {
	Type string `json:"type"` // "console", "progress", "complete", "error"
	Data string `json:"data"`
}

// ProgressUpdate reports the scanlines still to be rendered
type ProgressUpdate struct {
	Remaining int   `json:"remaining"`
	Total     int   `json:"total"`
	ElapsedMs int64 `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	TotalSamples     int64   `json:"totalSamples"`
	SamplesPerPixel  int     `json:"samplesPerPixel"`
	SamplesPerSecond float64 `json:"samplesPerSecond"`
	ElapsedMs        int64   `json:"elapsedMs"`
}

// RenderResult is sent once the image is complete
type RenderResult struct {
	Scene     string `json:"scene"`
	Seed      uint64 `json:"seed"`
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
}

// handleRender renders a scene while streaming console output and progress
// via SSE, then sends the finished image.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sc, err := req.newScene()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	setSSEHeaders(w)
	ctx := r.Context()

	// All writes to w happen on the writer goroutine
	events := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writeSSEEvents(ctx, w, events)
	}()

	consoleChan := make(chan ConsoleMessage, 50)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		streamConsoleMessages(consoleChan, events)
	}()

	result, err := renderScene(ctx, sc, req.Seed,
		renderer.WithLogger(NewWebLogger(fmt.Sprintf("render-%d", time.Now().UnixNano()), consoleChan)),
		withProgressEvents(ctx, events),
	)

	// The raytracer has stopped logging once renderScene returns
	close(consoleChan)
	<-consoleDone

	if err != nil {
		glog.Warningf("Render of %q failed: %v", sc.Name, err)
		emit(ctx, events, "error", err.Error())
	} else {
		emit(ctx, events, "complete", result)
	}
	close(events)
	<-writerDone
}

// handleImage renders a scene and responds with the PNG
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sc, err := req.newScene()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	img := output.NewImageWriter()
	rt, err := sc.NewRaytracer(renderer.WithSeed(req.Seed))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := rt.Render(r.Context(), img); err != nil {
		if !errors.Is(err, context.Canceled) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img.Image()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Render-Seed", fmt.Sprint(rt.Seed()))
	w.Write(buf.Bytes())
}

// renderScene renders sc into memory and packages the result for the client
func renderScene(ctx context.Context, sc *scene.Scene, seed uint64, opts ...renderer.Option) (*RenderResult, error) {
	opts = append([]renderer.Option{renderer.WithSeed(seed)}, opts...)
	rt, err := sc.NewRaytracer(opts...)
	if err != nil {
		return nil, err
	}

	img := output.NewImageWriter()
	stats, err := rt.Render(ctx, img)
	if err != nil {
		return nil, err
	}

	imageData, err := imageToBase64PNG(img.Image())
	if err != nil {
		return nil, fmt.Errorf("while encoding image: %w", err)
	}
	return &RenderResult{
		Scene:     sc.Name,
		Seed:      rt.Seed(),
		ImageData: imageData,
		Stats: Stats{
			Width:            stats.Width,
			Height:           stats.Height,
			TotalSamples:     int64(stats.TotalSamples),
			SamplesPerPixel:  stats.SamplesPerPixel,
			SamplesPerSecond: stats.SamplesPerSecond(),
			ElapsedMs:        stats.Elapsed.Milliseconds(),
		},
	}, nil
}

// withProgressEvents forwards scanline progress to the client
func withProgressEvents(ctx context.Context, events chan<- SSEEvent) renderer.Option {
	start := time.Now()
	total := -1
	return renderer.WithProgress(func(remaining int) {
		if total < 0 {
			total = remaining
		}
		emit(ctx, events, "progress", ProgressUpdate{
			Remaining: remaining,
			Total:     total,
			ElapsedMs: time.Since(start).Milliseconds(),
		})
	})
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// emit queues an event unless the client has gone away
func emit(ctx context.Context, events chan<- SSEEvent, eventType string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		glog.Warningf("Dropping %s event: %v", eventType, err)
		return
	}
	select {
	case events <- SSEEvent{Type: eventType, Data: string(data)}:
	case <-ctx.Done():
	}
}

// writeSSEEvents writes events until the channel is closed. After the client
// disconnects it keeps draining so senders never block.
func writeSSEEvents(ctx context.Context, w http.ResponseWriter, events <-chan SSEEvent) {
	failed := false
	for event := range events {
		if failed || ctx.Err() != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			failed = true
			continue
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

// streamConsoleMessages turns console messages into SSE events
func streamConsoleMessages(consoleChan <-chan ConsoleMessage, events chan<- SSEEvent) {
	for msg := range consoleChan {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		events <- SSEEvent{Type: "console", Data: string(data)}
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
