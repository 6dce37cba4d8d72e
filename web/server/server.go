// Package server renders the built-in scenes over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
	"github.com/golang/glog"
)

// Server handles web requests for the raytracer
type Server struct {
	port int
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	return &Server{port: port}
}

// RenderRequest represents a render request from the client. Zero values keep
// the scene's own settings.
type RenderRequest struct {
	Scene   string `json:"scene"`
	Width   int    `json:"width"`
	Samples int    `json:"samples"`
	Depth   int    `json:"depth"`
	Seed    uint64 `json:"seed"`
}

// SceneConfig describes a built-in scene
type SceneConfig struct {
	Name            string  `json:"name"`
	Objects         int     `json:"objects"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	SamplesPerPixel int     `json:"samplesPerPixel"`
	MaxDepth        int     `json:"maxDepth"`
	VFov            float64 `json:"vfov"`
	DefocusAngle    float64 `json:"defocusAngle"`
	FocusDistance   float64 `json:"focusDistance"`
}

// Handler returns the server's routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/image", s.handleImage)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),

		// Renders stream for as long as they take, so there is no WriteTimeout
		ReadTimeout:    30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		glog.Infof("Starting web server on http://localhost%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("while shutting down web server: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scene names
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scene.Names())
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sc, err := createScene(r.URL.Query().Get("scene"), renderer.CameraConfig{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	camera, err := sc.NewCamera()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, SceneConfig{
		Name:            sc.Name,
		Objects:         sc.World.Len(),
		Width:           camera.ImageWidth(),
		Height:          camera.ImageHeight(),
		SamplesPerPixel: camera.SamplesPerPixel(),
		MaxDepth:        camera.MaxDepth(),
		VFov:            sc.Camera.VFov,
		DefocusAngle:    sc.Camera.DefocusAngle,
		FocusDistance:   sc.Camera.FocusDistance,
	})
}

// parseRenderRequest parses and range-checks the query parameters
func parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 1, 2000); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 1, 10000); err != nil {
		return nil, err
	}
	if req.Depth, err = parseIntParam(query, "depth", 1, 500); err != nil {
		return nil, err
	}
	if v := query.Get("seed"); v != "" {
		if req.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", v)
		}
	}

	if req.Width > 800 && req.Samples > 100 {
		glog.Warningf("Render warning: %d pixels wide at %d samples may render slowly", req.Width, req.Samples)
	}
	return req, nil
}

// parseIntParam parses an optional integer parameter. Missing parameters
// are zero.
func parseIntParam(values url.Values, key string, min, max int) (int, error) {
	value := values.Get(key)
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}
	if parsed < min || parsed > max {
		return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
	}
	return parsed, nil
}

// createScene builds the named built-in scene with overrides applied
func createScene(name string, overrides renderer.CameraConfig) (*scene.Scene, error) {
	build, err := scene.Lookup(name)
	if err != nil {
		return nil, err
	}
	return build(overrides), nil
}

func (req *RenderRequest) newScene() (*scene.Scene, error) {
	return createScene(req.Scene, renderer.CameraConfig{
		ImageWidth:      req.Width,
		SamplesPerPixel: req.Samples,
		MaxDepth:        req.Depth,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.Warningf("Writing JSON response: %v", err)
	}
}
