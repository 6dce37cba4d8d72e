// Package scene holds the built-in worlds and the registry used to select
// them by name.
package scene

import (
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name   string
	World  *geometry.HittableList
	Camera renderer.CameraConfig
}

// NewCamera builds the camera described by the scene's configuration
func (s *Scene) NewCamera() (*renderer.Camera, error) {
	return renderer.NewCamera(s.Camera)
}

// NewRaytracer builds a raytracer for the scene. The scene name is attached
// to the render's metrics and traces.
func (s *Scene) NewRaytracer(opts ...renderer.Option) (*renderer.Raytracer, error) {
	camera, err := s.NewCamera()
	if err != nil {
		return nil, err
	}
	opts = append([]renderer.Option{renderer.WithSceneName(s.Name)}, opts...)
	return renderer.NewRaytracer(s.World, camera, opts...), nil
}

// applyOverrides merges the first camera override, if any, into config
func applyOverrides(config renderer.CameraConfig, cameraOverrides []renderer.CameraConfig) renderer.CameraConfig {
	if len(cameraOverrides) > 0 {
		return renderer.MergeCameraConfig(config, cameraOverrides[0])
	}
	return config
}
