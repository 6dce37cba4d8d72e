package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// ErrUnknownScene is returned by Lookup for names without a built-in scene
var ErrUnknownScene = errors.New("unknown scene")

// Builder creates a scene, applying the first camera override if given
type Builder func(cameraOverrides ...renderer.CameraConfig) *Scene

var builtins = map[string]Builder{
	"default": NewDefaultScene,
	"random-spheres": func(cameraOverrides ...renderer.CameraConfig) *Scene {
		return NewRandomSpheresScene(DefaultRandomSpheresSeed, cameraOverrides...)
	},
	"three-spheres": NewThreeSpheresScene,
}

// Lookup returns the builder for the named built-in scene
func Lookup(name string) (Builder, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownScene, name, Names())
	}
	return b, nil
}

// Names lists the built-in scenes in sorted order
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
