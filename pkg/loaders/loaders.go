// Package loaders reads scene descriptions from YAML and PBRT files.
package loaders

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

var (
	// ErrInvalidScene is wrapped by errors for malformed scene content
	ErrInvalidScene = errors.New("invalid scene")
	// ErrUnknownMaterial is wrapped when a material type or name cannot be resolved
	ErrUnknownMaterial = errors.New("unknown material")
	// ErrUnsupported is wrapped when a scene file uses a feature this renderer lacks
	ErrUnsupported = errors.New("unsupported scene feature")
	// ErrUnknownFormat is returned for files with an unrecognized extension
	ErrUnknownFormat = errors.New("unknown scene file format")
)

// LoadScene loads a scene file, choosing the format from its extension
func LoadScene(filename string) (*scene.Scene, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		return LoadYAML(filename)
	case ".pbrt":
		return LoadPBRT(filename)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filename)
	}
}

// IsSceneFile reports whether LoadScene understands the file's extension
func IsSceneFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml", ".pbrt":
		return true
	}
	return false
}

// sceneName derives a scene name from a file path: "dir/spheres.yaml" is "spheres"
func sceneName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
