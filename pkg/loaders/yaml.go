package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
	"gopkg.in/yaml.v3"
)

// vec3 decodes a three element YAML sequence such as [0, 1, 0]
type vec3 core.Vec3

func (v *vec3) UnmarshalYAML(node *yaml.Node) error {
	var xyz []float64
	if err := node.Decode(&xyz); err != nil {
		return err
	}
	if len(xyz) != 3 {
		return fmt.Errorf("line %d: expected 3 components, got %d", node.Line, len(xyz))
	}
	*v = vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	return nil
}

// yamlCamera mirrors renderer.CameraConfig. Fields left out of the file keep
// their default values.
type yamlCamera struct {
	AspectRatio     float64 `yaml:"aspectRatio"`
	ImageWidth      int     `yaml:"imageWidth"`
	SamplesPerPixel int     `yaml:"samplesPerPixel"`
	MaxDepth        int     `yaml:"maxDepth"`
	VFov            float64 `yaml:"vfov"`
	LookFrom        vec3    `yaml:"lookFrom"`
	LookAt          vec3    `yaml:"lookAt"`
	Up              vec3    `yaml:"up"`
	DefocusAngle    float64 `yaml:"defocusAngle"`
	FocusDistance   float64 `yaml:"focusDistance"`
}

func newYAMLCamera(c renderer.CameraConfig) yamlCamera {
	return yamlCamera{
		AspectRatio:     c.AspectRatio,
		ImageWidth:      c.ImageWidth,
		SamplesPerPixel: c.SamplesPerPixel,
		MaxDepth:        c.MaxDepth,
		VFov:            c.VFov,
		LookFrom:        vec3(c.LookFrom),
		LookAt:          vec3(c.LookAt),
		Up:              vec3(c.Up),
		DefocusAngle:    c.DefocusAngle,
		FocusDistance:   c.FocusDistance,
	}
}

func (c yamlCamera) config() renderer.CameraConfig {
	return renderer.CameraConfig{
		AspectRatio:     c.AspectRatio,
		ImageWidth:      c.ImageWidth,
		SamplesPerPixel: c.SamplesPerPixel,
		MaxDepth:        c.MaxDepth,
		VFov:            c.VFov,
		LookFrom:        core.Vec3(c.LookFrom),
		LookAt:          core.Vec3(c.LookAt),
		Up:              core.Vec3(c.Up),
		DefocusAngle:    c.DefocusAngle,
		FocusDistance:   c.FocusDistance,
	}
}

type yamlMaterial struct {
	Type            string   `yaml:"type"`
	Albedo          *vec3    `yaml:"albedo"`
	Fuzz            float64  `yaml:"fuzz"`
	RefractiveIndex *float64 `yaml:"refractiveIndex"`
}

// yamlMaterialRef is either the name of an entry in the materials section or
// an inline material.
type yamlMaterialRef struct {
	Name   string
	Inline *yamlMaterial
	line   int
}

func (r *yamlMaterialRef) UnmarshalYAML(node *yaml.Node) error {
	r.line = node.Line
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&r.Name)
	}
	r.Inline = &yamlMaterial{}
	return decodeStrict(node, r.Inline)
}

type yamlSphere struct {
	Center   vec3            `yaml:"center"`
	Radius   float64         `yaml:"radius"`
	Material yamlMaterialRef `yaml:"material"`
}

type yamlScene struct {
	Name      string                  `yaml:"name"`
	Camera    yamlCamera              `yaml:"camera"`
	Materials map[string]yamlMaterial `yaml:"materials"`
	Spheres   []yamlSphere            `yaml:"spheres"`
}

// decodeStrict decodes node into out, rejecting unknown fields. Custom
// unmarshalers do not inherit the decoder's KnownFields setting.
func decodeStrict(node *yaml.Node, out interface{}) error {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	return nil
}

// buildMaterial converts a material description into a material
func buildMaterial(m yamlMaterial) (material.Material, error) {
	switch m.Type {
	case "lambertian":
		if m.Albedo == nil {
			return material.Material{}, fmt.Errorf("%w: lambertian needs an albedo", ErrInvalidScene)
		}
		return material.NewLambertian(core.Vec3(*m.Albedo)), nil
	case "metal":
		if m.Albedo == nil {
			return material.Material{}, fmt.Errorf("%w: metal needs an albedo", ErrInvalidScene)
		}
		return material.NewMetal(core.Vec3(*m.Albedo), m.Fuzz), nil
	case "dielectric":
		if m.RefractiveIndex == nil || *m.RefractiveIndex <= 0 {
			return material.Material{}, fmt.Errorf("%w: dielectric needs a positive refractiveIndex", ErrInvalidScene)
		}
		return material.NewDielectric(*m.RefractiveIndex), nil
	}
	return material.Material{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, m.Type)
}

// ParseYAML reads a YAML scene description. name is used when the file does
// not set one.
func ParseYAML(r io.Reader, name string) (*scene.Scene, error) {
	file := yamlScene{
		Name:   name,
		Camera: newYAMLCamera(renderer.DefaultCameraConfig()),
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("while decoding YAML scene: %w", err)
	}

	// Build named materials in a stable order so errors are reproducible
	names := make([]string, 0, len(file.Materials))
	for n := range file.Materials {
		names = append(names, n)
	}
	sort.Strings(names)
	materials := make(map[string]material.Material, len(names))
	for _, n := range names {
		m, err := buildMaterial(file.Materials[n])
		if err != nil {
			return nil, fmt.Errorf("while building material %q: %w", n, err)
		}
		materials[n] = m
	}

	world := geometry.NewHittableList()
	for i, s := range file.Spheres {
		var m material.Material
		switch {
		case s.Material.Inline != nil:
			var err error
			if m, err = buildMaterial(*s.Material.Inline); err != nil {
				return nil, fmt.Errorf("while building material of sphere %d: %w", i, err)
			}
		case s.Material.Name != "":
			var ok bool
			if m, ok = materials[s.Material.Name]; !ok {
				return nil, fmt.Errorf("sphere %d (line %d): %w: no material named %q", i, s.Material.line, ErrUnknownMaterial, s.Material.Name)
			}
		default:
			return nil, fmt.Errorf("%w: sphere %d has no material", ErrInvalidScene, i)
		}
		world.Add(geometry.NewSphere(core.Vec3(s.Center), s.Radius, m))
	}

	return &scene.Scene{Name: file.Name, World: world, Camera: file.Camera.config()}, nil
}

// LoadYAML loads a YAML scene file
func LoadYAML(filename string) (*scene.Scene, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("while opening scene file: %w", err)
	}
	defer f.Close()

	s, err := ParseYAML(f, sceneName(filename))
	if err != nil {
		return nil, fmt.Errorf("while loading %s: %w", filename, err)
	}
	return s, nil
}
