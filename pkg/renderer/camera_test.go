package renderer

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// fixedSampler returns the same values on every draw
type fixedSampler struct {
	v1 float64
	v2 core.Vec2
	v3 core.Vec3
}

func (s fixedSampler) Get1D() float64   { return s.v1 }
func (s fixedSampler) Get2D() core.Vec2 { return s.v2 }
func (s fixedSampler) Get3D() core.Vec3 { return s.v3 }

// centerSampler aims every camera ray through the pixel center. Its unit
// vectors are all +X.
var centerSampler = fixedSampler{
	v1: 0.5,
	v2: core.NewVec2(0.5, 0.5),
	v3: core.NewVec3(1, 0.5, 0.5),
}

func vecClose(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}

func mustCamera(t *testing.T, config CameraConfig) *Camera {
	t.Helper()
	camera, err := NewCamera(config)
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}
	return camera
}

func TestCamera_DefaultConfig(t *testing.T) {
	camera := mustCamera(t, DefaultCameraConfig())

	if camera.ImageWidth() != 100 || camera.ImageHeight() != 100 {
		t.Errorf("Expected 100x100, got %dx%d", camera.ImageWidth(), camera.ImageHeight())
	}
	if camera.PixelSamplesScale() != 0.1 {
		t.Errorf("Expected sample scale 0.1, got %f", camera.PixelSamplesScale())
	}

	u, v, w := camera.Basis()
	if !vecClose(u, core.NewVec3(1, 0, 0), 1e-12) {
		t.Errorf("Expected u = +X, got %v", u)
	}
	if !vecClose(v, core.NewVec3(0, 1, 0), 1e-12) {
		t.Errorf("Expected v = +Y, got %v", v)
	}
	if !vecClose(w, core.NewVec3(0, 0, 1), 1e-12) {
		t.Errorf("Expected w = +Z, got %v", w)
	}
}

func TestCamera_ImageHeight(t *testing.T) {
	tests := []struct {
		name        string
		width       int
		aspectRatio float64
		expected    int
	}{
		{"square", 100, 1, 100},
		{"widescreen", 400, 16.0 / 9.0, 225},
		{"rounds to nearest", 100, 1.5, 67},
		{"never below one", 1, 10, 1},
		{"tall", 10, 0.5, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultCameraConfig()
			config.ImageWidth = tt.width
			config.AspectRatio = tt.aspectRatio

			if got := mustCamera(t, config).ImageHeight(); got != tt.expected {
				t.Errorf("Expected height %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestCamera_BasisIsOrthonormal(t *testing.T) {
	config := DefaultCameraConfig()
	config.LookFrom = core.NewVec3(13, 2, 3)
	config.LookAt = core.NewVec3(0, 0, 0)
	camera := mustCamera(t, config)

	u, v, w := camera.Basis()
	for name, vec := range map[string]core.Vec3{"u": u, "v": v, "w": w} {
		if math.Abs(vec.Length()-1) > 1e-12 {
			t.Errorf("%s should be unit length, got %f", name, vec.Length())
		}
	}
	if math.Abs(u.Dot(v)) > 1e-12 || math.Abs(v.Dot(w)) > 1e-12 || math.Abs(u.Dot(w)) > 1e-12 {
		t.Errorf("Basis is not orthogonal: u=%v v=%v w=%v", u, v, w)
	}

	expectedW := core.NewVec3(13, 2, 3).Normalize()
	if !vecClose(w, expectedW, 1e-12) {
		t.Errorf("w should point from look-at to look-from, expected %v, got %v", expectedW, w)
	}
}

func TestCamera_GetRayThroughPixelCenters(t *testing.T) {
	// 90 degree fov at focus distance 10 gives a 20x20 viewport, 0.2 per pixel
	camera := mustCamera(t, DefaultCameraConfig())

	tests := []struct {
		name     string
		i, j     int
		expected core.Vec3
	}{
		{"top left", 0, 0, core.NewVec3(-9.9, 9.9, -10)},
		{"top right", 99, 0, core.NewVec3(9.9, 9.9, -10)},
		{"bottom left", 0, 99, core.NewVec3(-9.9, -9.9, -10)},
		{"near center", 50, 50, core.NewVec3(0.1, -0.1, -10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := camera.GetRay(tt.i, tt.j, centerSampler)
			if r.Origin != core.NewVec3(0, 0, 0) {
				t.Errorf("Expected origin at the camera center, got %v", r.Origin)
			}
			if !vecClose(r.Direction, tt.expected, 1e-9) {
				t.Errorf("Expected direction %v, got %v", tt.expected, r.Direction)
			}
		})
	}
}

func TestCamera_GetRayJitterStaysInPixel(t *testing.T) {
	camera := mustCamera(t, DefaultCameraConfig())
	sampler := core.NewPixelSampler(42, 0)

	for n := 0; n < 1000; n++ {
		r := camera.GetRay(0, 0, sampler)
		target := r.At(1)
		if target.X < -10-1e-9 || target.X > -9.8+1e-9 || target.Y > 10+1e-9 || target.Y < 9.8-1e-9 {
			t.Fatalf("Jittered sample %v fell outside pixel (0, 0)", target)
		}
		if math.Abs(target.Z+10) > 1e-9 {
			t.Fatalf("Sample %v is not on the focus plane", target)
		}
	}
}

func TestCamera_Defocus(t *testing.T) {
	config := DefaultCameraConfig()
	config.DefocusAngle = 10
	camera := mustCamera(t, config)
	sampler := core.NewPixelSampler(7, 0)

	radius := 10 * math.Tan(5*math.Pi/180)
	spread := false
	for n := 0; n < 1000; n++ {
		r := camera.GetRay(50, 50, sampler)
		if r.Origin.Z != 0 {
			t.Fatalf("Defocus origin %v left the lens plane", r.Origin)
		}
		if r.Origin.Length() > radius+1e-9 {
			t.Fatalf("Defocus origin %v is outside the lens radius %f", r.Origin, radius)
		}
		if r.Origin.Length() > radius/2 {
			spread = true
		}
	}
	if !spread {
		t.Error("Expected some defocus origins away from the center")
	}

	config.DefocusAngle = 0
	pinhole := mustCamera(t, config)
	for n := 0; n < 100; n++ {
		if r := pinhole.GetRay(50, 50, sampler); r.Origin != config.LookFrom {
			t.Fatalf("Pinhole camera ray starts at %v", r.Origin)
		}
	}
}

func TestCameraConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *CameraConfig)
	}{
		{"zero width", func(c *CameraConfig) { c.ImageWidth = 0 }},
		{"zero aspect ratio", func(c *CameraConfig) { c.AspectRatio = 0 }},
		{"NaN aspect ratio", func(c *CameraConfig) { c.AspectRatio = math.NaN() }},
		{"infinite aspect ratio", func(c *CameraConfig) { c.AspectRatio = math.Inf(1) }},
		{"zero samples", func(c *CameraConfig) { c.SamplesPerPixel = 0 }},
		{"negative depth", func(c *CameraConfig) { c.MaxDepth = -1 }},
		{"zero fov", func(c *CameraConfig) { c.VFov = 0 }},
		{"straight fov", func(c *CameraConfig) { c.VFov = 180 }},
		{"zero focus distance", func(c *CameraConfig) { c.FocusDistance = 0 }},
		{"negative defocus", func(c *CameraConfig) { c.DefocusAngle = -1 }},
		{"coincident look points", func(c *CameraConfig) { c.LookAt = c.LookFrom }},
		{"zero up", func(c *CameraConfig) { c.Up = core.Vec3{} }},
		{"up along view", func(c *CameraConfig) { c.Up = core.NewVec3(0, 0, -3) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultCameraConfig()
			tt.modify(&config)

			err := config.Validate()
			if !errors.Is(err, ErrInvalidCamera) {
				t.Fatalf("Expected ErrInvalidCamera, got %v", err)
			}
			if _, err := NewCamera(config); !errors.Is(err, ErrInvalidCamera) {
				t.Errorf("NewCamera should reject the config, got %v", err)
			}
		})
	}

	if err := DefaultCameraConfig().Validate(); err != nil {
		t.Errorf("Default config should be valid, got %v", err)
	}

	zeroDepth := DefaultCameraConfig()
	zeroDepth.MaxDepth = 0
	if err := zeroDepth.Validate(); err != nil {
		t.Errorf("Zero depth renders black but is valid, got %v", err)
	}
}

func TestCamera_ConfigureKeepsStateOnError(t *testing.T) {
	camera := mustCamera(t, DefaultCameraConfig())

	bad := DefaultCameraConfig()
	bad.ImageWidth = -5
	if err := camera.Configure(bad); err == nil {
		t.Fatal("Expected an error")
	}
	if camera.ImageWidth() != 100 {
		t.Errorf("Camera changed after a rejected configuration: width %d", camera.ImageWidth())
	}

	good := DefaultCameraConfig()
	good.ImageWidth = 40
	good.SamplesPerPixel = 4
	if err := camera.Configure(good); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if camera.ImageWidth() != 40 || camera.ImageHeight() != 40 || camera.PixelSamplesScale() != 0.25 {
		t.Errorf("Configure did not recompute derived state: %dx%d scale %f",
			camera.ImageWidth(), camera.ImageHeight(), camera.PixelSamplesScale())
	}
	if camera.Config() != good {
		t.Errorf("Expected Config() to return the applied config")
	}
}

func TestMergeCameraConfig(t *testing.T) {
	base := DefaultCameraConfig()

	if got := MergeCameraConfig(base, CameraConfig{}); got != base {
		t.Errorf("An empty override should change nothing, got %+v", got)
	}

	override := CameraConfig{
		ImageWidth:      640,
		SamplesPerPixel: 32,
		LookFrom:        core.NewVec3(1, 2, 3),
	}
	got := MergeCameraConfig(base, override)

	want := base
	want.ImageWidth = 640
	want.SamplesPerPixel = 32
	want.LookFrom = core.NewVec3(1, 2, 3)
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}
