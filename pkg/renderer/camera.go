package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// ErrInvalidCamera is wrapped by every camera configuration error
var ErrInvalidCamera = errors.New("invalid camera configuration")

// CameraConfig contains the user-facing camera parameters
type CameraConfig struct {
	AspectRatio     float64 // Ideal width/height ratio
	ImageWidth      int     // Rendered image width in pixels
	SamplesPerPixel int     // Random samples per pixel
	MaxDepth        int     // Maximum ray bounces into the scene
	VFov            float64 // Vertical field of view in degrees

	LookFrom core.Point3 // Point the camera is looking from
	LookAt   core.Point3 // Point the camera is looking at
	Up       core.Vec3   // Camera-relative "up" direction

	DefocusAngle  float64 // Variation angle of rays through each pixel, in degrees
	FocusDistance float64 // Distance from LookFrom to the plane of perfect focus
}

// DefaultCameraConfig returns the stock camera: a square 100 pixel image
// looking down -Z from the origin with a 90 degree field of view.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		AspectRatio:     1.0,
		ImageWidth:      100,
		SamplesPerPixel: 10,
		MaxDepth:        10,
		VFov:            90,
		LookFrom:        core.NewVec3(0, 0, 0),
		LookAt:          core.NewVec3(0, 0, -1),
		Up:              core.NewVec3(0, 1, 0),
		DefocusAngle:    0,
		FocusDistance:   10,
	}
}

// MergeCameraConfig returns base with every non-zero field of override
// applied on top. A zero DefocusAngle cannot be expressed as an override.
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	merged := base
	if override.AspectRatio != 0 {
		merged.AspectRatio = override.AspectRatio
	}
	if override.ImageWidth != 0 {
		merged.ImageWidth = override.ImageWidth
	}
	if override.SamplesPerPixel != 0 {
		merged.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth != 0 {
		merged.MaxDepth = override.MaxDepth
	}
	if override.VFov != 0 {
		merged.VFov = override.VFov
	}
	if override.LookFrom != (core.Vec3{}) {
		merged.LookFrom = override.LookFrom
	}
	if override.LookAt != (core.Vec3{}) {
		merged.LookAt = override.LookAt
	}
	if override.Up != (core.Vec3{}) {
		merged.Up = override.Up
	}
	if override.DefocusAngle != 0 {
		merged.DefocusAngle = override.DefocusAngle
	}
	if override.FocusDistance != 0 {
		merged.FocusDistance = override.FocusDistance
	}
	return merged
}

// Validate reports the first configuration value that would produce a
// degenerate camera.
func (c CameraConfig) Validate() error {
	switch {
	case c.ImageWidth < 1:
		return fmt.Errorf("%w: image width must be at least 1, got %d", ErrInvalidCamera, c.ImageWidth)
	case !(c.AspectRatio > 0) || math.IsInf(c.AspectRatio, 0):
		return fmt.Errorf("%w: aspect ratio must be positive and finite, got %g", ErrInvalidCamera, c.AspectRatio)
	case c.SamplesPerPixel < 1:
		return fmt.Errorf("%w: samples per pixel must be at least 1, got %d", ErrInvalidCamera, c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth must not be negative, got %d", ErrInvalidCamera, c.MaxDepth)
	case !(c.VFov > 0 && c.VFov < 180):
		return fmt.Errorf("%w: vertical field of view must be in (0, 180), got %g", ErrInvalidCamera, c.VFov)
	case !(c.FocusDistance > 0) || math.IsInf(c.FocusDistance, 0):
		return fmt.Errorf("%w: focus distance must be positive and finite, got %g", ErrInvalidCamera, c.FocusDistance)
	case c.DefocusAngle < 0 || c.DefocusAngle >= 180:
		return fmt.Errorf("%w: defocus angle must be in [0, 180), got %g", ErrInvalidCamera, c.DefocusAngle)
	case c.LookFrom == c.LookAt:
		return fmt.Errorf("%w: look-from and look-at are both %v", ErrInvalidCamera, c.LookFrom)
	case c.Up.LengthSquared() == 0:
		return fmt.Errorf("%w: up vector is zero", ErrInvalidCamera)
	}

	w := c.LookFrom.Subtract(c.LookAt).Normalize()
	if c.Up.Normalize().Cross(w).NearZero() {
		return fmt.Errorf("%w: up vector %v is parallel to the view direction", ErrInvalidCamera, c.Up)
	}
	return nil
}

// Camera generates primary rays for each pixel. All derived state is computed
// once by Configure and is read-only afterwards, so a Camera can be shared
// between render workers.
type Camera struct {
	config CameraConfig

	imageHeight       int
	pixelSamplesScale float64

	center      core.Point3 // Camera center
	pixel00Loc  core.Point3 // Location of pixel 0, 0
	pixelDeltaU core.Vec3   // Offset to pixel to the right
	pixelDeltaV core.Vec3   // Offset to pixel below

	u, v, w core.Vec3 // Camera frame basis vectors

	defocusDiskU core.Vec3 // Defocus disk horizontal radius
	defocusDiskV core.Vec3 // Defocus disk vertical radius
}

// NewCamera validates config and returns a ready-to-use camera
func NewCamera(config CameraConfig) (*Camera, error) {
	c := &Camera{}
	if err := c.Configure(config); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure replaces the camera parameters and recomputes the derived
// viewport. The camera is left unchanged if config is invalid.
func (c *Camera) Configure(config CameraConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	imageHeight := int(math.Round(float64(config.ImageWidth) / config.AspectRatio))
	if imageHeight < 1 {
		imageHeight = 1
	}

	// Viewport dimensions
	theta := degreesToRadians(config.VFov)
	h := math.Tan(theta / 2)
	viewportHeight := 2 * h * config.FocusDistance
	viewportWidth := viewportHeight * (float64(config.ImageWidth) / float64(imageHeight))

	// Orthonormal basis for the camera frame
	w := config.LookFrom.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	// Vectors across the horizontal and down the vertical viewport edges
	viewportU := u.Multiply(viewportWidth)
	viewportV := v.Negate().Multiply(viewportHeight)

	pixelDeltaU := viewportU.Divide(float64(config.ImageWidth))
	pixelDeltaV := viewportV.Divide(float64(imageHeight))

	viewportUpperLeft := config.LookFrom.
		Subtract(w.Multiply(config.FocusDistance)).
		Subtract(viewportU.Divide(2)).
		Subtract(viewportV.Divide(2))

	defocusRadius := config.FocusDistance * math.Tan(degreesToRadians(config.DefocusAngle/2))

	*c = Camera{
		config:            config,
		imageHeight:       imageHeight,
		pixelSamplesScale: 1.0 / float64(config.SamplesPerPixel),
		center:            config.LookFrom,
		pixel00Loc:        viewportUpperLeft.Add(pixelDeltaU.Add(pixelDeltaV).Multiply(0.5)),
		pixelDeltaU:       pixelDeltaU,
		pixelDeltaV:       pixelDeltaV,
		u:                 u,
		v:                 v,
		w:                 w,
		defocusDiskU:      u.Multiply(defocusRadius),
		defocusDiskV:      v.Multiply(defocusRadius),
	}
	return nil
}

// GetRay returns a ray from the defocus disk toward a random point inside
// the unit square around pixel (i, j).
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	offset := sampleSquare(sampler)
	pixelSample := c.pixel00Loc.
		Add(c.pixelDeltaU.Multiply(float64(i) + offset.X)).
		Add(c.pixelDeltaV.Multiply(float64(j) + offset.Y))

	origin := c.center
	if c.config.DefocusAngle > 0 {
		origin = c.defocusDiskSample(sampler)
	}
	return core.NewRay(origin, pixelSample.Subtract(origin))
}

// sampleSquare returns a point in the [-.5,-.5]-[+.5,+.5] unit square
func sampleSquare(sampler core.Sampler) core.Vec2 {
	p := sampler.Get2D()
	return core.NewVec2(p.X-0.5, p.Y-0.5)
}

func (c *Camera) defocusDiskSample(sampler core.Sampler) core.Point3 {
	p := core.RandomInUnitDisk(sampler)
	return c.center.Add(c.defocusDiskU.Multiply(p.X)).Add(c.defocusDiskV.Multiply(p.Y))
}

// Config returns the parameters the camera was configured with
func (c *Camera) Config() CameraConfig { return c.config }

// ImageWidth returns the rendered width in pixels
func (c *Camera) ImageWidth() int { return c.config.ImageWidth }

// ImageHeight returns the rendered height in pixels
func (c *Camera) ImageHeight() int { return c.imageHeight }

// SamplesPerPixel returns the number of rays traced per pixel
func (c *Camera) SamplesPerPixel() int { return c.config.SamplesPerPixel }

// MaxDepth returns the bounce limit for each camera ray
func (c *Camera) MaxDepth() int { return c.config.MaxDepth }

// PixelSamplesScale returns the factor that averages a pixel's summed samples
func (c *Camera) PixelSamplesScale() float64 { return c.pixelSamplesScale }

// Basis returns the camera frame: u points right, v up and w backwards
func (c *Camera) Basis() (u, v, w core.Vec3) { return c.u, c.v, c.w }

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
