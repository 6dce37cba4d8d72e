package renderer

import (
	"fmt"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
)

// shadowAcne keeps scattered rays from re-hitting the surface they left
const shadowAcne = 0.001

var (
	skyTop    = core.NewVec3(0.5, 0.7, 1.0)
	skyBottom = core.NewVec3(1.0, 1.0, 1.0)

	intensity = core.NewInterval(0.000, 0.999)
)

// RGB is a quantized 8-bit display color
type RGB struct {
	R, G, B uint8
}

// String formats the color as a PPM pixel triple
func (c RGB) String() string {
	return fmt.Sprintf("%d %d %d", c.R, c.G, c.B)
}

// LinearToGamma applies the gamma-2 transfer function. Non-positive
// components map to 0.
func LinearToGamma(linear float64) float64 {
	if linear > 0 {
		return math.Sqrt(linear)
	}
	return 0
}

// QuantizeColor gamma-encodes a linear color and maps each component to a
// byte in [0, 255].
func QuantizeColor(c core.Color) RGB {
	quantize := func(x float64) uint8 {
		return uint8(256 * intensity.Clamp(LinearToGamma(x)))
	}
	return RGB{R: quantize(c.X), G: quantize(c.Y), B: quantize(c.Z)}
}

// BackgroundColor returns the sky gradient seen by rays that escape the scene
func BackgroundColor(r core.Ray) core.Color {
	unitDirection := r.Direction.Normalize()
	a := 0.5 * (unitDirection.Y + 1.0)
	return skyBottom.Multiply(1.0 - a).Add(skyTop.Multiply(a))
}

// RayColor estimates the radiance arriving along r. depth bounds the number
// of further bounces; once it reaches zero no more light is gathered.
func RayColor(r core.Ray, depth int, world geometry.Hittable, sampler core.Sampler) core.Color {
	if depth <= 0 {
		return core.Color{}
	}

	hit, ok := world.Hit(r, core.NewInterval(shadowAcne, math.Inf(1)))
	if !ok {
		return BackgroundColor(r)
	}

	scatter, ok := hit.Material.Scatter(r, hit, sampler)
	if !ok {
		return core.Color{}
	}
	return scatter.Attenuation.MultiplyVec(RayColor(scatter.Scattered, depth-1, world, sampler))
}
