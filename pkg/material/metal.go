package material

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// NewMetal creates a new metal material
func NewMetal(albedo core.Color, fuzz float64) Material {
	// Clamp fuzz to valid range
	if fuzz > 1.0 {
		fuzz = 1.0
	}
	if fuzz < 0.0 {
		fuzz = 0.0
	}
	return Material{Kind: KindMetal, Albedo: albedo, Fuzz: fuzz}
}

func (m Material) scatterMetal(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Materials built as struct literals skip NewMetal's clamp
	fuzz := min(m.Fuzz, 1.0)

	reflected := core.Reflect(rayIn.Direction, hit.Normal).Normalize()
	reflected = reflected.Add(core.RandomUnitVector(sampler).Multiply(fuzz))
	scattered := core.NewRay(hit.Point, reflected)

	// Fuzzing may push the ray below the surface; absorb it then
	scatters := scattered.Direction.Dot(hit.Normal) > 0

	return ScatterResult{
		Attenuation: m.Albedo,
		Scattered:   scattered,
	}, scatters
}
