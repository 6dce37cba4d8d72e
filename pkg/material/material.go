package material

import (
	"fmt"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// Kind identifies which scattering model a Material uses
type Kind int

const (
	// KindUnknown is the zero value; such materials absorb every ray
	KindUnknown Kind = iota
	KindLambertian
	KindMetal
	KindDielectric
)

func (k Kind) String() string {
	switch k {
	case KindLambertian:
		return "lambertian"
	case KindMetal:
		return "metal"
	case KindDielectric:
		return "dielectric"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Material is a closed set of scattering models. It is a small value type and
// is copied into every HitRecord.
type Material struct {
	Kind            Kind
	Albedo          core.Color // Lambertian and Metal reflectance
	Fuzz            float64    // Metal roughness in [0, 1]
	RefractiveIndex float64    // Dielectric index relative to the enclosing medium
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Attenuation core.Color // Color attenuation
	Scattered   core.Ray   // The scattered ray
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Point3 // Point of intersection
	Normal    core.Vec3   // Unit normal, facing against the incoming ray
	T         float64     // Parameter t along the ray
	FrontFace bool        // Whether ray hit the front face
	Material  Material    // Material of the hit object
}

// SetFaceNormal sets the normal vector and determines front/back face.
// outwardNormal must have unit length.
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// Scatter decides whether rayIn scatters at hit. A false result means the ray
// was absorbed.
func (m Material) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	switch m.Kind {
	case KindLambertian:
		return m.scatterLambertian(hit, sampler)
	case KindMetal:
		return m.scatterMetal(rayIn, hit, sampler)
	case KindDielectric:
		return m.scatterDielectric(rayIn, hit, sampler)
	default:
		return ScatterResult{}, false
	}
}
