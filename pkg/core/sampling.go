package core

import "math/rand/v2"

// Vec2 holds a pair of sample values
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a Go random generator. It is not safe for concurrent use.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewPixelSampler returns a sampler over an independent PCG stream selected by
// seed and stream index. The same pair always produces the same sequence.
func NewPixelSampler(seed, index uint64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewPCG(seed, index)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

type globalSampler struct{}

func (globalSampler) Get1D() float64 { return rand.Float64() }
func (globalSampler) Get2D() Vec2    { return NewVec2(rand.Float64(), rand.Float64()) }
func (globalSampler) Get3D() Vec3    { return NewVec3(rand.Float64(), rand.Float64(), rand.Float64()) }

// GlobalSampler returns the process-wide uniform source. It is safe for
// concurrent use and unseeded.
func GlobalSampler() Sampler {
	return globalSampler{}
}

// RandomFloat returns a uniform value in [min, max)
func RandomFloat(s Sampler, min, max float64) float64 {
	return min + (max-min)*s.Get1D()
}

// RandomVec3 returns a vector with each component uniform in [0, 1)
func RandomVec3(s Sampler) Vec3 {
	return s.Get3D()
}

// RandomVec3Range returns a vector with each component uniform in [min, max)
func RandomVec3Range(s Sampler, min, max float64) Vec3 {
	p := s.Get3D()
	return NewVec3(min+(max-min)*p.X, min+(max-min)*p.Y, min+(max-min)*p.Z)
}

// RandomUnitVector rejection-samples the cube [-1,1]^3 until the point lies
// inside the unit ball, then projects it onto the sphere.
func RandomUnitVector(s Sampler) Vec3 {
	for {
		p := RandomVec3Range(s, -1, 1)
		lensq := p.LengthSquared()
		if 1e-160 < lensq && lensq <= 1 {
			return p.Divide(p.Length())
		}
	}
}

// RandomOnHemisphere returns a unit vector in the hemisphere around normal
func RandomOnHemisphere(s Sampler, normal Vec3) Vec3 {
	onUnitSphere := RandomUnitVector(s)
	if onUnitSphere.Dot(normal) > 0 {
		return onUnitSphere
	}
	return onUnitSphere.Negate()
}

// RandomInUnitDisk generates a random point in a unit disk (for depth of field)
func RandomInUnitDisk(s Sampler) Vec3 {
	for {
		// Generate random point in [-1,1] x [-1,1] square
		u := s.Get2D()
		p := NewVec3(2*u.X-1, 2*u.Y-1, 0)
		if p.LengthSquared() < 1 {
			return p
		}
	}
}
