package material

import (
	"math"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

func TestDielectric_BasicBehavior(t *testing.T) {
	glass := NewDielectric(1.5)

	rayDirection := core.NewVec3(1, -1, 0).Normalize() // 45-degree angle
	ray := core.NewRay(core.NewVec3(0, 1, 0), rayDirection)
	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		T:         1.0,
		FrontFace: true,
		Material:  glass,
	}

	hasRefraction := false
	for seed := uint64(0); seed < 200; seed++ {
		result, scattered := glass.Scatter(ray, hit, core.NewPixelSampler(seed, 0))
		if !scattered {
			t.Fatal("Dielectric should always scatter")
		}
		if result.Attenuation != core.NewVec3(1, 1, 1) {
			t.Fatalf("Expected white attenuation, got %v", result.Attenuation)
		}
		if result.Scattered.Direction.Y < 0 {
			hasRefraction = true
		}
	}

	// Reflection probability at 45° is about 5%, so refraction must show up
	if !hasRefraction {
		t.Error("Expected to see refraction in at least some cases")
	}
}

func TestDielectric_TotalInternalReflection(t *testing.T) {
	glass := NewDielectric(1.5)

	// Shallow ray leaving the glass
	rayDirection := core.NewVec3(1, -0.1, 0).Normalize()
	ray := core.NewRay(core.NewVec3(0, 0, 0), rayDirection)
	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		T:         1.0,
		FrontFace: false,
		Material:  glass,
	}

	cosTheta := -rayDirection.Dot(hit.Normal)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)
	if 1.5*sinTheta <= 1.0 {
		t.Fatalf("Test setup error: this angle should cause total internal reflection")
	}

	for i := uint64(0); i < 10; i++ {
		// 0.999 never falls below the Schlick term, so only TIR can reflect
		result, scattered := glass.Scatter(ray, hit, fixedSampler{v1: 0.999})
		if !scattered {
			t.Error("Dielectric should always scatter")
		}
		expected := core.Reflect(rayDirection, hit.Normal)
		if result.Scattered.Direction.Subtract(expected).Length() > 1e-12 {
			t.Errorf("Expected reflection %v, got %v", expected, result.Scattered.Direction)
		}
	}
}

func TestDielectric_SchlickChoosesReflection(t *testing.T) {
	glass := NewDielectric(1.5)
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))
	hit := HitRecord{Normal: core.NewVec3(0, 1, 0), FrontFace: true}

	// At normal incidence the reflectance is 0.04
	reflected, _ := glass.Scatter(ray, hit, fixedSampler{v1: 0.01})
	if reflected.Scattered.Direction != core.NewVec3(0, 1, 0) {
		t.Errorf("Draw below reflectance should reflect, got %v", reflected.Scattered.Direction)
	}

	refracted, _ := glass.Scatter(ray, hit, fixedSampler{v1: 0.5})
	if refracted.Scattered.Direction.Subtract(core.NewVec3(0, -1, 0)).Length() > 1e-12 {
		t.Errorf("Draw above reflectance should refract straight through, got %v", refracted.Scattered.Direction)
	}
}

func TestDielectric_EqualIndexPassesStraightThrough(t *testing.T) {
	matched := NewDielectric(1.0)
	direction := core.NewVec3(0, 0, -1)
	ray := core.NewRay(core.NewVec3(0, 0, 1), direction)
	hit := HitRecord{Normal: core.NewVec3(0, 0, 1), FrontFace: true}

	sampler := core.NewPixelSampler(11, 0)
	for i := 0; i < 100; i++ {
		result, ok := matched.Scatter(ray, hit, sampler)
		if !ok {
			t.Fatal("Dielectric should always scatter")
		}
		if result.Scattered.Direction.Subtract(direction).Length() > 1e-12 {
			t.Fatalf("Expected direction %v, got %v", direction, result.Scattered.Direction)
		}
	}
}

func TestReflectance(t *testing.T) {
	tests := []struct {
		name     string
		cosine   float64
		ratio    float64
		expected float64
	}{
		{"normal incidence entering glass", 1, 1 / 1.5, 0.04},
		{"normal incidence leaving glass", 1, 1.5, 0.04},
		{"grazing incidence", 0, 1.5, 1},
		{"matched indices", 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reflectance(tt.cosine, tt.ratio); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Reflectance(%f, %f) = %f, want %f", tt.cosine, tt.ratio, got, tt.expected)
			}
		})
	}
}
