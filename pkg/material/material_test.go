package material

import (
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// fixedSampler returns the same values on every draw
type fixedSampler struct {
	v1 float64
	v3 core.Vec3
}

func (f fixedSampler) Get1D() float64   { return f.v1 }
func (f fixedSampler) Get2D() core.Vec2 { return core.NewVec2(f.v1, f.v1) }
func (f fixedSampler) Get3D() core.Vec3 { return f.v3 }

// downSampler makes RandomUnitVector return (0, 0, -1)
var downSampler = fixedSampler{v1: 0.5, v3: core.NewVec3(0.5, 0.5, 0)}

func TestHitRecord_SetFaceNormal(t *testing.T) {
	outward := core.NewVec3(0, 0, 1)

	var front HitRecord
	front.SetFaceNormal(core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1)), outward)
	if !front.FrontFace || front.Normal != outward {
		t.Errorf("Expected front face with outward normal, got front=%t normal=%v", front.FrontFace, front.Normal)
	}

	var back HitRecord
	back.SetFaceNormal(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1)), outward)
	if back.FrontFace || back.Normal != outward.Negate() {
		t.Errorf("Expected back face with flipped normal, got front=%t normal=%v", back.FrontFace, back.Normal)
	}
}

func TestMaterial_ZeroValueAbsorbs(t *testing.T) {
	var m Material
	hit := HitRecord{Normal: core.NewVec3(0, 1, 0)}
	if _, ok := m.Scatter(core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0)), hit, downSampler); ok {
		t.Error("Zero-value material should absorb")
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		KindLambertian: "lambertian",
		KindMetal:      "metal",
		KindDielectric: "dielectric",
		KindUnknown:    "Kind(0)",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}

func TestLambertian_Scatter(t *testing.T) {
	albedo := core.NewVec3(0.8, 0.3, 0.3)
	lambertian := NewLambertian(albedo)
	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 0, 1),
		FrontFace: true,
		Material:  lambertian,
	}
	rayIn := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))
	sampler := core.NewPixelSampler(42, 0)

	for i := 0; i < 1000; i++ {
		scatter, ok := lambertian.Scatter(rayIn, hit, sampler)
		if !ok {
			t.Fatal("Lambertian should always scatter")
		}
		if scatter.Attenuation != albedo {
			t.Fatalf("Expected attenuation %v, got %v", albedo, scatter.Attenuation)
		}
		if scatter.Scattered.Origin != hit.Point {
			t.Fatalf("Scattered ray should start at the hit point, got %v", scatter.Scattered.Origin)
		}
		// normal + unit vector never points below the tangent plane
		if scatter.Scattered.Direction.Dot(hit.Normal) < 0 {
			t.Fatalf("Scattered direction %v points into the surface", scatter.Scattered.Direction)
		}
	}
}

func TestLambertian_DegenerateDirectionFallsBackToNormal(t *testing.T) {
	lambertian := NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	hit := HitRecord{Normal: core.NewVec3(0, 0, 1), FrontFace: true}

	scatter, ok := lambertian.Scatter(core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)), hit, downSampler)
	if !ok {
		t.Fatal("Lambertian should always scatter")
	}
	if scatter.Scattered.Direction != hit.Normal {
		t.Errorf("Expected fallback to the normal %v, got %v", hit.Normal, scatter.Scattered.Direction)
	}
}
