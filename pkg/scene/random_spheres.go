package scene

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// DefaultRandomSpheresSeed is the layout used by the "random-spheres" entry
const DefaultRandomSpheresSeed = 42

// NewRandomSpheresScene creates a grid of small randomly placed spheres
// around three large ones: glass in the middle, diffuse brown behind and a
// mirror in front. The same seed always produces the same layout.
func NewRandomSpheresScene(seed uint64, cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := applyOverrides(renderer.CameraConfig{
		AspectRatio:     16.0 / 9.0,
		ImageWidth:      1200,
		SamplesPerPixel: 500,
		MaxDepth:        50,
		VFov:            20,
		LookFrom:        core.NewVec3(13, 2, 3),
		LookAt:          core.NewVec3(0, 0, 0),
		Up:              core.NewVec3(0, 1, 0),
		DefocusAngle:    0,
		FocusDistance:   10,
	}, cameraOverrides)

	random := core.NewPixelSampler(seed, 0)
	world := geometry.NewHittableList()

	ground := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	world.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, ground))

	// Keep the small spheres clear of the mirror
	clearance := core.NewVec3(4, 0.2, 0)
	for a := -5; a < 5; a++ {
		for b := -5; b < 5; b++ {
			chooseMat := random.Get1D()
			center := core.NewVec3(
				float64(a)+0.9*random.Get1D(),
				0.2,
				float64(b)+0.9*random.Get1D(),
			)
			if center.Subtract(clearance).Length() <= 0.9 {
				continue
			}

			var sphereMaterial material.Material
			switch {
			case chooseMat < 0.8:
				albedo := core.RandomVec3(random).MultiplyVec(core.RandomVec3(random))
				sphereMaterial = material.NewLambertian(albedo)
			case chooseMat < 0.95:
				albedo := core.RandomVec3Range(random, 0.5, 1)
				fuzz := core.RandomFloat(random, 0, 0.5)
				sphereMaterial = material.NewMetal(albedo, fuzz)
			default:
				sphereMaterial = material.NewDielectric(1.5)
			}
			world.Add(geometry.NewSphere(center, 0.2, sphereMaterial))
		}
	}

	world.Add(geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0, material.NewDielectric(1.5)))
	world.Add(geometry.NewSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))))
	world.Add(geometry.NewSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)))

	return &Scene{Name: "random-spheres", World: world, Camera: cameraConfig}
}
