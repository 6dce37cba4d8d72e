package scene

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// NewThreeSpheresScene creates glass, mirror and diffuse green spheres in a
// row on a dark gray ground sphere, framed by a narrow telephoto camera.
func NewThreeSpheresScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := applyOverrides(renderer.CameraConfig{
		AspectRatio:     16.0 / 9.0,
		ImageWidth:      2560,
		SamplesPerPixel: 500,
		MaxDepth:        50,
		VFov:            15,
		LookFrom:        core.NewVec3(0, 1, 5),
		LookAt:          core.NewVec3(0, 0.3, 0),
		Up:              core.NewVec3(0, 1, 0),
		DefocusAngle:    0,
		FocusDistance:   10,
	}, cameraOverrides)

	world := geometry.NewHittableList(
		geometry.NewSphere(core.NewVec3(0, -30, 0), 30, material.NewLambertian(core.NewVec3(0.2, 0.2, 0.2))),
		geometry.NewSphere(core.NewVec3(0, 0.3, 0), 0.3, material.NewMetal(core.NewVec3(0.7, 0.4, 0.5), 0.0)),
		geometry.NewSphere(core.NewVec3(0.6, 0.3, 0), 0.3, material.NewLambertian(core.NewVec3(0.2, 0.5, 0.2))),
		geometry.NewSphere(core.NewVec3(-0.6, 0.3, 0), 0.3, material.NewDielectric(1.5)),
	)

	return &Scene{Name: "three-spheres", World: world, Camera: cameraConfig}
}
