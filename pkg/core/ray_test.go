package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRay_At(t *testing.T) {
	r := NewRay(NewVec3(1, 2, 3), NewVec3(0, 0, -2))

	tests := []struct {
		t    float64
		want Point3
	}{
		{0, NewVec3(1, 2, 3)},
		{1, NewVec3(1, 2, 1)},
		{-0.5, NewVec3(1, 2, 4)},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, r.At(tt.t)); diff != "" {
			t.Errorf("At(%v) (-want +got):\n%s", tt.t, diff)
		}
	}
}

func TestRay_Set(t *testing.T) {
	var r Ray
	r.Set(NewVec3(1, 1, 1), NewVec3(0, 1, 0))

	want := Ray{Origin: NewVec3(1, 1, 1), Direction: NewVec3(0, 1, 0)}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("Set (-want +got):\n%s", diff)
	}
}
