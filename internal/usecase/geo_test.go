package usecase

import (
	"math"
	"testing"
)

func TestHaversineKM(t *testing.T) {
	bangkok := [2]float64{13.7563, 100.5018}
	chiangMai := [2]float64{18.7883, 98.9853}

	t.Run("distance to self is zero", func(t *testing.T) {
		d := HaversineKM(bangkok[0], bangkok[1], bangkok[0], bangkok[1])
		if d != 0 {
			t.Errorf("distance = %v, want 0", d)
		}
	})

	t.Run("is symmetric", func(t *testing.T) {
		d1 := HaversineKM(bangkok[0], bangkok[1], chiangMai[0], chiangMai[1])
		d2 := HaversineKM(chiangMai[0], chiangMai[1], bangkok[0], bangkok[1])
		if math.Abs(d1-d2) > 1e-9 {
			t.Errorf("distance not symmetric: %v vs %v", d1, d2)
		}
	})

	t.Run("matches a known distance", func(t *testing.T) {
		// Bangkok to Chiang Mai is roughly 580 km great-circle.
		d := HaversineKM(bangkok[0], bangkok[1], chiangMai[0], chiangMai[1])
		if d < 560 || d > 600 {
			t.Errorf("distance = %v, want ~580", d)
		}
	})

	t.Run("short distances stay in meters range", func(t *testing.T) {
		// Two points ~111m apart on the equator.
		d := HaversineKM(0, 0, 0.001, 0)
		if d < 0.10 || d > 0.12 {
			t.Errorf("distance = %v, want ~0.111", d)
		}
	})
}
