package geo

import (
	"math"
	"testing"
)

func TestDistanceMiles(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: 40.7831, lon1: -73.9712,
			lat2: 40.7831, lon2: -73.9712,
			want: 0, tolerance: 0.001,
		},
		{
			name: "manhattan to brooklyn",
			lat1: 40.7831, lon1: -73.9712,
			lat2: 40.6782, lon2: -73.9442,
			want: 7.5, tolerance: 1,
		},
		{
			name: "new york to boston",
			lat1: 40.7128, lon1: -74.0060,
			lat2: 42.3601, lon2: -71.0589,
			want: 190, tolerance: 5,
		},
		{
			name: "one degree of latitude",
			lat1: 40, lon1: -74,
			lat2: 41, lon2: -74,
			want: 69.09, tolerance: 0.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMiles(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("DistanceMiles = %f, want %f +/- %f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestDistanceMilesSymmetry(t *testing.T) {
	a := DistanceMiles(40.7128, -74.0060, 42.3601, -71.0589)
	b := DistanceMiles(42.3601, -71.0589, 40.7128, -74.0060)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", a, b)
	}
}
