package geofilm

import (
	"math"
	"testing"
)

func TestHaversineReference(t *testing.T) {
	// Reference distance between (54, 21) and (53, 19).
	got := Haversine(Coordinate{Lat: 54, Lng: 21}, Coordinate{Lat: 53, Lng: 19})
	want := 172797.4514739205
	if math.Abs(got-want) > 0.01 {
		t.Errorf("Haversine((54,21),(53,19)) = %v, want %v within 0.01", got, want)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := Coordinate{Lat: 49.8397, Lng: 24.0297}
	b := Coordinate{Lat: 50.4501, Lng: 30.5234}
	if d1, d2 := Haversine(a, b), Haversine(b, a); d1 != d2 {
		t.Errorf("Haversine(a,b) = %v but Haversine(b,a) = %v", d1, d2)
	}
}

func TestHaversineZero(t *testing.T) {
	p := Coordinate{Lat: -33.8688, Lng: 151.2093}
	if d := Haversine(p, p); d != 0 {
		t.Errorf("Haversine(p,p) = %v, want 0", d)
	}
}

func TestHaversineKnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Coordinate
		want      float64
		tolerance float64
	}{
		// London to Paris, roughly 344 km.
		{"LondonParis", Coordinate{51.5074, -0.1278}, Coordinate{48.8566, 2.3522}, 344_000, 5_000},
		// One degree of latitude at the equator, roughly 111.2 km.
		{"OneDegreeLatitude", Coordinate{0, 0}, Coordinate{1, 0}, 111_195, 100},
		// Antipodal points, half the circumference.
		{"Antipodes", Coordinate{0, 0}, Coordinate{0, 180}, math.Pi * EarthRadiusMeters, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Haversine(%v, %v) = %v, want %v within %v", tt.a, tt.b, got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestCoordinateValid(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		want  bool
	}{
		{"Origin", Coordinate{0, 0}, true},
		{"Lviv", Coordinate{49.8397, 24.0297}, true},
		{"NorthPole", Coordinate{90, 0}, true},
		{"DateLine", Coordinate{0, 180}, true},
		{"LatTooHigh", Coordinate{90.5, 0}, false},
		{"LngTooLow", Coordinate{0, -180.5}, false},
		{"NaN", Coordinate{math.NaN(), 0}, false},
		{"Inf", Coordinate{0, math.Inf(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coord.Valid(); got != tt.want {
				t.Errorf("Coordinate%v.Valid() = %v, want %v", tt.coord, got, tt.want)
			}
		})
	}
}
