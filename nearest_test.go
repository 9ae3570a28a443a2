package geofilm

import "testing"

func TestNearestLocationsAscending(t *testing.T) {
	viewer := Coordinate{Lat: 50, Lng: 20}
	locs := []ResolvedLocation{
		{Title: "Far", Coord: Coordinate{Lat: 10, Lng: 100}},
		{Title: "Near", Coord: Coordinate{Lat: 50.1, Lng: 20.1}},
		{Title: "Mid", Coord: Coordinate{Lat: 55, Lng: 30}},
	}

	got := NearestLocations(locs, viewer, 3)
	want := []string{"Near", "Mid", "Far"}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Title, title)
		}
	}

	// Closest first is the contract; a descending result means the
	// comparison flipped somewhere.
	first := Haversine(got[0].Coord, viewer)
	last := Haversine(got[len(got)-1].Coord, viewer)
	if first > last {
		t.Errorf("selection is descending: first %v m, last %v m", first, last)
	}
}

func TestNearestLocationsTruncates(t *testing.T) {
	viewer := Coordinate{}
	var locs []ResolvedLocation
	for i := 0; i < 25; i++ {
		locs = append(locs, ResolvedLocation{
			Title: "Film",
			Coord: Coordinate{Lat: float64(i), Lng: 0},
		})
	}
	if got := NearestLocations(locs, viewer, 10); len(got) != 10 {
		t.Errorf("len = %d, want 10", len(got))
	}
}

func TestNearestLocationsShortInput(t *testing.T) {
	viewer := Coordinate{}
	locs := []ResolvedLocation{
		{Title: "Only", Coord: Coordinate{Lat: 1, Lng: 1}},
	}
	got := NearestLocations(locs, viewer, 10)
	if len(got) != 1 || got[0].Title != "Only" {
		t.Errorf("got %+v, want the single input back", got)
	}

	if got := NearestLocations(nil, viewer, 10); len(got) != 0 {
		t.Errorf("got %d locations from empty input, want 0", len(got))
	}
}

func TestNearestLocationsStableTies(t *testing.T) {
	viewer := Coordinate{}
	// Same coordinates, so every distance ties; input order must hold.
	locs := []ResolvedLocation{
		{Title: "A", Coord: Coordinate{Lat: 5, Lng: 5}},
		{Title: "B", Coord: Coordinate{Lat: 5, Lng: 5}},
		{Title: "C", Coord: Coordinate{Lat: 5, Lng: 5}},
	}
	got := NearestLocations(locs, viewer, 2)
	if len(got) != 2 || got[0].Title != "A" || got[1].Title != "B" {
		t.Errorf("got %+v, want A then B", got)
	}
}

func TestNearestLocationsInputUntouched(t *testing.T) {
	viewer := Coordinate{}
	locs := []ResolvedLocation{
		{Title: "Far", Coord: Coordinate{Lat: 50, Lng: 50}},
		{Title: "Near", Coord: Coordinate{Lat: 1, Lng: 1}},
	}
	NearestLocations(locs, viewer, 2)
	if locs[0].Title != "Far" || locs[1].Title != "Near" {
		t.Errorf("input slice was reordered: %+v", locs)
	}
}
