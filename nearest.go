package geofilm

import "sort"

// DefaultNearestCount is how many locations the pipeline keeps.
const DefaultNearestCount = 10

// ResolvedLocation pairs a film title with the coordinates its filming
// location resolved to. Several films may share one coordinate.
type ResolvedLocation struct {
	Title string
	Coord Coordinate
}

// nearestCandidate pairs a location with its distance from the viewer.
type nearestCandidate struct {
	loc  ResolvedLocation
	dist float64
}

// NearestLocations returns the k locations closest to viewer, closest
// first. Ties keep their input order, and fewer than k inputs come back
// whole. Each distance is measured once.
func NearestLocations(locs []ResolvedLocation, viewer Coordinate, k int) []ResolvedLocation {
	candidates := make([]nearestCandidate, len(locs))
	for i, loc := range locs {
		candidates[i] = nearestCandidate{loc: loc, dist: Haversine(loc.Coord, viewer)}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	if k < 0 {
		k = 0
	}
	out := make([]ResolvedLocation, 0, k)
	for _, cand := range candidates[:k] {
		out = append(out, cand.loc)
	}
	return out
}
