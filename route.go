package geofilm

import "math/rand"

// Route is a visiting order over a point slice: a permutation of the
// point indices. The tour it describes is closed; renderers append the
// first stop at the end when drawing it.
type Route []int

// Default knobs for the route search.
const (
	DefaultPopulationSize = 200
	DefaultMutationProb   = 0.2
	DefaultMaxStale       = 50
	DefaultMaxGenerations = 1000
	DefaultRouteSeed      = 2
)

const tournamentSize = 3

type routeConfig struct {
	populationSize int
	mutationProb   float64
	maxStale       int
	maxGenerations int
	seed           int64
}

// RouteOption is a functional option for ShortestRoute.
type RouteOption func(*routeConfig)

// WithPopulationSize sets how many candidate tours a generation holds.
func WithPopulationSize(n int) RouteOption {
	return func(c *routeConfig) {
		c.populationSize = n
	}
}

// WithMutationProb sets the per-child swap mutation probability.
func WithMutationProb(p float64) RouteOption {
	return func(c *routeConfig) {
		c.mutationProb = p
	}
}

// WithMaxStale sets how many consecutive generations without an
// improvement end the search.
func WithMaxStale(n int) RouteOption {
	return func(c *routeConfig) {
		c.maxStale = n
	}
}

// WithMaxGenerations caps the total generation count.
func WithMaxGenerations(n int) RouteOption {
	return func(c *routeConfig) {
		c.maxGenerations = n
	}
}

// WithSeed fixes the random source so runs repeat exactly.
func WithSeed(seed int64) RouteOption {
	return func(c *routeConfig) {
		c.seed = seed
	}
}

func defaultRouteConfig() routeConfig {
	return routeConfig{
		populationSize: DefaultPopulationSize,
		mutationProb:   DefaultMutationProb,
		maxStale:       DefaultMaxStale,
		maxGenerations: DefaultMaxGenerations,
		seed:           DefaultRouteSeed,
	}
}

// routePoints is the tour's point list: the viewer first, then every
// location in order. Index 0 of a route over these points is therefore
// the viewer.
func routePoints(locs []ResolvedLocation, viewer Coordinate) []Coordinate {
	points := make([]Coordinate, 0, len(locs)+1)
	points = append(points, viewer)
	for _, loc := range locs {
		points = append(points, loc.Coord)
	}
	return points
}

// ShortestRoute searches for a short closed tour through points. The
// search sees nothing but the pairwise distances and the seeded random
// source, so the same points and options give the same route on every
// run. Fewer than two points come back in identity order untouched.
func ShortestRoute(points []Coordinate, opts ...RouteOption) Route {
	cfg := defaultRouteConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Selection and crossover need at least two tours to draw from.
	if cfg.populationSize < 2 {
		cfg.populationSize = 2
	}
	if len(points) < 2 {
		route := make(Route, len(points))
		for i := range route {
			route[i] = i
		}
		return route
	}
	return solveTSP(distanceMatrix(points), cfg)
}

// distanceMatrix computes the full symmetric matrix, measuring each
// unordered pair once.
func distanceMatrix(points []Coordinate) [][]float64 {
	dist := make([][]float64, len(points))
	for i := range dist {
		dist[i] = make([]float64, len(points))
	}
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			d := Haversine(points[i], points[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}

// tourLength sums the closed tour: every consecutive leg plus the leg
// back to the start.
func tourLength(dist [][]float64, tour Route) float64 {
	total := 0.0
	for i, from := range tour {
		to := tour[(i+1)%len(tour)]
		total += dist[from][to]
	}
	return total
}

// solveTSP runs a genetic search over permutations of the matrix
// indices and returns the best tour seen. Selection is by tournament,
// crossover keeps a segment of one parent and fills the rest in the
// other parent's order, and mutation swaps two positions. The best tour
// survives every generation unchanged.
func solveTSP(dist [][]float64, cfg routeConfig) Route {
	n := len(dist)
	rng := rand.New(rand.NewSource(cfg.seed))

	population := make([]Route, cfg.populationSize)
	for i := range population {
		population[i] = Route(rng.Perm(n))
	}

	best := append(Route(nil), population[0]...)
	bestLen := tourLength(dist, best)
	for _, tour := range population[1:] {
		if l := tourLength(dist, tour); l < bestLen {
			best = append(best[:0], tour...)
			bestLen = l
		}
	}

	stale := 0
	for gen := 0; gen < cfg.maxGenerations && stale < cfg.maxStale; gen++ {
		next := make([]Route, 0, cfg.populationSize)
		next = append(next, append(Route(nil), best...))
		for len(next) < cfg.populationSize {
			a := tournament(rng, dist, population)
			b := tournament(rng, dist, population)
			child := orderedCrossover(rng, a, b)
			if rng.Float64() < cfg.mutationProb {
				swapMutate(rng, child)
			}
			next = append(next, child)
		}
		population = next

		improved := false
		for _, tour := range population {
			if l := tourLength(dist, tour); l < bestLen {
				best = append(best[:0], tour...)
				bestLen = l
				improved = true
			}
		}
		if improved {
			stale = 0
		} else {
			stale++
		}
	}
	return best
}

// tournament picks the shortest of a few random tours.
func tournament(rng *rand.Rand, dist [][]float64, population []Route) Route {
	best := population[rng.Intn(len(population))]
	bestLen := tourLength(dist, best)
	for i := 1; i < tournamentSize; i++ {
		tour := population[rng.Intn(len(population))]
		if l := tourLength(dist, tour); l < bestLen {
			best, bestLen = tour, l
		}
	}
	return best
}

// orderedCrossover copies a random segment of a into the child and
// fills the remaining positions with b's cities in b's order, starting
// after the segment. The child is always a valid permutation.
func orderedCrossover(rng *rand.Rand, a, b Route) Route {
	n := len(a)
	lo := rng.Intn(n)
	hi := rng.Intn(n)
	if lo > hi {
		lo, hi = hi, lo
	}

	child := make(Route, n)
	used := make([]bool, n)
	for i := lo; i <= hi; i++ {
		child[i] = a[i]
		used[a[i]] = true
	}

	pos := (hi + 1) % n
	for i := 0; i < n; i++ {
		city := b[(hi+1+i)%n]
		if used[city] {
			continue
		}
		child[pos] = city
		used[city] = true
		pos = (pos + 1) % n
	}
	return child
}

// swapMutate exchanges two random positions in place.
func swapMutate(rng *rand.Rand, tour Route) {
	i := rng.Intn(len(tour))
	j := rng.Intn(len(tour))
	tour[i], tour[j] = tour[j], tour[i]
}
