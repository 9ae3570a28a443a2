// Command datasample cuts a small fixture out of a full locations dump.
//
// Usage:
//
//	datasample -src locations.list -dst locations_sample.list -lines 500
//
// The header through the record divider and the two trailer lines are
// copied verbatim; between them goes a uniform random sample of the
// record lines in their original order. Bytes pass through untouched,
// so the fixture keeps the dump's ISO-8859-1 encoding.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"
)

var locationsSentinel = []byte("LOCATIONS LIST")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		src   = flag.String("src", "", "source dump path")
		dst   = flag.String("dst", "", "destination fixture path")
		lines = flag.Int("lines", 500, "number of record lines to keep")
		seed  = flag.Int64("seed", 0, "sample seed, 0 for time-based")
	)
	flag.Parse()

	if *src == "" || *dst == "" {
		return fmt.Errorf("missing -src or -dst")
	}

	data, err := os.ReadFile(*src)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	fixture, err := sample(data, *lines, *seed)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*dst, fixture, 0644); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	return nil
}

// sample builds a fixture from a full dump: the header through the
// record divider and the two trailer lines verbatim, with n record
// lines drawn uniformly between them, kept in file order. A source
// ending in a newline yields a fixture ending in one.
func sample(data []byte, n int, seed int64) ([]byte, error) {
	all := bytes.Split(data, []byte("\n"))
	// A newline-terminated file splits into a trailing empty element
	// that is not a line of its own.
	terminated := false
	if last := len(all) - 1; last >= 0 && len(all[last]) == 0 {
		all = all[:last]
		terminated = true
	}

	sentinel := -1
	for i, line := range all {
		if bytes.Equal(line, locationsSentinel) {
			sentinel = i
			break
		}
	}
	if sentinel < 0 {
		return nil, fmt.Errorf(`source has no "LOCATIONS LIST" line`)
	}
	// The divider under the sentinel and the two trailer lines must all
	// be there, or the slicing below has nothing to hold on to.
	if len(all) < sentinel+4 {
		return nil, fmt.Errorf(`source is truncated after the "LOCATIONS LIST" line`)
	}

	header := all[:sentinel+2]
	region := all[sentinel+2 : len(all)-2]
	trailer := all[len(all)-2:]

	if n < 0 || n > len(region) {
		return nil, fmt.Errorf("asked for %d lines but the record region has %d", n, len(region))
	}

	rng := rand.New(rand.NewSource(seed))

	// Pick record indices without replacement, then restore file order.
	picked := rng.Perm(len(region))[:n]
	sort.Ints(picked)

	out := make([][]byte, 0, len(header)+len(picked)+len(trailer))
	out = append(out, header...)
	for _, idx := range picked {
		out = append(out, region[idx])
	}
	out = append(out, trailer...)

	fixture := bytes.Join(out, []byte("\n"))
	if terminated {
		fixture = append(fixture, '\n')
	}
	return fixture, nil
}
