package geofilm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCorruptCache reports a geocache snapshot that exists but cannot be
// decoded. A corrupt snapshot aborts the run instead of being rebuilt.
var ErrCorruptCache = errors.New("geocache snapshot is not valid JSON")

// Cache is the persistent geocode store, mapping location names to
// coordinates. A nil entry records a lookup that found nothing, so the
// name is never sent to a resolver again. Keys are compared exactly as
// they appear in the dataset. Not safe for concurrent use; the pipeline
// is strictly sequential.
type Cache struct {
	path    string
	entries map[string]*Coordinate
}

// LoadCache reads the snapshot at path. A missing file yields an empty
// cache; an unreadable or malformed one is an error.
func LoadCache(path string) (*Cache, error) {
	c := &Cache{path: path, entries: make(map[string]*Coordinate)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading geocache: %w", err)
	}

	// On disk an entry is a [lat, lng] pair or null.
	var raw map[string]*[2]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}
	for name, pair := range raw {
		if pair == nil {
			c.entries[name] = nil
			continue
		}
		c.entries[name] = &Coordinate{Lat: pair[0], Lng: pair[1]}
	}
	return c, nil
}

// Get returns the cached entry for name. ok reports whether the name
// has an entry at all; a true ok with nil coordinates means the name is
// known to resolve to nothing.
func (c *Cache) Get(name string) (*Coordinate, bool) {
	coord, ok := c.entries[name]
	return coord, ok
}

// Put records the coordinates for name, nil meaning the resolver found
// nothing.
func (c *Cache) Put(name string, coord *Coordinate) {
	c.entries[name] = coord
}

// Len returns the number of cached names, absent entries included.
func (c *Cache) Len() int {
	return len(c.entries)
}

// ResolveAll ensures every name in names has a cache entry, calling the
// resolver only for names without one. Duplicates and cached names are
// counted but never re-resolved, and a resolver miss is stored so the
// name is settled for good. report, when non-nil, runs after every name
// with the running count and the total. Cancellation is honored between
// resolver calls only.
func (c *Cache) ResolveAll(ctx context.Context, names []string, r Resolver, report func(done, total int)) error {
	total := len(names)
	for i, name := range names {
		if _, ok := c.entries[name]; !ok {
			if err := ctx.Err(); err != nil {
				return err
			}
			coord, err := r.Resolve(ctx, name)
			switch {
			case errors.Is(err, ErrNotFound):
				c.entries[name] = nil
			case err != nil:
				return fmt.Errorf("resolving %q: %w", name, err)
			default:
				c.entries[name] = &coord
			}
		}
		if report != nil {
			report(i+1, total)
		}
	}
	return nil
}

// Save writes the whole cache back as one JSON object, replacing the
// snapshot atomically so an interrupted run cannot leave a truncated
// file behind.
func (c *Cache) Save() error {
	raw := make(map[string]*[2]float64, len(c.entries))
	for name, coord := range c.entries {
		if coord == nil {
			raw[name] = nil
			continue
		}
		raw[name] = &[2]float64{coord.Lat, coord.Lng}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding geocache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating geocache temp file: %w", err)
	}
	success := false
	defer func() {
		if !success {
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing geocache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing geocache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replacing geocache: %w", err)
	}
	success = true
	return nil
}
