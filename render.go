package geofilm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"

	"github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"
)

// Renderer turns a pipeline result into an artifact. The route indexes
// the point list made of the viewer followed by the locations.
type Renderer interface {
	Render(locs []ResolvedLocation, route Route, viewer Coordinate) error
}

// MultiRenderer fans one result out to several renderers in order,
// stopping at the first failure.
type MultiRenderer []Renderer

func (m MultiRenderer) Render(locs []ResolvedLocation, route Route, viewer Coordinate) error {
	for _, r := range m {
		if err := r.Render(locs, route, viewer); err != nil {
			return err
		}
	}
	return nil
}

// markerGeohashPrecision is 9 characters, cells of roughly five meters.
// Films shot at the same address fall into one cell and share a marker.
const markerGeohashPrecision = 9

// defaultMapZoom shows a regional view around the viewer.
const defaultMapZoom = 5

// mapMarker is one rendered point with every film title shot there.
type mapMarker struct {
	Coord  Coordinate
	Titles []string
}

// groupMarkers folds locations sharing a geohash cell into one marker
// each, keeping first-seen order.
func groupMarkers(locs []ResolvedLocation) []mapMarker {
	byCell := make(map[string]int)
	var markers []mapMarker
	for _, loc := range locs {
		cell := geohash.EncodeWithPrecision(loc.Coord.Lat, loc.Coord.Lng, markerGeohashPrecision)
		if i, ok := byCell[cell]; ok {
			markers[i].Titles = append(markers[i].Titles, loc.Title)
			continue
		}
		byCell[cell] = len(markers)
		markers = append(markers, mapMarker{Coord: loc.Coord, Titles: []string{loc.Title}})
	}
	return markers
}

// boundsRect is the latitude/longitude rectangle spanning the viewer
// and every location.
func boundsRect(locs []ResolvedLocation, viewer Coordinate) s2.Rect {
	rect := s2.RectFromLatLng(viewer.LatLng())
	for _, loc := range locs {
		rect = rect.AddPoint(loc.Coord.LatLng())
	}
	return rect
}

// tourPath maps a route to drawable [lat, lng] pairs, closed back to
// its first stop.
func tourPath(locs []ResolvedLocation, route Route, viewer Coordinate) ([][2]float64, error) {
	all := routePoints(locs, viewer)
	path := make([][2]float64, 0, len(route)+1)
	for _, idx := range route {
		if idx < 0 || idx >= len(all) {
			return nil, fmt.Errorf("route index %d out of range", idx)
		}
		path = append(path, [2]float64{all[idx].Lat, all[idx].Lng})
	}
	if len(path) > 0 {
		path = append(path, path[0])
	}
	return path, nil
}

// HTMLMapRenderer writes a self-contained Leaflet page with a marker
// layer for the filming locations and a path layer with the tour and
// the viewer position.
type HTMLMapRenderer struct {
	Path  string // output file, for example "map.html"
	Title string // page title; empty gets a default
}

type htmlMarker struct {
	Lat    float64  `json:"lat"`
	Lng    float64  `json:"lng"`
	Titles []string `json:"titles"`
}

type htmlMapPayload struct {
	Markers []htmlMarker  `json:"markers"`
	Path    [][2]float64  `json:"path"`
	Viewer  [2]float64    `json:"viewer"`
	Bounds  [2][2]float64 `json:"bounds"`
	Zoom    int           `json:"zoom"`
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var data = {{.Payload}};
var map = L.map("map").setView(data.viewer, data.zoom);
L.tileLayer("https://tile.openstreetmap.org/{z}/{x}/{y}.png", {
    attribution: "&copy; OpenStreetMap contributors"
}).addTo(map);

var locations = L.layerGroup().addTo(map);
data.markers.forEach(function (m) {
    L.marker([m.lat, m.lng]).bindPopup(m.titles.join("<br>")).addTo(locations);
});

var path = L.layerGroup().addTo(map);
if (data.path.length > 0) {
    L.polyline(data.path, {weight: 5}).addTo(path);
}
L.marker(data.viewer).bindPopup("You are here").addTo(path);

L.control.layers(null, {"Filming locations": locations, "Shortest Path": path}).addTo(map);
if (data.markers.length > 0) {
    map.fitBounds(data.bounds, {padding: [30, 30]});
}
</script>
</body>
</html>
`))

type htmlMapData struct {
	Title   string
	Payload template.JS
}

// Render writes the map page: one marker per distinct point with the
// films shot there, the closed tour, and the viewer position.
func (h *HTMLMapRenderer) Render(locs []ResolvedLocation, route Route, viewer Coordinate) error {
	path, err := tourPath(locs, route, viewer)
	if err != nil {
		return err
	}

	rect := boundsRect(locs, viewer)
	lo, hi := rect.Lo(), rect.Hi()
	payload := htmlMapPayload{
		Markers: make([]htmlMarker, 0, len(locs)),
		Path:    path,
		Viewer:  [2]float64{viewer.Lat, viewer.Lng},
		Bounds: [2][2]float64{
			{lo.Lat.Degrees(), lo.Lng.Degrees()},
			{hi.Lat.Degrees(), hi.Lng.Degrees()},
		},
		Zoom: defaultMapZoom,
	}
	for _, m := range groupMarkers(locs) {
		payload.Markers = append(payload.Markers, htmlMarker{
			Lat:    m.Coord.Lat,
			Lng:    m.Coord.Lng,
			Titles: m.Titles,
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding map data: %w", err)
	}

	title := h.Title
	if title == "" {
		title = "Filming locations"
	}
	var buf bytes.Buffer
	if err := mapTemplate.Execute(&buf, htmlMapData{Title: title, Payload: template.JS(data)}); err != nil {
		return fmt.Errorf("rendering map template: %w", err)
	}
	if err := os.WriteFile(h.Path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing map: %w", err)
	}
	return nil
}

// GeoJSONRenderer writes the result as a FeatureCollection: one Point
// feature per film and one LineString with the closed tour.
type GeoJSONRenderer struct {
	Path string
}

type geoJSONFeatureCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

type geoJSONFeature struct {
	Type       string          `json:"type"`
	Geometry   geoJSONGeometry `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type geoJSONGeometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"` // [lng, lat], or a list of them
}

// Render writes the FeatureCollection. GeoJSON orders coordinates
// longitude first.
func (g *GeoJSONRenderer) Render(locs []ResolvedLocation, route Route, viewer Coordinate) error {
	path, err := tourPath(locs, route, viewer)
	if err != nil {
		return err
	}

	fc := geoJSONFeatureCollection{Type: "FeatureCollection"}
	for _, loc := range locs {
		fc.Features = append(fc.Features, geoJSONFeature{
			Type: "Feature",
			Geometry: geoJSONGeometry{
				Type:        "Point",
				Coordinates: []float64{loc.Coord.Lng, loc.Coord.Lat},
			},
			Properties: map[string]any{"name": loc.Title},
		})
	}

	line := make([][]float64, 0, len(path))
	for _, p := range path {
		line = append(line, []float64{p[1], p[0]})
	}
	fc.Features = append(fc.Features, geoJSONFeature{
		Type: "Feature",
		Geometry: geoJSONGeometry{
			Type:        "LineString",
			Coordinates: line,
		},
		Properties: map[string]any{"name": "Shortest Path"},
	})

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding geojson: %w", err)
	}
	if err := os.WriteFile(g.Path, data, 0644); err != nil {
		return fmt.Errorf("writing geojson: %w", err)
	}
	return nil
}
