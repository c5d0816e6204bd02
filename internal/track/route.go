// Package track turns tracking samples into geometry for map displays: the route
// polyline, its extent and a density grid for heat maps.
package track

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/roman-kulish/pitch-telemetry/internal/telemetry"
)

// Route is the ordered polyline of every sample with a valid GPS fix.
type Route struct {
	Player string
	Line   orb.LineString
}

// NewRoute collects valid positions in collection order. Samples without a
// timestamp still contribute to the route.
func NewRoute(samples []telemetry.Sample) *Route {
	r := Route{Line: make(orb.LineString, 0, len(samples))}
	for _, s := range samples {
		if r.Player == "" {
			r.Player = s.Player
		}
		if !s.HasPosition() {
			continue
		}
		r.Line = append(r.Line, orb.Point{*s.Longitude, *s.Latitude})
	}
	return &r
}

// Empty reports whether the route has no positions.
func (r *Route) Empty() bool {
	return len(r.Line) == 0
}

// Start returns the first position.
func (r *Route) Start() (orb.Point, bool) {
	if r.Empty() {
		return orb.Point{}, false
	}
	return r.Line[0], true
}

// End returns the last position.
func (r *Route) End() (orb.Point, bool) {
	if r.Empty() {
		return orb.Point{}, false
	}
	return r.Line[len(r.Line)-1], true
}

// Center returns the mean position, which is where dashboards centre the map.
func (r *Route) Center() (orb.Point, bool) {
	if r.Empty() {
		return orb.Point{}, false
	}
	var lon, lat float64
	for _, p := range r.Line {
		lon += p.Lon()
		lat += p.Lat()
	}
	n := float64(len(r.Line))
	return orb.Point{lon / n, lat / n}, true
}

// Bound returns the bounding box of the route.
func (r *Route) Bound() orb.Bound {
	return r.Line.Bound()
}

// HeatPoints returns the route positions as a point set for heat map layers.
func (r *Route) HeatPoints() orb.MultiPoint {
	return orb.MultiPoint(r.Line)
}

// FeatureCollection exports the route as GeoJSON: the polyline plus start and end
// markers. An empty route yields an empty collection.
func (r *Route) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if r.Empty() {
		return fc
	}

	line := geojson.NewFeature(r.Line)
	line.Properties["kind"] = "route"
	line.Properties["points"] = len(r.Line)
	if r.Player != "" {
		line.Properties["player"] = r.Player
	}
	fc.Append(line)

	start, _ := r.Start()
	end, _ := r.End()
	for _, m := range []struct {
		kind  string
		point orb.Point
	}{
		{kind: "start", point: start},
		{kind: "end", point: end},
	} {
		f := geojson.NewFeature(m.point)
		f.Properties["kind"] = m.kind
		fc.Append(f)
	}

	fc.BBox = geojson.NewBBox(r.Bound())
	return fc
}
