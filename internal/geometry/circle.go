package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// metersPerDegree approximates the length of one degree of latitude.
const metersPerDegree = 111000.0

// CirclePolygon approximates a circle of radiusMeters around the given
// center as a closed polygon with the given number of segments, in
// geographic coordinates. The approximation treats degrees as a flat grid,
// which is fine for the few-kilometer radii used in searches.
func CirclePolygon(lat, lng float64, radiusMeters int, segments int) orb.Polygon {
	radiusDeg := float64(radiusMeters) / metersPerDegree

	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		angle := float64(i) * (2 * math.Pi / float64(segments))
		pointLat := lat + radiusDeg*math.Cos(angle)
		pointLng := lng + radiusDeg*math.Sin(angle)
		ring = append(ring, orb.Point{pointLng, pointLat})
	}
	// Close the ring.
	ring = append(ring, ring[0])

	return orb.Polygon{ring}
}

// CircleFeatureCollection wraps CirclePolygon in a GeoJSON FeatureCollection,
// the shape the population-grid service expects.
func CircleFeatureCollection(lat, lng float64, radiusMeters int, segments int) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(CirclePolygon(lat, lng, radiusMeters, segments)))
	return fc
}
