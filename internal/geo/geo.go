// Package geo turns a route's waypoints into GeoJSON geometry and measures it.
package geo

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"

	"geocache/internal/models"
)

const earthRadius = 6371000 // meters

// ordered returns the waypoints sorted by position without touching the input.
func ordered(waypoints []models.Waypoint) []models.Waypoint {
	out := make([]models.Waypoint, len(waypoints))
	copy(out, waypoints)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderID != out[j].OrderID {
			return out[i].OrderID < out[j].OrderID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Path builds the route geometry: nil for no waypoints, a Point for one, and
// a LineString otherwise. Coordinates are (lng, lat).
func Path(waypoints []models.Waypoint) geom.T {
	wps := ordered(waypoints)
	switch len(wps) {
	case 0:
		return nil
	case 1:
		return geom.NewPointFlat(geom.XY, []float64{wps[0].Longitude, wps[0].Latitude})
	}
	flat := make([]float64, 0, 2*len(wps))
	for _, wp := range wps {
		flat = append(flat, wp.Longitude, wp.Latitude)
	}
	return geom.NewLineStringFlat(geom.XY, flat)
}

// GeoJSON encodes Path as a GeoJSON geometry, or returns nil when there is
// nothing to draw.
func GeoJSON(waypoints []models.Waypoint) (json.RawMessage, error) {
	g := Path(waypoints)
	if g == nil {
		return nil, nil
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

// Length is the haversine length in meters of the path through the
// waypoints in order.
func Length(waypoints []models.Waypoint) float64 {
	wps := ordered(waypoints)
	var total float64
	for i := 1; i < len(wps); i++ {
		total += Distance(wps[i-1].Latitude, wps[i-1].Longitude, wps[i].Latitude, wps[i].Longitude)
	}
	return total
}

// Distance calculates the great-circle distance between two points in meters.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ValidCoordinates reports whether lat/lng are inside WGS84 bounds.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
