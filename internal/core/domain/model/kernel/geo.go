package kernel

import "math"

// EarthRadiusKm is the mean Earth radius used by every distance computation.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between a and b in kilometres.
// Callers are expected to pass constructed locations.
func HaversineKm(a, b Location) float64 {
	lat1 := toRadians(a.lat)
	lat2 := toRadians(b.lat)
	dLat := toRadians(b.lat - a.lat)
	dLon := toRadians(b.lon - a.lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// InitialBearing returns the forward azimuth from a to b, normalised to [0, 360).
func InitialBearing(a, b Location) float64 {
	lat1 := toRadians(a.lat)
	lat2 := toRadians(b.lat)
	dLon := toRadians(b.lon - a.lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	bearing := toDegrees(math.Atan2(y, x))
	return math.Mod(bearing+360, 360)
}

// Centroid returns the arithmetic mean of the coordinates. Trip groups span a
// few tens of kilometres, where the planar mean is indistinguishable from the
// spherical one. An empty slice yields the zero Location.
func Centroid(points []Location) Location {
	if len(points) == 0 {
		return Location{}
	}

	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.lat
		sumLon += p.lon
	}

	n := float64(len(points))
	return Location{
		lat:   sumLat / n,
		lon:   sumLon / n,
		guard: points[0].guard,
	}
}

// MaxSpreadKm returns the largest pairwise Haversine distance among points.
// Zero or one point has no spread.
func MaxSpreadKm(points []Location) float64 {
	spread := 0.0
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			if d := HaversineKm(points[i], points[j]); d > spread {
				spread = d
			}
		}
	}
	return spread
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
