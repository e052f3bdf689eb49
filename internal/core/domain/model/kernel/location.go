package kernel

import (
	"errors"
	"fmt"
	"math"

	"tripplanner/internal/pkg/errs"
	"tripplanner/internal/pkg/guard"
)

const (
	// LatitudeMin is the southernmost valid latitude in degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the northernmost valid latitude in degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the westernmost valid longitude in degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the easternmost valid longitude in degrees.
	LongitudeMax = 180.0
)

// ErrLocationIsNotConstructed is returned when a zero-value Location is used.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation")

// Location is a WGS84 latitude/longitude pair in decimal degrees.
// The zero value is invalid; use NewLocation.
//
// Example:
//
//	depot, err := kernel.NewLocation(-1.2921, 36.8219)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(depot) // Location(-1.292100,36.821900)
type Location struct { //nolint:recvcheck // private setters use pointer receivers
	lat   float64
	lon   float64
	guard guard.ConstructorGuard
}

// NewLocation creates a Location after checking both coordinates against their ranges.
//
// Parameters:
//   - lat: latitude in [LatitudeMin, LatitudeMax]
//   - lon: longitude in [LongitudeMin, LongitudeMax]
//
// Returns:
//   - Location: the validated value
//   - error: joined ValueIsOutOfRange errors for every offending coordinate
func NewLocation(lat float64, lon float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLat(lat), loc.setLon(lon)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// MustNewLocation is NewLocation that panics on error. Intended for tests and fixtures.
func MustNewLocation(lat float64, lon float64) Location {
	loc, err := NewLocation(lat, lon)
	if err != nil {
		panic(err)
	}
	return loc
}

// Validate reports whether the Location was built by NewLocation.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Lat returns the latitude in degrees.
func (l Location) Lat() float64 {
	return l.lat
}

// Lon returns the longitude in degrees.
func (l Location) Lon() float64 {
	return l.lon
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%f,%f)", l.lat, l.lon)
}

// IsEqual compares two constructed locations.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l.lat == other.lat && l.lon == other.lon, nil
}

// DistanceKm returns the great-circle distance to other using the Haversine formula.
//
// Example:
//
//	a := kernel.MustNewLocation(0, 0)
//	b := kernel.MustNewLocation(0, 1)
//	km, _ := a.DistanceKm(b) // ≈ 111.19
func (l Location) DistanceKm(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	return HaversineKm(l, other), nil
}

// BearingTo returns the initial compass bearing towards other in degrees [0, 360).
func (l Location) BearingTo(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	return InitialBearing(l, other), nil
}

func (l *Location) setLat(lat float64) error {
	if lat < LatitudeMin || lat > LatitudeMax || math.IsNaN(lat) {
		return errs.NewValueIsOutOfRangeError("latitude", lat, LatitudeMin, LatitudeMax)
	}

	l.lat = lat
	return nil
}

func (l *Location) setLon(lon float64) error {
	if lon < LongitudeMin || lon > LongitudeMax || math.IsNaN(lon) {
		return errs.NewValueIsOutOfRangeError("longitude", lon, LongitudeMin, LongitudeMax)
	}

	l.lon = lon
	return nil
}
