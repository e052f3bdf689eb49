package trip

import (
	"errors"
	"math"
	"time"

	"tripplanner/internal/pkg/errs"
)

// OptimizationParameters is the single configuration value passed explicitly to
// consolidation, routing, validation, conflict resolution and adjustment.
// Field tags let viper/mapstructure decode it from YAML, JSON or environment.
type OptimizationParameters struct {
	TargetSKUMin               int       `mapstructure:"target_sku_min" json:"target_sku_min"`
	TargetSKUMax               int       `mapstructure:"target_sku_max" json:"target_sku_max"`
	MaxTripWeightKg            float64   `mapstructure:"max_trip_weight_kg" json:"max_trip_weight_kg"`
	MaxTripVolumeM3            float64   `mapstructure:"max_trip_volume_m3" json:"max_trip_volume_m3"`
	MaxDeliveryStops           int       `mapstructure:"max_delivery_stops" json:"max_delivery_stops"`
	MaxTripDurationHours       float64   `mapstructure:"max_trip_duration_hours" json:"max_trip_duration_hours"`
	TravelBufferMinutes        int       `mapstructure:"travel_buffer_minutes" json:"travel_buffer_minutes"`
	MaxGeographicSpreadKm      float64   `mapstructure:"max_geographic_spread_km" json:"max_geographic_spread_km"`
	AverageSpeedKmh            float64   `mapstructure:"average_speed_kmh" json:"average_speed_kmh"`
	ServiceTimeMinutes         int       `mapstructure:"service_time_minutes" json:"service_time_minutes"`
	SwapDistanceTolerance      float64   `mapstructure:"swap_distance_tolerance" json:"swap_distance_tolerance"`
	MaxWindowShiftMinutes      int       `mapstructure:"max_window_shift_minutes" json:"max_window_shift_minutes"`
	ReturnToOrigin             bool      `mapstructure:"return_to_origin" json:"return_to_origin"`
	SeparateTemperatureClasses bool      `mapstructure:"separate_temperature_classes" json:"separate_temperature_classes"`
	DepartAt                   time.Time `mapstructure:"depart_at" json:"depart_at"`
}

// DefaultParameters returns the parameters of a standard 5 t box truck leaving at departAt.
func DefaultParameters(departAt time.Time) OptimizationParameters {
	return OptimizationParameters{
		TargetSKUMin:          20,
		TargetSKUMax:          100,
		MaxTripWeightKg:       5000,
		MaxTripVolumeM3:       30,
		MaxDeliveryStops:      25,
		MaxTripDurationHours:  10,
		TravelBufferMinutes:   15,
		MaxGeographicSpreadKm: 50,
		AverageSpeedKmh:       40,
		ServiceTimeMinutes:    10,
		SwapDistanceTolerance: 0.10,
		MaxWindowShiftMinutes: 60,
		DepartAt:              departAt,
	}
}

// Validate checks every bound. The result is a joined error; planners wrap it
// into an InfeasibleInputError.
func (p OptimizationParameters) Validate() error {
	var errList []error

	if p.TargetSKUMin < 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("target_sku_min", p.TargetSKUMin, 0, p.TargetSKUMax))
	}
	if p.TargetSKUMax <= 0 || p.TargetSKUMax < p.TargetSKUMin {
		errList = append(errList, errs.NewValueIsOutOfRangeError("target_sku_max", p.TargetSKUMax, max(1, p.TargetSKUMin), "∞"))
	}
	errList = append(errList,
		positive("max_trip_weight_kg", p.MaxTripWeightKg),
		positive("max_trip_volume_m3", p.MaxTripVolumeM3),
		positive("max_trip_duration_hours", p.MaxTripDurationHours),
		positive("max_geographic_spread_km", p.MaxGeographicSpreadKm),
		positive("average_speed_kmh", p.AverageSpeedKmh),
	)
	if p.MaxDeliveryStops <= 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("max_delivery_stops", p.MaxDeliveryStops, 1, "∞"))
	}
	if p.TravelBufferMinutes < 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("travel_buffer_minutes", p.TravelBufferMinutes, 0, "∞"))
	}
	if p.ServiceTimeMinutes < 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("service_time_minutes", p.ServiceTimeMinutes, 0, "∞"))
	}
	if p.SwapDistanceTolerance < 0 || math.IsNaN(p.SwapDistanceTolerance) {
		errList = append(errList, errs.NewValueIsOutOfRangeError("swap_distance_tolerance", p.SwapDistanceTolerance, 0, "∞"))
	}
	if p.MaxWindowShiftMinutes < 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("max_window_shift_minutes", p.MaxWindowShiftMinutes, 0, "∞"))
	}
	if p.DepartAt.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("depart_at"))
	}

	return errors.Join(errList...)
}

// TravelBuffer returns the inter-stop buffer as a duration.
func (p OptimizationParameters) TravelBuffer() time.Duration {
	return time.Duration(p.TravelBufferMinutes) * time.Minute
}

// ServiceTime returns the fixed time spent at every stop.
func (p OptimizationParameters) ServiceTime() time.Duration {
	return time.Duration(p.ServiceTimeMinutes) * time.Minute
}

// MaxWindowShift returns the largest window shift the conflict resolver may propose.
func (p OptimizationParameters) MaxWindowShift() time.Duration {
	return time.Duration(p.MaxWindowShiftMinutes) * time.Minute
}

// TravelTime converts a distance into driving time at AverageSpeedKmh.
func (p OptimizationParameters) TravelTime(distanceKm float64) time.Duration {
	if p.AverageSpeedKmh <= 0 {
		return 0
	}
	return time.Duration(distanceKm / p.AverageSpeedKmh * float64(time.Hour))
}

// DurationHours applies distance / speed + stops × service time.
func (p OptimizationParameters) DurationHours(distanceKm float64, stops int) float64 {
	if p.AverageSpeedKmh <= 0 {
		return 0
	}
	return distanceKm/p.AverageSpeedKmh + float64(stops)*float64(p.ServiceTimeMinutes)/60
}

func positive(name string, v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return errs.NewValueIsOutOfRangeError(name, v, 0, "∞")
	}
	return nil
}
