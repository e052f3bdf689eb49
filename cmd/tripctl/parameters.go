package main

import (
	"fmt"
	"strings"
	"time"

	"tripplanner/internal/core/domain/model/trip"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const envPrefix = "TRIPCTL"

// loadParameters layers the parameters file and TRIPCTL_* environment variables
// over trip.DefaultParameters.
func loadParameters(cfgFile string, departAt time.Time) (trip.OptimizationParameters, error) {
	v := viper.New()
	setParameterDefaults(v, trip.DefaultParameters(departAt))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return trip.OptimizationParameters{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var params trip.OptimizationParameters
	if err := v.Unmarshal(&params, decodeHooks()); err != nil {
		return trip.OptimizationParameters{}, fmt.Errorf("unable to decode parameters: %w", err)
	}
	return params, nil
}

func setParameterDefaults(v *viper.Viper, p trip.OptimizationParameters) {
	v.SetDefault("target_sku_min", p.TargetSKUMin)
	v.SetDefault("target_sku_max", p.TargetSKUMax)
	v.SetDefault("max_trip_weight_kg", p.MaxTripWeightKg)
	v.SetDefault("max_trip_volume_m3", p.MaxTripVolumeM3)
	v.SetDefault("max_delivery_stops", p.MaxDeliveryStops)
	v.SetDefault("max_trip_duration_hours", p.MaxTripDurationHours)
	v.SetDefault("travel_buffer_minutes", p.TravelBufferMinutes)
	v.SetDefault("max_geographic_spread_km", p.MaxGeographicSpreadKm)
	v.SetDefault("average_speed_kmh", p.AverageSpeedKmh)
	v.SetDefault("service_time_minutes", p.ServiceTimeMinutes)
	v.SetDefault("swap_distance_tolerance", p.SwapDistanceTolerance)
	v.SetDefault("max_window_shift_minutes", p.MaxWindowShiftMinutes)
	v.SetDefault("return_to_origin", p.ReturnToOrigin)
	v.SetDefault("separate_temperature_classes", p.SeparateTemperatureClasses)
	v.SetDefault("depart_at", p.DepartAt.Format(time.RFC3339))
}

func decodeHooks() viper.DecoderConfigOption {
	return viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
}
