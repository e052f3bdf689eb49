package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/pkg/errs"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/viper"
)

// ordersFile is the on-disk format read by "optimize" and written by "demo --out".
type ordersFile struct {
	Orders []orderRecord `mapstructure:"orders" json:"orders"`
}

type orderRecord struct {
	ID          string         `mapstructure:"id" json:"id,omitempty"`
	Latitude    float64        `mapstructure:"latitude" json:"latitude"`
	Longitude   float64        `mapstructure:"longitude" json:"longitude"`
	Priority    string         `mapstructure:"priority" json:"priority,omitempty"`
	WindowStart time.Time      `mapstructure:"window_start" json:"window_start,omitzero"`
	WindowEnd   time.Time      `mapstructure:"window_end" json:"window_end,omitzero"`
	Lines       []skuLineEntry `mapstructure:"lines" json:"lines"`
}

type skuLineEntry struct {
	SKU          string  `mapstructure:"sku" json:"sku"`
	Quantity     int     `mapstructure:"quantity" json:"quantity"`
	UnitWeightKg float64 `mapstructure:"unit_weight_kg" json:"unit_weight_kg"`
	UnitVolumeM3 float64 `mapstructure:"unit_volume_m3" json:"unit_volume_m3"`
	Temperature  string  `mapstructure:"temperature" json:"temperature,omitempty"`
	Fragile      bool    `mapstructure:"fragile" json:"fragile,omitempty"`
}

func readOrdersFile(path string) (ordersFile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return ordersFile{}, fmt.Errorf("error reading orders file: %w", err)
	}

	var file ordersFile
	if err := v.Unmarshal(&file, decodeHooks()); err != nil {
		return ordersFile{}, fmt.Errorf("unable to decode orders file: %w", err)
	}
	return file, nil
}

// toOrders converts every record, reporting progress on w.
func (f ordersFile) toOrders(w io.Writer) ([]*order.Order, error) {
	bar := progressbar.NewOptions(len(f.Orders),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("orders"),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { _, _ = fmt.Fprintln(w) }),
	)

	orders := make([]*order.Order, 0, len(f.Orders))
	for i, record := range f.Orders {
		o, err := record.toDomain()
		if err != nil {
			return nil, fmt.Errorf("order #%d: %w", i+1, err)
		}
		orders = append(orders, o)
		if err = bar.Add(1); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r orderRecord) toDomain() (*order.Order, error) {
	id := kernel.NewUUID()
	if r.ID != "" {
		parsed, err := kernel.UUIDFromString(r.ID)
		if err != nil {
			return nil, err
		}
		id = parsed
	}

	destination, err := kernel.NewLocation(r.Latitude, r.Longitude)
	if err != nil {
		return nil, err
	}

	priority, err := order.ParsePriority(r.Priority)
	if err != nil {
		return nil, err
	}

	window, err := r.window()
	if err != nil {
		return nil, err
	}

	lines := make([]order.SKULine, 0, len(r.Lines))
	var lineErrs []error
	for _, entry := range r.Lines {
		line, lineErr := entry.toDomain()
		if lineErr != nil {
			lineErrs = append(lineErrs, lineErr)
			continue
		}
		lines = append(lines, line)
	}
	if err = errors.Join(lineErrs...); err != nil {
		return nil, err
	}

	return order.NewOrder(id, destination, lines, window, priority)
}

func (r orderRecord) window() (*kernel.TimeWindow, error) {
	if r.WindowStart.IsZero() && r.WindowEnd.IsZero() {
		return nil, nil
	}
	if r.WindowStart.IsZero() {
		return nil, errs.NewValueIsRequiredError("window_start")
	}
	if r.WindowEnd.IsZero() {
		return nil, errs.NewValueIsRequiredError("window_end")
	}

	w, err := kernel.NewTimeWindow(r.WindowStart, r.WindowEnd)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (e skuLineEntry) toDomain() (order.SKULine, error) {
	temperature, err := order.ParseTemperatureClass(e.Temperature)
	if err != nil {
		return order.SKULine{}, err
	}
	return order.NewSKULine(e.SKU, e.Quantity, e.UnitWeightKg, e.UnitVolumeM3, temperature, e.Fragile)
}
