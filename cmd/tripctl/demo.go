package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"tripplanner/internal/core/domain/model/kernel"

	"github.com/jaswdr/faker"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newDemoCommand(opts *rootOptions) *cobra.Command {
	var (
		count   int
		seed    int64
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generates synthetic orders around the origin and plans them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("--orders must be positive, got %d", count)
			}

			departAt, err := opts.departAt(time.Now())
			if err != nil {
				return err
			}
			origin, err := opts.origin()
			if err != nil {
				return err
			}

			file, err := generateOrders(cmd.ErrOrStderr(), seed, count, origin, departAt)
			if err != nil {
				return err
			}
			if outPath != "" {
				if err = writeOrdersFile(outPath, file); err != nil {
					return err
				}
			}

			orders, err := file.toOrders(io.Discard)
			if err != nil {
				return err
			}
			return opts.plan(cmd, orders, departAt)
		},
	}

	cmd.Flags().IntVar(&count, "orders", 50, "number of orders to generate")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().StringVar(&outPath, "out", "", "also write the generated orders to this json file")
	return cmd
}

var (
	demoTemperatures = []string{"ambient", "ambient", "ambient", "refrigerated", "frozen"}
	demoPriorities   = []string{"low", "normal", "normal", "normal", "high", "urgent"}
)

// generateOrders scatters n orders within roughly 20 km of origin. About a third
// of them get a two hour delivery window during the trip.
func generateOrders(w io.Writer, seed int64, n int, origin kernel.Location, departAt time.Time) (ordersFile, error) {
	f := faker.NewWithSeed(rand.NewSource(seed))
	bar := progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("generating"),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { _, _ = fmt.Fprintln(w) }),
	)

	file := ordersFile{Orders: make([]orderRecord, 0, n)}
	for range n {
		record := orderRecord{
			ID:        kernel.NewUUID().String(),
			Latitude:  origin.Lat() + f.Float64(4, -18, 18)/100,
			Longitude: origin.Lon() + f.Float64(4, -18, 18)/100,
			Priority:  f.RandomStringElement(demoPriorities),
		}
		if f.IntBetween(1, 3) == 1 {
			record.WindowStart = departAt.Add(time.Duration(f.IntBetween(1, 6)) * time.Hour)
			record.WindowEnd = record.WindowStart.Add(2 * time.Hour)
		}

		lines := f.IntBetween(1, 12)
		for range lines {
			record.Lines = append(record.Lines, skuLineEntry{
				SKU:          f.Numerify("SKU-#####"),
				Quantity:     f.IntBetween(1, 48),
				UnitWeightKg: f.Float64(2, 0, 3),
				UnitVolumeM3: f.Float64(4, 0, 1) / 100,
				Temperature:  f.RandomStringElement(demoTemperatures),
				Fragile:      f.IntBetween(1, 10) == 1,
			})
		}

		file.Orders = append(file.Orders, record)
		if err := bar.Add(1); err != nil {
			return ordersFile{}, err
		}
	}
	return file, nil
}

func writeOrdersFile(path string, file ordersFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
