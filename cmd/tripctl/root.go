package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	httpadapter "tripplanner/internal/adapters/in/http"
	"tripplanner/internal/core/application/usecases/commands"
	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/core/domain/services"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
	originLat  float64
	originLon  float64
	depart     string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "tripctl",
		Short:         "Plans delivery trips and routes offline",
		Long:          `tripctl consolidates orders into delivery trips and optimises the route of every trip without a database or broker.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "optimization parameters file (yaml or json)")
	flags.Float64Var(&opts.originLat, "origin-lat", -1.2921, "latitude of the manufacturing origin")
	flags.Float64Var(&opts.originLon, "origin-lon", 36.8219, "longitude of the manufacturing origin")
	flags.StringVar(&opts.depart, "depart", "", "departure time in RFC3339 (default now)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log planner progress")

	root.AddCommand(newOptimizeCommand(opts), newDemoCommand(opts))
	return root
}

func (o *rootOptions) origin() (kernel.Location, error) {
	return kernel.NewLocation(o.originLat, o.originLon)
}

func (o *rootOptions) departAt(now time.Time) (time.Time, error) {
	if o.depart == "" {
		return now.UTC().Truncate(time.Minute), nil
	}
	t, err := time.Parse(time.RFC3339, o.depart)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse --depart: %w", err)
	}
	return t.UTC(), nil
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// plan runs the planner over orders and writes the result to cmd's output.
func (o *rootOptions) plan(cmd *cobra.Command, orders []*order.Order, departAt time.Time) error {
	origin, err := o.origin()
	if err != nil {
		return err
	}

	params, err := loadParameters(o.configFile, departAt)
	if err != nil {
		return err
	}

	planner := services.NewPlanner(o.logger(cmd.ErrOrStderr()))
	result, err := planner.ConsolidateAndOptimize(cmd.Context(), orders, origin, params)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(httpadapter.PlanResponse(commands.PlanTripsResult{Plan: result}))
}
