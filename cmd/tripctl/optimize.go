package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newOptimizeCommand(opts *rootOptions) *cobra.Command {
	var ordersPath string

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Plans the orders of an orders file",
		Example: `  tripctl optimize --orders orders.json --origin-lat -1.29 --origin-lon 36.82
  tripctl optimize --orders orders.yaml --config params.yaml --depart 2026-10-19T06:00:00Z`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			departAt, err := opts.departAt(time.Now())
			if err != nil {
				return err
			}

			file, err := readOrdersFile(ordersPath)
			if err != nil {
				return err
			}

			orders, err := file.toOrders(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return opts.plan(cmd, orders, departAt)
		},
	}

	cmd.Flags().StringVar(&ordersPath, "orders", "", "orders file (yaml or json)")
	_ = cmd.MarkFlagRequired("orders")
	return cmd
}
