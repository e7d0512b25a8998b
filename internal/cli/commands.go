package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	shippinghttpmapper "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/http/mapper"
	platformmigrations "github.com/Apurer/storefront-tracking/internal/platform/migrations"
)

// NewRouteCommand prints the route of an order.
func NewRouteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "route <order-id>",
		Short:        "Print the shipment route of an order",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			services, cleanup, err := rootOpts.Services(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			route, err := services.Shipping.GetRoute(cmd.Context(), orderID)
			if err != nil {
				return err
			}
			out := newOutput(rootOpts, cmd)
			if out.json() {
				return out.writeJSON(shippinghttpmapper.FromDomainRoute(route))
			}
			if len(route) == 0 {
				out.printf("order %d has no shipment route\n", orderID)
				return nil
			}
			for _, step := range route {
				mark := " "
				if step.IsReached {
					mark = "x"
				}
				out.printf("[%s] %d. %s (step %d)\n", mark, step.Position, step.LocationName, step.ID)
			}
			return nil
		},
	}
}

// NewBuildCommand replaces the route of an order with stops read from a JSON file.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	var stopsFile string
	cmd := &cobra.Command{
		Use:          "build <order-id>",
		Short:        "Replace the shipment route of an order",
		Long:         "Replace the shipment route of an order with the stops listed in a JSON file shaped like the route endpoint body.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			raw, err := readStops(cmd, stopsFile)
			if err != nil {
				return err
			}
			var req shippinghttpmapper.BuildRouteRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("decode stops: %w", err)
			}
			services, cleanup, err := rootOpts.Services(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			route, err := services.Shipping.BuildRoute(cmd.Context(), orderID, shippinghttpmapper.ToStopDescriptors(req.Stops))
			if err != nil {
				return err
			}
			out := newOutput(rootOpts, cmd)
			if out.json() {
				return out.writeJSON(shippinghttpmapper.FromDomainRoute(route))
			}
			out.printf("order %d route replaced with %d steps\n", orderID, len(route))
			return nil
		},
	}
	cmd.Flags().StringVarP(&stopsFile, "stops", "f", "-", "JSON file with {\"stops\": [...]}, - reads stdin")
	return cmd
}

// NewProgressCommand prints the progress summary of an order.
func NewProgressCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "progress <order-id>",
		Short:        "Print how far along its route an order is",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			services, cleanup, err := rootOpts.Services(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			progress, err := services.Shipping.GetProgress(cmd.Context(), orderID)
			if err != nil {
				return err
			}
			out := newOutput(rootOpts, cmd)
			if out.json() {
				return out.writeJSON(shippinghttpmapper.FromDomainProgress(progress))
			}
			if !progress.HasTracking() {
				out.printf("order %d: %s\n", orderID, progress.Label)
				return nil
			}
			out.printf("order %d: %d%% (%d/%d), delivered=%t\n",
				orderID, progress.Percentage, progress.CurrentStep, progress.TotalSteps, progress.IsDelivered)
			return nil
		},
	}
}

// NewAdvanceCommand marks the next unreached step of an order as reached.
func NewAdvanceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "advance <order-id>",
		Short:        "Mark the next unreached step as reached",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			services, cleanup, err := rootOpts.Services(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			advanced, err := services.Shipping.Advance(cmd.Context(), orderID)
			if err != nil {
				return err
			}
			out := newOutput(rootOpts, cmd)
			if out.json() {
				return out.writeJSON(shippinghttpmapper.AdvanceResult{Advanced: advanced})
			}
			if advanced {
				out.printf("order %d advanced\n", orderID)
			} else {
				out.printf("order %d has nothing left to advance\n", orderID)
			}
			return nil
		},
	}
}

// NewMigrateCommand applies the database schema.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Apply the orders and shipment_steps schema to POSTGRES_DSN",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, cleanup, err := rootOpts.Services(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			if services.DB == nil {
				return errors.New("migrate requires a reachable POSTGRES_DSN")
			}
			if err := platformmigrations.Run(services.DB.WithContext(cmd.Context())); err != nil {
				return err
			}
			newOutput(rootOpts, cmd).printf("schema up to date\n")
			return nil
		},
	}
}

func parseOrderID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid order id %q", raw)
	}
	return id, nil
}

func readStops(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
