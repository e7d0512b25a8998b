// Package cli implements shipmentctl, an operator tool for inspecting and driving shipment routes.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Apurer/storefront-tracking/internal/app/api"
	platformobservability "github.com/Apurer/storefront-tracking/internal/platform/observability"
)

// ServiceFactory builds the services a command operates on and returns their cleanup.
type ServiceFactory func(ctx context.Context) (*api.Services, func(), error)

// RootOptions holds global flags and collaborators for all commands.
type RootOptions struct {
	Format   string // "json" | "text"
	Services ServiceFactory
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the shipmentctl root command. A nil factory builds services from the environment.
func NewRootCommand(factory ServiceFactory) *cobra.Command {
	opts := &RootOptions{Services: factory}
	if opts.Services == nil {
		opts.Services = EnvServices(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	}

	cmd := &cobra.Command{
		Use:   "shipmentctl",
		Short: "Inspect and drive shipment tracking routes",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewRouteCommand(opts))
	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewProgressCommand(opts))
	cmd.AddCommand(NewAdvanceCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	return cmd
}

// EnvServices builds services from the same environment variables as the API, without a route cache.
func EnvServices(logger *slog.Logger) ServiceFactory {
	return func(ctx context.Context) (*api.Services, func(), error) {
		cfg, err := api.LoadConfig()
		if err != nil {
			return nil, nil, err
		}
		// The API cache is invalidated through published events, a one-shot process has nothing to memoize.
		cfg.RouteCacheDisabled = true
		return api.BuildServices(ctx, cfg, &platformobservability.Instruments{Logger: logger})
	}
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
