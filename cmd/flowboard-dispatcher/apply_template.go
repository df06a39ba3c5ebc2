package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/flowboard/flowboard/pkg/cmd"
	"github.com/flowboard/flowboard/pkg/persistence/memory"
	"github.com/flowboard/flowboard/pkg/provisioning"
	"github.com/flowboard/flowboard/pkg/registry"
)

// NewApplyTemplateCommand applies a public automation template to an
// organization.
func NewApplyTemplateCommand() *cli.Command {
	return &cli.Command{
		Name:  "apply-template",
		Usage: "Apply a public automation template to an organization",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "template-id",
				Usage:    "Template to apply",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "organization-id",
				Usage:    "Target organization",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "actor-id",
				Usage:    "User recorded as the creator of the materialized items",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "customizations",
				Usage: "Path to a JSON file with per-index rule and field overrides",
				Value: "",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := slog.With(
				"module", "flowboard-dispatcher",
				"action", "apply-template",
			)

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					return
				}
			}()

			var customizations *provisioning.Customizations

			if path := command.String("customizations"); path != "" {
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read customizations file: %w", err)
				}

				customizations = &provisioning.Customizations{}
				if err := json.Unmarshal(raw, customizations); err != nil {
					return fmt.Errorf("failed to parse customizations file: %w", err)
				}
			}

			reg := registry.Default(logger, registry.Stores{
				Cards:         memory.NewCardStore(),
				Members:       memory.NewMembershipStore(),
				Notifications: memory.NewNotificationSink(),
				CustomFields:  persistence.CustomFields(),
			})

			applier := provisioning.NewApplier(persistence, logger, provisioning.WithRegistry(reg))

			err := applier.Apply(ctx,
				command.String("organization-id"),
				command.String("template-id"),
				command.String("actor-id"),
				customizations,
			)
			if err != nil {
				return fmt.Errorf("failed to apply template: %w", err)
			}

			_, _ = fmt.Fprintln(os.Stdout, "Template applied successfully")

			return nil
		},
	}
}
