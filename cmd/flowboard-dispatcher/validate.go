package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"

	"github.com/flowboard/flowboard/pkg/cmd"
	"github.com/flowboard/flowboard/pkg/persistence/memory"
	"github.com/flowboard/flowboard/pkg/registry"
)

var ErrInvalidRules = errors.New("invalid rules found")

// NewValidateCommand checks every stored rule against struct constraints and
// the registered action parameter schemas.
func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate stored automation rules against action schemas",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			validate := validator.New(validator.WithRequiredStructEnabled())

			logger := slog.With(
				"module", "flowboard-dispatcher",
				"action", "validate",
			)

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					return
				}
			}()

			reg := registry.Default(logger, registry.Stores{
				Cards:         memory.NewCardStore(),
				Members:       memory.NewMembershipStore(),
				Notifications: memory.NewNotificationSink(),
				CustomFields:  persistence.CustomFields(),
			})

			rules, err := persistence.Rules().AllRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch rules: %w", err)
			}

			logger.Info("Validating automation rules", "rules", len(rules))

			_, _ = fmt.Fprintln(os.Stdout, "Automation Rule Validation Results:")
			_, _ = fmt.Fprintln(os.Stdout, "===================================")

			validRules := 0
			invalidRules := 0

			for _, rule := range rules {
				_, _ = fmt.Fprintf(os.Stdout, "\nRule: %s (%s)\n", rule.Name, rule.ID)

				problems := make([]string, 0)

				if err := validate.Struct(rule); err != nil {
					problems = append(problems, err.Error())
				}

				if !rule.TriggerType.Valid() {
					problems = append(problems, fmt.Sprintf("unknown trigger type '%s'", rule.TriggerType))
				}

				if err := reg.ValidateRule(rule); err != nil {
					problems = append(problems, err.Error())
				}

				if len(problems) == 0 {
					validRules++

					_, _ = fmt.Fprintln(os.Stdout, "  OK")

					continue
				}

				invalidRules++

				for _, problem := range problems {
					_, _ = fmt.Fprintf(os.Stdout, "  INVALID: %s\n", problem)
				}
			}

			_, _ = fmt.Fprintf(os.Stdout, "\nValid: %d, Invalid: %d\n", validRules, invalidRules)

			if invalidRules > 0 {
				return ErrInvalidRules
			}

			return nil
		},
	}
}
