package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/flowboard/flowboard/pkg/cmd"
	"github.com/flowboard/flowboard/pkg/dispatcher"
	"github.com/flowboard/flowboard/pkg/log"
	"github.com/flowboard/flowboard/pkg/otelhelper"
	"github.com/flowboard/flowboard/pkg/persistence/memory"
	"github.com/flowboard/flowboard/pkg/registry"
	"github.com/flowboard/flowboard/pkg/scheduler"
)

func main() {
	command := &cli.Command{
		Name:                  "flowboard-dispatcher",
		Usage:                 "Start the Flowboard automation dispatcher service",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewValidateCommand(),
			NewApplyTemplateCommand(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dispatcher-id",
				Aliases: []string{"id"},
				Usage:   "Custom dispatcher ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("DISPATCHER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus type (kafka, gochannel)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the rule cache (disabled if empty)",
				Value:   "",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.DurationFlag{
				Name:    "action-timeout",
				Usage:   "Per-action execution timeout (0 disables)",
				Value:   30 * time.Second,
				Sources: cli.EnvVars("ACTION_TIMEOUT"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.BoolFlag{
				Name:    "due-date-scanner",
				Usage:   "Run the due-date scanner alongside the dispatcher",
				Sources: cli.EnvVars("DUE_DATE_SCANNER_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "due-date-schedule",
				Usage:   "Cron schedule for the due-date scanner",
				Value:   "@every 15m",
				Sources: cli.EnvVars("DUE_DATE_SCHEDULE"),
			},
			&cli.DurationFlag{
				Name:    "due-date-window",
				Usage:   "How far ahead a due date counts as approaching",
				Value:   24 * time.Hour,
				Sources: cli.EnvVars("DUE_DATE_WINDOW"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log output format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			dispatcherID := command.String("dispatcher-id")
			if dispatcherID == "" {
				dispatcherID = "dispatcher-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("flowboard-dispatcher").With("dispatcher_id", dispatcherID)

			logger.InfoContext(ctx, "Initializing Flowboard dispatcher")

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			rules := cmd.NewRuleRepository(persistence, command.String("redis-url"), logger)

			cards := memory.NewCardStore()
			reg := registry.Default(logger, registry.Stores{
				Cards:         cards,
				Members:       memory.NewMembershipStore(),
				Notifications: memory.NewNotificationSink(),
				CustomFields:  persistence.CustomFields(),
			})

			recorder := dispatcher.NewRecorder(persistence.Executions(), logger)
			executor := dispatcher.NewExecutor(reg, recorder, logger,
				dispatcher.WithActionTimeout(command.Duration("action-timeout")))

			var dispatcherOpts []dispatcher.DispatcherOption

			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "flowboard-dispatcher")
				if err != nil {
					return fmt.Errorf("failed to initialize tracer: %w", err)
				}

				dispatcherOpts = append(dispatcherOpts, dispatcher.WithTracer(tracer))
			}

			disp := dispatcher.NewDispatcher(rules, executor, logger, dispatcherOpts...)

			worker := NewWorker(dispatcherID, disp, eventBus, logger)

			if command.Bool("due-date-scanner") {
				scanner := scheduler.NewDueDateScanner(cards, eventBus, logger,
					scheduler.WithSchedule(command.String("due-date-schedule")),
					scheduler.WithWindow(command.Duration("due-date-window")))

				if err := scanner.Start(ctx); err != nil {
					return fmt.Errorf("failed to start due-date scanner: %w", err)
				}
				defer scanner.Stop()
			}

			return worker.Start(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
