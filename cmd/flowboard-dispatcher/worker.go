package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowboard/flowboard/pkg/dispatcher"
	"github.com/flowboard/flowboard/pkg/eventbus"
	"github.com/flowboard/flowboard/pkg/events"
)

// Worker consumes trigger events from the event bus and feeds them to the
// dispatcher.
type Worker struct {
	id         string
	dispatcher *dispatcher.Dispatcher
	eventBus   eventbus.EventBus
	logger     *slog.Logger
}

func NewWorker(id string, d *dispatcher.Dispatcher, bus eventbus.EventBus, logger *slog.Logger) *Worker {
	return &Worker{
		id:         id,
		dispatcher: d,
		eventBus:   bus,
		logger:     logger.With("module", "worker"),
	}
}

// Start subscribes to trigger events and blocks until the context is
// cancelled or a termination signal arrives.
func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.handleSignals(cancel)

	err := w.eventBus.SubscribeTriggers(ctx, w.handleTrigger)
	if err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Worker started, consuming trigger events")

	<-ctx.Done()

	w.logger.Info("Worker stopped")

	return nil
}

func (w *Worker) handleTrigger(ctx context.Context, event *events.TriggerEvent) error {
	logger := w.logger.With("event_id", event.EventID, "trigger_type", event.TriggerType)

	executions, err := w.dispatcher.Dispatch(ctx, event.OrganizationID, event.TriggerType, event.Payload)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to dispatch trigger event", "error", err)

		return err
	}

	logger.DebugContext(ctx, "Trigger event dispatched", "executions", len(executions))

	return nil
}

func (w *Worker) handleSignals(cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		w.logger.Info("Received signal, shutting down gracefully", "signal", sig)
		cancel()
	}()
}
