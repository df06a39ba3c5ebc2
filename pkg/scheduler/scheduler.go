// Package scheduler emits time-based trigger events. The due-date scanner
// runs on a cron schedule, finds open cards approaching their due date, and
// publishes a due_date_approaching event per card for the dispatcher.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/flowboard/flowboard/pkg/eventbus"
	"github.com/flowboard/flowboard/pkg/events"
	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/protocol"
)

const (
	defaultSchedule = "@every 15m"
	defaultWindow   = 24 * time.Hour
)

type DueDateScanner struct {
	cards    protocol.CardStore
	bus      eventbus.EventBus
	logger   *slog.Logger
	cron     *cron.Cron
	schedule string
	window   time.Duration
	now      func() time.Time
}

type ScannerOption func(*DueDateScanner)

// WithSchedule sets the cron expression the scanner runs on.
func WithSchedule(schedule string) ScannerOption {
	return func(s *DueDateScanner) {
		s.schedule = schedule
	}
}

// WithWindow sets how far ahead of now a due date counts as approaching.
func WithWindow(window time.Duration) ScannerOption {
	return func(s *DueDateScanner) {
		s.window = window
	}
}

func NewDueDateScanner(cards protocol.CardStore, bus eventbus.EventBus, logger *slog.Logger, opts ...ScannerOption) *DueDateScanner {
	scanner := &DueDateScanner{
		cards:    cards,
		bus:      bus,
		logger:   logger.With("module", "due_date_scanner"),
		schedule: defaultSchedule,
		window:   defaultWindow,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(scanner)
	}

	return scanner
}

// Start registers the scan job and begins the cron loop. It returns
// immediately; scans run on the cron's goroutine until Stop.
func (s *DueDateScanner) Start(ctx context.Context) error {
	s.cron = cron.New()

	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.Scan(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Due-date scan failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.InfoContext(ctx, "Due-date scanner started", "schedule", s.schedule, "window", s.window)

	return nil
}

func (s *DueDateScanner) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Scan publishes one due_date_approaching event per open card whose due date
// falls inside the lookahead window. A publish failure for one card does not
// stop the sweep.
func (s *DueDateScanner) Scan(ctx context.Context) error {
	cutoff := s.now().Add(s.window)

	cards, err := s.cards.CardsDueBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	published := 0

	for _, card := range cards {
		event := events.NewTriggerEvent(card.OrganizationID, models.TriggerDueDateApproaching, dueDatePayload(card))

		if err := s.bus.PublishTrigger(ctx, event); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish due-date event",
				"card_id", card.ID,
				"error", err)

			continue
		}

		published++
	}

	s.logger.InfoContext(ctx, "Due-date scan complete", "cards", len(cards), "published", published)

	return nil
}

func dueDatePayload(card *models.Card) map[string]any {
	payload := map[string]any{
		"card_id":     card.ID,
		"project_id":  card.ProjectID,
		"title":       card.Title,
		"status":      card.Status,
		"priority":    card.Priority,
		"assigned_to": card.AssignedTo,
	}

	if card.DueDate != nil {
		payload["due_date"] = card.DueDate.UTC().Format(time.RFC3339)
	}

	return payload
}
