// Package eventbus connects external event producers to the trigger
// dispatcher through a message bus. The engine itself stays synchronous; the
// bus is the caller's asynchronous invocation mechanism.
package eventbus

import (
	"context"

	"github.com/flowboard/flowboard/pkg/events"
)

// TriggerHandler processes one trigger event.
type TriggerHandler func(ctx context.Context, event *events.TriggerEvent) error

// EventBus publishes and consumes trigger events.
type EventBus interface {
	PublishTrigger(ctx context.Context, event *events.TriggerEvent) error
	// SubscribeTriggers starts consuming trigger events, passing each to the
	// handler. A handler error nacks the message.
	SubscribeTriggers(ctx context.Context, handler TriggerHandler) error
	Close(ctx context.Context) error
}
