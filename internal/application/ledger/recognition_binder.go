package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/revenue"
	"github.com/hms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RecognitionBinder listens for revenue source lifecycle events and keeps
// the ledger in sync. Binding failures are logged but never surface to
// the originating flow: clinical record keeping must not be blocked by
// the ledger, and the idempotent SyncSource lets a later redelivery or
// manual replay repair the gap.
type RecognitionBinder struct {
	service *Service
	logger  *zap.Logger
}

// NewRecognitionBinder creates a binder over the ledger service
func NewRecognitionBinder(service *Service, logger *zap.Logger) *RecognitionBinder {
	return &RecognitionBinder{
		service: service,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (b *RecognitionBinder) EventTypes() []string {
	return []string{
		revenue.EventTypeSourceCreated,
		revenue.EventTypeSourceUpdated,
		revenue.EventTypeSourceDeleted,
	}
}

// Handle processes a source lifecycle event
func (b *RecognitionBinder) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *revenue.SourceCreatedEvent:
		return b.sync(ctx, e.Source, e.ActorID, event)
	case *revenue.SourceUpdatedEvent:
		return b.sync(ctx, e.New, e.ActorID, event)
	case *revenue.SourceDeletedEvent:
		if err := b.service.ReverseSource(ctx, e.Source, e.ActorID); err != nil {
			b.logger.Error("failed to reverse deleted revenue source",
				zap.String("event_type", event.EventType()),
				zap.String("reference", e.Source.Reference().String()),
				zap.Error(err),
			)
			return fmt.Errorf("failed to reverse deleted revenue source: %w", err)
		}
		return nil
	default:
		b.logger.Error("unexpected event type",
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (b *RecognitionBinder) sync(ctx context.Context, source revenue.Source, actorID *uuid.UUID, event shared.DomainEvent) error {
	if err := b.service.SyncSource(ctx, source, actorID); err != nil {
		b.logger.Error("failed to sync revenue source to ledger",
			zap.String("event_type", event.EventType()),
			zap.String("reference", source.Reference().String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to sync revenue source: %w", err)
	}
	return nil
}
