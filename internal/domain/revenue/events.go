package revenue

import (
	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// Revenue source lifecycle event types
const (
	EventTypeSourceCreated = "revenue.source.created"
	EventTypeSourceUpdated = "revenue.source.updated"
	EventTypeSourceDeleted = "revenue.source.deleted"
)

// SourceCreatedEvent is raised when a revenue source comes into
// existence in a potentially recognizable state
type SourceCreatedEvent struct {
	shared.BaseDomainEvent
	Source  Source     `json:"-"`
	ActorID *uuid.UUID `json:"actor_id,omitempty"`
}

// NewSourceCreatedEvent creates a source created event
func NewSourceCreatedEvent(source Source, actorID *uuid.UUID) *SourceCreatedEvent {
	ref := source.Reference()
	return &SourceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSourceCreated, ref.Type, ref.ID),
		Source:          source,
		ActorID:         actorID,
	}
}

// SourceUpdatedEvent is raised when a revenue source changes in a way
// that may alter its recognized amount. Old carries the pre-update
// state, New the post-update state.
type SourceUpdatedEvent struct {
	shared.BaseDomainEvent
	Old     Source     `json:"-"`
	New     Source     `json:"-"`
	ActorID *uuid.UUID `json:"actor_id,omitempty"`
}

// NewSourceUpdatedEvent creates a source updated event
func NewSourceUpdatedEvent(oldSource, newSource Source, actorID *uuid.UUID) *SourceUpdatedEvent {
	ref := newSource.Reference()
	return &SourceUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSourceUpdated, ref.Type, ref.ID),
		Old:             oldSource,
		New:             newSource,
		ActorID:         actorID,
	}
}

// SourceDeletedEvent is raised when a revenue source is removed and its
// remaining credits must be reversed
type SourceDeletedEvent struct {
	shared.BaseDomainEvent
	Source  Source     `json:"-"`
	ActorID *uuid.UUID `json:"actor_id,omitempty"`
}

// NewSourceDeletedEvent creates a source deleted event
func NewSourceDeletedEvent(source Source, actorID *uuid.UUID) *SourceDeletedEvent {
	ref := source.Reference()
	return &SourceDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSourceDeleted, ref.Type, ref.ID),
		Source:          source,
		ActorID:         actorID,
	}
}
