package participant

import "context"

// Store defines the persistence operations for participants.
// Implementations must return sentinel.ErrNotFound for missing records and
// sentinel.ErrConflict for duplicate IDs on create.
type Store interface {
	Create(ctx context.Context, p Participant) error
	Update(ctx context.Context, p Participant) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Participant, error)
	// FindByCedula returns the participant holding the cedula, or
	// sentinel.ErrNotFound when no one does.
	FindByCedula(ctx context.Context, cedula string) (Participant, error)
	List(ctx context.Context) ([]Participant, error)
}
