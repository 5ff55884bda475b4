package booking

import "context"

// Usecase defines the interface for booking operations.
type Usecase interface {
	Create(ctx context.Context, in CreateBookingRequest) (*Booking, error)
	List(ctx context.Context) ([]Booking, error)
	Get(ctx context.Context, id string) (*Booking, error)
	Update(ctx context.Context, in UpdateBookingRequest) (*Booking, error)
	Delete(ctx context.Context, id string) (*Booking, error)
}
