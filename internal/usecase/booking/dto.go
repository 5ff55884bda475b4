package booking

// CreateBookingRequest carries every booking field. Date is YYYY-MM-DD or RFC 3339.
type CreateBookingRequest struct {
	ID       string `validate:"required"`
	Name     string `validate:"required"`
	Email    string `validate:"required"`
	Phone    string `validate:"required"`
	Date     string `validate:"required"`
	TimeSlot string `validate:"required"`
}

// UpdateBookingRequest names the booking by ID; nil fields are left as stored.
// NewID is the id found in the body, if any, and must equal ID.
type UpdateBookingRequest struct {
	ID       string
	NewID    *string
	Name     *string
	Email    *string
	Phone    *string
	Date     *string
	TimeSlot *string
}

// Booking is the API view of a booking.
type Booking struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	Date     string
	TimeSlot string
}
