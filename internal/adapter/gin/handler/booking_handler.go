package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gas-booking-service/internal/usecase/booking"
)

// BookingHandler serves /gasBookingForm.
type BookingHandler struct {
	uc  booking.Usecase
	log *zap.Logger
}

// NewBookingHandler creates a new BookingHandler instance
func NewBookingHandler(uc booking.Usecase, log *zap.Logger) *BookingHandler {
	return &BookingHandler{uc: uc, log: log}
}

// BookingRequest is the body of POST /gasBookingForm.
type BookingRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
}

// UpdateBookingRequest is the body of PUT /gasBookingForm/:id. Absent fields
// are left unchanged.
type UpdateBookingRequest struct {
	ID       *string `json:"id"`
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Date     *string `json:"date"`
	TimeSlot *string `json:"timeSlot"`
}

// BookingResponse is the JSON representation of a booking.
type BookingResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
}

func toResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:       b.ID,
		Name:     b.Name,
		Email:    b.Email,
		Phone:    b.Phone,
		Date:     b.Date,
		TimeSlot: b.TimeSlot,
	}
}

// Create handles POST /gasBookingForm
func (h *BookingHandler) Create(c *gin.Context) {
	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid booking request", zap.Error(err))
		c.String(http.StatusBadRequest, msgInvalidBody)
		return
	}

	if _, err := h.uc.Create(c.Request.Context(), booking.CreateBookingRequest{
		ID:       req.ID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Date:     req.Date,
		TimeSlot: req.TimeSlot,
	}); err != nil {
		respondError(c, h.log, err, http.StatusBadRequest, "Failed to save form data")
		return
	}

	c.String(http.StatusCreated, "Form data saved and email queued")
}

// List handles GET /gasBookingForm
func (h *BookingHandler) List(c *gin.Context) {
	bookings, err := h.uc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, http.StatusBadRequest, "Failed to fetch form data")
		return
	}

	resp := make([]BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = toResponse(&bookings[i])
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /gasBookingForm/:id
func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err, http.StatusNotFound, "Failed to fetch form data")
		return
	}
	c.JSON(http.StatusOK, toResponse(b))
}

// Update handles PUT /gasBookingForm/:id
func (h *BookingHandler) Update(c *gin.Context) {
	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid booking update request", zap.Error(err))
		c.String(http.StatusBadRequest, msgInvalidBody)
		return
	}

	b, err := h.uc.Update(c.Request.Context(), booking.UpdateBookingRequest{
		ID:       c.Param("id"),
		NewID:    req.ID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Date:     req.Date,
		TimeSlot: req.TimeSlot,
	})
	if err != nil {
		respondError(c, h.log, err, http.StatusNotFound, "Failed to update form data")
		return
	}
	c.JSON(http.StatusOK, toResponse(b))
}

// Delete handles DELETE /gasBookingForm/:id
func (h *BookingHandler) Delete(c *gin.Context) {
	if _, err := h.uc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err, http.StatusNotFound, "Failed to delete form data")
		return
	}
	c.String(http.StatusOK, "Form data deleted and email queued")
}
