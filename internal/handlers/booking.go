package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/lumera/internal/middleware"
	"github.com/example/lumera/internal/services"
)

// BookingHandler exposes consultation slots and appointment holds.
type BookingHandler struct {
	bookings *services.BookingService
}

func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// ListSlots returns upcoming slots that are still open.
func (h *BookingHandler) ListSlots(c *fiber.Ctx) error {
	slots, err := h.bookings.OpenSlots(c.Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": slots})
}

type holdSlotRequest struct {
	SlotID string `json:"slot_id"`
}

// HoldSlot takes a slot for the authenticated customer. The appointment stays
// payment-pending until a booking payment settles against it.
func (h *BookingHandler) HoldSlot(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req holdSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	slotID, err := uuid.Parse(req.SlotID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid slot_id")
	}

	appt, err := h.bookings.Hold(c.Context(), userID, slotID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": appt})
}
