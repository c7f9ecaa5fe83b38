package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/lumera/internal/services"
)

// mapServiceError converts service sentinels into fiber errors. Anything
// unrecognized bubbles up as a 500 through the fiber error handler.
func mapServiceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrBatchCompleted),
		errors.Is(err, services.ErrSlotTaken):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInsufficientFunds),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrNoSelection),
		errors.Is(err, services.ErrAmountOutOfRange),
		errors.Is(err, services.ErrBatchMixed),
		errors.Is(err, services.ErrBatchNotReady),
		errors.Is(err, services.ErrMissingEvidence):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return err
}
