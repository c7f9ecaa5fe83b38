package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/lumera/internal/middleware"
	"github.com/example/lumera/internal/models"
	"github.com/example/lumera/internal/services"
	"github.com/example/lumera/internal/utils"
)

// WithdrawalHandler exposes payout requests and their admin lifecycle.
type WithdrawalHandler struct {
	withdrawals *services.WithdrawalService
}

func NewWithdrawalHandler(withdrawals *services.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals}
}

type withdrawalRequestBody struct {
	Amount      float64 `json:"amount"`
	BankName    string  `json:"bank_name"`
	BankAccount string  `json:"bank_account"`
}

// Request opens a payout request against the caller's wallet balance.
func (h *WithdrawalHandler) Request(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req withdrawalRequestBody
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	wd, err := h.withdrawals.Request(c.Context(), userID, req.Amount, req.BankName, req.BankAccount)
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": wd})
}

// ListMine pages the caller's payout requests.
func (h *WithdrawalHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	rows, total, err := h.withdrawals.ListByUser(c.Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       rows,
		"pagination": pg.Envelope(total),
	})
}

// Verify approves a pending request. Admin only.
func (h *WithdrawalHandler) Verify(c *fiber.Ctx) error {
	if _, err := requireRole(c, models.RoleAdmin); err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	wd, err := h.withdrawals.Verify(c.Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": wd})
}

type rejectWithdrawalRequest struct {
	Reason string `json:"reason"`
}

// Reject refuses a request and refunds the held amount. Admin only.
func (h *WithdrawalHandler) Reject(c *fiber.Ctx) error {
	if _, err := requireRole(c, models.RoleAdmin); err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req rejectWithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	wd, err := h.withdrawals.Reject(c.Context(), id, req.Reason)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": wd})
}

// MarkPaid records the outbound transfer as done. Admin only.
func (h *WithdrawalHandler) MarkPaid(c *fiber.Ctx) error {
	if _, err := requireRole(c, models.RoleAdmin); err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	wd, err := h.withdrawals.MarkPaid(c.Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": wd})
}
