package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/lumera/internal/middleware"
	"github.com/example/lumera/internal/models"
	"github.com/example/lumera/internal/services"
	"github.com/example/lumera/internal/utils"
)

// PaymentHandler exposes the payment ledger and the bank webhook.
type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type createPaymentRequest struct {
	Purpose       string  `json:"purpose"`
	Method        string  `json:"method"`
	Amount        float64 `json:"amount"`
	PlanID        string  `json:"plan_id"`
	AppointmentID string  `json:"appointment_id"`
	WithdrawalID  string  `json:"withdrawal_id"`
}

// Create opens a pending payment for a topup, booking or subscription and
// returns the bank transfer instructions.
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Purpose == models.PurposeOrder {
		return fiber.NewError(fiber.StatusBadRequest, "order payments are created through checkout")
	}

	in := services.CreatePaymentInput{
		CustomerID: userID,
		Purpose:    req.Purpose,
		Method:     models.PaymentMethodBanking,
		Amount:     req.Amount,
	}
	if req.Method != "" {
		in.Method = req.Method
	}

	var err error
	if in.PlanID, err = parseOptionalID(req.PlanID); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid plan_id")
	}
	if in.AppointmentID, err = parseOptionalID(req.AppointmentID); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid appointment_id")
	}
	if in.WithdrawalID, err = parseOptionalID(req.WithdrawalID); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid withdrawal_id")
	}

	payment, err := h.payments.CreateRecord(c.Context(), in)
	if err != nil {
		return mapServiceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"payment":      payment,
			"instructions": h.payments.Instructions(payment),
		},
	})
}

func parseOptionalID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// GetByCode looks a payment up by its transfer code. The caller must own it
// unless they are staff.
func (h *PaymentHandler) GetByCode(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	payment, err := h.payments.FindByCode(c.Context(), c.Params("code"))
	if err != nil {
		return mapServiceError(err)
	}
	if payment.CustomerID != userID {
		if _, err := requireRole(c, models.RoleStaff, models.RoleAdmin); err != nil {
			return fiber.NewError(fiber.StatusNotFound, "payment not found")
		}
	}

	resp := fiber.Map{"payment": payment}
	if payment.Method == models.PaymentMethodBanking && payment.Status == models.PaymentStatusPending {
		resp["instructions"] = h.payments.Instructions(payment)
	}
	return c.JSON(fiber.Map{"success": true, "data": resp})
}

// ListMine pages through the authenticated customer's payments.
func (h *PaymentHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	payments, total, err := h.payments.ListByCustomer(c.Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       payments,
		"pagination": pg.Envelope(total),
	})
}

// RefundTopup reverses a completed topup back out of the customer's wallet.
// Admin only.
func (h *PaymentHandler) RefundTopup(c *fiber.Ctx) error {
	if _, err := requireRole(c, models.RoleAdmin); err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.payments.RefundTopup(c.Context(), id); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "topup refunded"})
}

// BankWebhook receives transfer notifications from the bank gateway. It
// always answers HTTP 200 so the gateway does not retry transfers that need
// an operator instead of a replay.
func (h *PaymentHandler) BankWebhook(c *fiber.Ctx) error {
	var in services.BankWebhookInput
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return c.JSON(services.WebhookResult{Success: false, Message: "invalid payload"})
	}

	result, err := h.payments.HandleBankWebhook(c.Context(), in)
	if err != nil {
		if result == nil {
			result = &services.WebhookResult{Success: false, Message: err.Error()}
		}
		return c.JSON(result)
	}
	return c.JSON(result)
}
