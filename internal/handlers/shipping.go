package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/lumera/internal/middleware"
	"github.com/example/lumera/internal/models"
	"github.com/example/lumera/internal/services"
)

// ShippingHandler manages deliveries, batches and the carrier webhook.
type ShippingHandler struct {
	store    services.Store
	shipping *services.ShippingService
}

func NewShippingHandler(store services.Store, shipping *services.ShippingService) *ShippingHandler {
	return &ShippingHandler{store: store, shipping: shipping}
}

// Track returns the delivery for one of the caller's orders.
func (h *ShippingHandler) Track(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	order, err := h.store.Orders().FindByID(c.Context(), orderID)
	if err != nil {
		return mapServiceError(err)
	}
	if order.CustomerID != userID {
		if _, err := requireRole(c, models.RoleStaff, models.RoleAdmin); err != nil {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
	}

	shippingLog, err := h.shipping.Track(c.Context(), orderID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": shippingLog})
}

type updateStatusRequest struct {
	Status           string   `json:"status"`
	Note             string   `json:"note"`
	UnexpectedCase   string   `json:"unexpected_case"`
	FinishedPictures []string `json:"finished_pictures"`
}

// UpdateStatus moves a delivery along the state machine. Staff only.
func (h *ShippingHandler) UpdateStatus(c *fiber.Ctx) error {
	if _, err := requireRole(c, models.RoleStaff, models.RoleAdmin); err != nil {
		return err
	}

	logID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Status == "" {
		return fiber.NewError(fiber.StatusBadRequest, "status is required")
	}

	shippingLog, err := h.shipping.UpdateStatus(c.Context(), logID, req.Status, services.UpdateStatusInput{
		Note:             req.Note,
		UnexpectedCase:   req.UnexpectedCase,
		FinishedPictures: req.FinishedPictures,
	})
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": shippingLog})
}

type assignStaffRequest struct {
	StaffID string `json:"staff_id"`
}

// AssignStaff puts a pending delivery into a staff member's hands.
func (h *ShippingHandler) AssignStaff(c *fiber.Ctx) error {
	if _, err := requireRole(c, models.RoleStaff, models.RoleAdmin); err != nil {
		return err
	}

	logID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req assignStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	staffID, err := uuid.Parse(req.StaffID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid staff_id")
	}

	shippingLog, err := h.shipping.AssignStaff(c.Context(), logID, staffID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": shippingLog})
}

type createBatchRequest struct {
	OrderIDs []string `json:"order_ids"`
	StaffID  string   `json:"staff_id"`
}

// CreateBatch groups pending deliveries of one customer for a single run.
func (h *ShippingHandler) CreateBatch(c *fiber.Ctx) error {
	if _, err := requireRole(c, models.RoleStaff, models.RoleAdmin); err != nil {
		return err
	}

	var req createBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	orderIDs := make([]uuid.UUID, 0, len(req.OrderIDs))
	for _, raw := range req.OrderIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid order id "+raw)
		}
		orderIDs = append(orderIDs, id)
	}

	staffID, err := parseOptionalID(req.StaffID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid staff_id")
	}

	batchCode, logs, err := h.shipping.CreateBatch(c.Context(), orderIDs, staffID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"batch_code": batchCode, "orders": logs},
	})
}

// PickupBatch marks every delivery in a batch as picked up and in transit.
func (h *ShippingHandler) PickupBatch(c *fiber.Ctx) error {
	if _, err := requireRole(c, models.RoleStaff, models.RoleAdmin); err != nil {
		return err
	}

	logs, err := h.shipping.PickupBatch(c.Context(), c.Params("batchCode"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": logs})
}

type updateBatchOrderRequest struct {
	OrderID string `json:"order_id"`
	updateStatusRequest
}

// UpdateBatchOrder advances a single delivery inside a batch.
func (h *ShippingHandler) UpdateBatchOrder(c *fiber.Ctx) error {
	if _, err := requireRole(c, models.RoleStaff, models.RoleAdmin); err != nil {
		return err
	}

	var req updateBatchOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order_id")
	}
	if req.Status == "" {
		return fiber.NewError(fiber.StatusBadRequest, "status is required")
	}

	shippingLog, err := h.shipping.UpdateBatchOrder(c.Context(), c.Params("batchCode"), orderID, req.Status, services.UpdateStatusInput{
		Note:             req.Note,
		UnexpectedCase:   req.UnexpectedCase,
		FinishedPictures: req.FinishedPictures,
	})
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": shippingLog})
}

type completeBatchRequest struct {
	Photos       []string `json:"photos"`
	Note         string   `json:"note"`
	CodCollected bool     `json:"cod_collected"`
}

// CompleteBatch closes out a batch run with completion evidence.
func (h *ShippingHandler) CompleteBatch(c *fiber.Ctx) error {
	if _, err := requireRole(c, models.RoleStaff, models.RoleAdmin); err != nil {
		return err
	}

	var req completeBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	logs, err := h.shipping.CompleteBatch(c.Context(), c.Params("batchCode"), req.Photos, req.Note, req.CodCollected)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": logs})
}

type carrierWebhookRequest struct {
	OrderCode string `json:"OrderCode"`
	Status    string `json:"Status"`
}

// CarrierWebhook receives GHN status pushes. Always answers HTTP 200 so the
// carrier does not hammer deliveries we refuse to move backwards.
func (h *ShippingHandler) CarrierWebhook(c *fiber.Ctx) error {
	var req carrierWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "invalid payload"})
	}
	if req.OrderCode == "" {
		return c.JSON(fiber.Map{"success": false, "message": "missing order code"})
	}

	body := make([]byte, len(c.Body()))
	copy(body, c.Body())

	shippingLog, err := h.shipping.HandleCarrierWebhook(c.Context(), req.OrderCode, req.Status, body)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"status": shippingLog.Status}})
}
