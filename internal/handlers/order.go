package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/lumera/internal/middleware"
	"github.com/example/lumera/internal/models"
	"github.com/example/lumera/internal/services"
	"github.com/example/lumera/internal/utils"
)

// OrderHandler manages checkout and order endpoints.
type OrderHandler struct {
	checkout *services.CheckoutService
	orders   *services.OrderService
}

func NewOrderHandler(checkout *services.CheckoutService, orders *services.OrderService) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders}
}

type checkoutRequest struct {
	PaymentMethod      string   `json:"payment_method"`
	SelectedProductIDs []string `json:"selected_product_ids"`
	Total              float64  `json:"total"`
	ShippingAddress    string   `json:"shipping_address"`
	ToWardCode         string   `json:"to_ward_code"`
	ToDistrictID       int      `json:"to_district_id"`
	Province           string   `json:"province"`
	District           string   `json:"district"`
	Ward               string   `json:"ward"`
	Notes              string   `json:"notes"`
	ShippingMethod     string   `json:"shipping_method"`
}

// Checkout turns the authenticated customer's cart into a payment and, for
// settled methods, an order.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	selected := make([]uuid.UUID, 0, len(req.SelectedProductIDs))
	for _, raw := range req.SelectedProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product id "+raw)
		}
		selected = append(selected, id)
	}

	result, err := h.checkout.Checkout(c.Context(), services.CheckoutInput{
		CustomerID:         userID,
		PaymentMethod:      req.PaymentMethod,
		SelectedProductIDs: selected,
		ClientTotal:        req.Total,
		ShippingAddress:    req.ShippingAddress,
		ToWardCode:         req.ToWardCode,
		ToDistrictID:       req.ToDistrictID,
		Province:           req.Province,
		District:           req.District,
		Ward:               req.Ward,
		Notes:              req.Notes,
		ShippingMethod:     req.ShippingMethod,
	})
	if err != nil {
		return mapServiceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": result})
}

// ListOrders returns orders for the authenticated customer.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	orders, total, err := h.orders.ListByCustomer(c.Context(), userID, c.Query("status"), pg.Limit, pg.Offset)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       orders,
		"pagination": pg.Envelope(total),
	})
}

// GetOrder returns a single order for the authenticated customer.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.Get(c.Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	if order.CustomerID != userID {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// ConfirmOrder moves a pending cash order to CONFIRMED. Staff only.
func (h *OrderHandler) ConfirmOrder(c *fiber.Ctx) error {
	staffID, err := requireRole(c, models.RoleStaff, models.RoleAdmin)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.Confirm(c.Context(), id, staffID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder rejects an order that has not shipped. Staff only.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	staffID, err := requireRole(c, models.RoleStaff, models.RoleAdmin)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req cancelOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.Cancel(c.Context(), id, req.Reason, staffID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

// CompleteOrder closes a delivered order. Staff only.
func (h *OrderHandler) CompleteOrder(c *fiber.Ctx) error {
	if _, err := requireRole(c, models.RoleStaff, models.RoleAdmin); err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.Complete(c.Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}
