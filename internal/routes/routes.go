package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/lumera/internal/config"
	"github.com/example/lumera/internal/handlers"
	"github.com/example/lumera/internal/middleware"
	"github.com/example/lumera/internal/services"
)

// Deps carries the services the HTTP layer exposes.
type Deps struct {
	Store       services.Store
	Cart        *services.CartService
	Checkout    *services.CheckoutService
	Orders      *services.OrderService
	Payments    *services.PaymentService
	Shipping    *services.ShippingService
	Bookings    *services.BookingService
	Withdrawals *services.WithdrawalService
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, cfg *config.Config, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.Store, cfg)
	cartHandler := handlers.NewCartHandler(deps.Cart)
	orderHandler := handlers.NewOrderHandler(deps.Checkout, deps.Orders)
	paymentHandler := handlers.NewPaymentHandler(deps.Payments)
	shippingHandler := handlers.NewShippingHandler(deps.Store, deps.Shipping)
	bookingHandler := handlers.NewBookingHandler(deps.Bookings)
	withdrawalHandler := handlers.NewWithdrawalHandler(deps.Withdrawals)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Webhooks sit outside the JWT guard; the bank and the carrier use an
	// API key instead.
	webhooks := api.Group("/webhooks")
	webhooks.Post("/bank", middleware.WebhookAuthMiddleware(cfg.WebhookAPIKey), paymentHandler.BankWebhook)
	webhooks.Post("/carrier", middleware.WebhookAuthMiddleware(cfg.WebhookAPIKey), shippingHandler.CarrierWebhook)

	// Everything below requires a logged-in user.
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/auth/me", authHandler.Me)
	protected.Get("/auth/staff", authHandler.ListStaff)

	cart := protected.Group("/cart")
	cart.Get("/", cartHandler.Get)
	cart.Post("/items", cartHandler.AddItem)
	cart.Put("/items/:productId", cartHandler.UpdateItem)
	cart.Delete("/items/:productId", cartHandler.RemoveItem)
	cart.Delete("/", cartHandler.Clear)

	orders := protected.Group("/orders")
	orders.Post("/checkout", orderHandler.Checkout)
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Post("/:id/confirm", orderHandler.ConfirmOrder)
	orders.Post("/:id/cancel", orderHandler.CancelOrder)
	orders.Post("/:id/complete", orderHandler.CompleteOrder)

	payments := protected.Group("/payments")
	payments.Post("/", paymentHandler.Create)
	payments.Get("/", paymentHandler.ListMine)
	payments.Get("/code/:code", paymentHandler.GetByCode)
	payments.Post("/:id/refund", paymentHandler.RefundTopup)

	shipping := protected.Group("/shipping")
	shipping.Get("/track/:orderId", shippingHandler.Track)
	shipping.Put("/:id/status", shippingHandler.UpdateStatus)
	shipping.Put("/:id/assign", shippingHandler.AssignStaff)
	shipping.Post("/batches", shippingHandler.CreateBatch)
	shipping.Post("/batches/:batchCode/pickup", shippingHandler.PickupBatch)
	shipping.Put("/batches/:batchCode/orders", shippingHandler.UpdateBatchOrder)
	shipping.Post("/batches/:batchCode/complete", shippingHandler.CompleteBatch)

	bookings := protected.Group("/bookings")
	bookings.Get("/slots", bookingHandler.ListSlots)
	bookings.Post("/hold", bookingHandler.HoldSlot)

	withdrawals := protected.Group("/withdrawals")
	withdrawals.Post("/", withdrawalHandler.Request)
	withdrawals.Get("/", withdrawalHandler.ListMine)
	withdrawals.Post("/:id/verify", withdrawalHandler.Verify)
	withdrawals.Post("/:id/reject", withdrawalHandler.Reject)
	withdrawals.Post("/:id/paid", withdrawalHandler.MarkPaid)
}
