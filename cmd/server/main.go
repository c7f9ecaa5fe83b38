package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/example/lumera/internal/config"
	"github.com/example/lumera/internal/database"
	"github.com/example/lumera/internal/routes"
	"github.com/example/lumera/internal/scheduler"
	"github.com/example/lumera/internal/services"
	"github.com/example/lumera/internal/storage"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("redis ping failed: %v", err)
	}

	store := storage.New(db)
	cartStore := storage.NewCartStore(rdb)

	notifier := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	carrier := services.NewGHNService(cfg.GHNBaseURL, cfg.GHNToken, cfg.GHNShopID)

	orderSvc := services.NewOrderService(store, notifier)
	shippingSvc := services.NewShippingService(store, carrier, notifier)
	bookingSvc := services.NewBookingService(store)
	subscriptionSvc := services.NewSubscriptionService(store)
	paymentSvc := services.NewPaymentService(store, cartStore, orderSvc, subscriptionSvc, bookingSvc, notifier, services.BankDetails{
		BankName:    cfg.BankName,
		Account:     cfg.BankAccount,
		AccountName: cfg.BankAccountName,
	})
	checkoutSvc := services.NewCheckoutService(store, cartStore, paymentSvc, shippingSvc)
	cartSvc := services.NewCartService(store, cartStore)
	withdrawalSvc := services.NewWithdrawalService(store, paymentSvc)

	app := fiber.New(fiber.Config{
		AppName: "Lumera Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, cfg, routes.Deps{
		Store:       store,
		Cart:        cartSvc,
		Checkout:    checkoutSvc,
		Orders:      orderSvc,
		Payments:    paymentSvc,
		Shipping:    shippingSvc,
		Bookings:    bookingSvc,
		Withdrawals: withdrawalSvc,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New()
	sched.Register("payment-expiry", cfg.PaymentExpiryEvery, func(ctx context.Context) error {
		_, err := paymentSvc.ExpirePending(ctx)
		return err
	})
	sched.Register("carrier-sync", cfg.CarrierSyncEvery, func(ctx context.Context) error {
		_, err := shippingSvc.SyncCarrierStatuses(ctx)
		return err
	})
	sched.Register("auto-assign", cfg.AutoAssignEvery, func(ctx context.Context) error {
		_, err := shippingSvc.AutoAssignStale(ctx)
		return err
	})
	sched.Start(ctx)

	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("fiber.Shutdown error: %v", err)
		}
	}()

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}

	sched.Wait()
}
