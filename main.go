package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"dancestudio_backend/internals/configs"
	database "dancestudio_backend/internals/databases"
	helper "dancestudio_backend/internals/helpers"
	middlewares "dancestudio_backend/internals/middlewares"
	routes "dancestudio_backend/internals/route"
	emailsvc "dancestudio_backend/internals/services/email"
	logsvc "dancestudio_backend/internals/services/logger"
	"dancestudio_backend/internals/services/notifications"
)

func main() {
	configs.LoadEnv()
	logsvc.Init(configs.GetEnv("ROLLBAR_TOKEN"), configs.GetEnv("APP_ENV"), configs.GetEnv("BUILD"))
	defer logsvc.Close()

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ErrorHandler:            helper.ErrorHandler,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	middlewares.SetupMiddlewares(app)

	// DB connect + pool + schema probe
	db := database.ConnectDB()
	database.TunePool(db)
	compat := database.ProbeSchema(db)

	mailer := emailsvc.New(
		configs.GetEnv("SENDGRID_API_KEY"),
		configs.GetEnv("APP_NAME", "Dansstudio"),
		configs.GetEnv("MAIL_FROM"),
	)
	dispatcher := notifications.NewDispatcher(db, mailer, configs.NotifyTimeout())

	routes.SetupRoutes(app, db, routes.Deps{
		Compat:    compat,
		Notifier:  dispatcher,
		JWTSecret: configs.GetEnv("JWT_SECRET"),
	})

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")

	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: drain requests, then pending notifications, then the pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	dispatcher.Wait()
	database.Close(db)
	log.Println("👋 Server stopped")
}
