package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	config "github.com/anjiri1684/assignment_bidding/configs"
	"github.com/anjiri1684/assignment_bidding/database"
	"github.com/anjiri1684/assignment_bidding/handlers"
	"github.com/anjiri1684/assignment_bidding/jobs"
	"github.com/anjiri1684/assignment_bidding/notifications"
	"github.com/anjiri1684/assignment_bidding/realtime"
	"github.com/anjiri1684/assignment_bidding/routes"
	"github.com/anjiri1684/assignment_bidding/services"
	"github.com/anjiri1684/assignment_bidding/storage"
	"github.com/anjiri1684/assignment_bidding/store"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

func main() {
	config.SetupLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := database.ConnectDB()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	database.SeedAdmin(db)

	hub := realtime.NewHub()
	if addr := config.Config("REDIS_ADDR"); addr != "" {
		relay, err := realtime.NewRedisRelay(ctx, addr, config.Config("REDIS_PASSWORD"), config.Int("REDIS_DB"), config.Config("REDIS_CHANNEL"))
		if err != nil {
			log.Fatalf("🔥 Failed to connect realtime relay: %v", err)
		}
		defer relay.Close()
		hub.WithRelay(relay)
		go func() {
			if err := relay.Listen(ctx, hub.Deliver); err != nil && ctx.Err() == nil {
				log.WithError(err).Error("🔥 realtime relay stopped")
			}
		}()
		log.WithField("addr", addr).Info("✅ Realtime relay connected")
	}
	go hub.Run(ctx)

	mailer := notifications.Background{Sender: notifications.InitEmailService()}
	core := services.NewCore(store.New(db), hub,
		services.WithMailer(mailer),
		services.WithTargetedDelivery(config.Bool("REALTIME_TARGETED")),
	)

	var files handlers.Files
	if url := config.Config("CLOUDINARY_URL"); url != "" {
		cld, err := storage.NewCloudinary(url, config.Config("UPLOAD_FOLDER"))
		if err != nil {
			log.Fatalf("🔥 %v", err)
		}
		files = cld
	} else {
		log.Println("Warning: CLOUDINARY_URL not set, uploads disabled")
	}

	secret := config.Config("JWT_SECRET")
	if secret == "" {
		log.Fatal("🔥 JWT_SECRET must be set")
	}
	h := handlers.New(core, hub, files, secret, config.Duration("JWT_TTL"))

	c := cron.New()
	if _, err := jobs.Schedule(c, config.Config("UNPAID_REMINDER_SCHEDULE"), core, config.Duration("UNPAID_REMINDER_AFTER")); err != nil {
		log.Fatalf("🔥 %v", err)
	}
	c.Start()
	defer c.Stop()
	log.Println("✅ Cron job for unpaid reminders scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "Assignment Bidding",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler:  handlers.ErrorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(config.Strings("CORS_ORIGINS"), ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.Setup(app, h)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("🔥 Server shutdown failed")
		}
	}()

	port := config.Config("PORT")
	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
