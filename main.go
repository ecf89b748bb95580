package main

import (
	"event_ticketing/database"
	"event_ticketing/handler"
	"event_ticketing/helper"
	"event_ticketing/router"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:5173/",
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, X-Paygate-Signature",
		AllowCredentials: true,
		ExposeHeaders:    "Set-Cookie",
		MaxAge:           600,
	}))

	database.ConnectDB()

	helper.StartEventStatusScheduler()
	defer helper.StopEventStatusScheduler()
	handler.StartOrderExpiryWorker()
	handler.StartTicketAuditScheduler()
	handler.StartEmailWorker()

	router.SetupRoutes(app)
	log.Fatal(app.Listen(":8002"))
}
