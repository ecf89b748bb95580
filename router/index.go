package router

import (
	"event_ticketing/handler"
	"event_ticketing/middleware"
	"event_ticketing/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1", logger.New())

	// Sự kiện (chỉ đọc, CRUD quản trị nằm ở hệ thống khác)
	event := v1.Group("/events", logger.New())
	event.Get("/", handler.GetEvents)
	event.Get("/:slug", handler.GetEventBySlug)

	// Đơn hàng
	order := v1.Group("/orders", logger.New())
	order.Post("/", middleware.Protected(), validate.CreateOrder(), handler.CreateOrder)
	order.Get("/my", middleware.Protected(), validate.RequireCustomer(), handler.GetMyOrders)
	order.Get("/by-session/:sessionRef", middleware.OptionalJWT(), handler.GetOrderBySession)
	order.Post("/pay/:orderCode", middleware.Protected(), validate.RequireCustomer(), handler.CreatePayment)
	order.Delete("/:orderCode", middleware.Protected(), validate.RequireCustomer(), handler.DeleteOrder)

	// Vé
	ticket := v1.Group("/ticket", logger.New())
	ticket.Get("/:id/qrcode", middleware.Protected(), validate.RequireCustomer(), validate.GetById("id"), handler.GetTicketQRCode)

	// Soát vé tại cổng
	app.Get("/t/:ticketCode", handler.CheckTicket)
	app.Post("/t/use/:ticketCode", middleware.Protected(), handler.UseTicket)
	app.Post("/t/verify-secret", middleware.Protected(), validate.VerifySecret(), handler.VerifyTicketSecret)

	// Webhook cổng thanh toán (server-to-server, ký trên body thô)
	app.Post("/webhook", handler.PayGateWebhook)

	// Realtime số vé còn lại
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events/:id", websocket.New(handler.WebSocketConnection))
}
