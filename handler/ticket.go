package handler

import (
	"errors"
	"fmt"
	"log"
	"time"

	"event_ticketing/config"
	"event_ticketing/constants"
	"event_ticketing/database"
	"event_ticketing/helper"
	"event_ticketing/model"
	"event_ticketing/utils"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	TicketValid   = "VALID"
	TicketUsed    = "USED"
	TicketExpired = "EXPIRED" // chưa dùng nhưng sự kiện đã diễn ra
	TicketInvalid = "INVALID" // mã không thuộc đơn đã xác nhận
)

// GenerateTicketsForOrder phát hành đúng ticket_count vé trong transaction
// của caller: mã vé random mạnh (không đoán được), payload QR nhúng mã,
// kèm mã số 5 chữ số để đối chiếu thủ công khi không quét được.
// Unique index trên ticket_code chặn trùng mã trên toàn hệ thống.
func GenerateTicketsForOrder(tx *gorm.DB, order *model.Order, event *model.Event) ([]model.Ticket, error) {
	appURL := config.ConfigOrDefault("APP_URL", "http://localhost:8002")

	tickets := make([]model.Ticket, 0, order.TicketCount)
	for i := 0; i < order.TicketCount; i++ {
		code, err := utils.Tokens.Code(10)
		if err != nil {
			return nil, fmt.Errorf("sinh mã vé: %w", err)
		}
		secret, err := utils.Tokens.NumericCode(5)
		if err != nil {
			return nil, fmt.Errorf("sinh mã đối chiếu: %w", err)
		}

		ticketCode := "TKT-" + code
		tickets = append(tickets, model.Ticket{
			OrderId:    order.ID,
			TicketCode: ticketCode,
			QrPayload:  fmt.Sprintf("%s/t/%s", appURL, ticketCode),
			SecretCode: secret,
			IsUsed:     false,
		})
	}

	if err := tx.Create(&tickets).Error; err != nil {
		return nil, err
	}
	if len(tickets) != order.TicketCount {
		// Lô vé thiếu là vi phạm toàn vẹn, không được nuốt lặng
		return nil, fmt.Errorf("lô vé không đủ: có %d, cần %d", len(tickets), order.TicketCount)
	}
	return tickets, nil
}

// ClassifyTicket phân loại vé, không ghi gì xuống DB
func ClassifyTicket(ticket *model.Ticket, order *model.Order, event *model.Event, now time.Time) string {
	if order.Status != OrderConfirmed {
		return TicketInvalid
	}
	if ticket.IsUsed {
		return TicketUsed
	}
	if now.After(event.DateTime) {
		return TicketExpired
	}
	return TicketValid
}

func findTicketByCode(db *gorm.DB, code string) (*model.Ticket, *model.Order, *model.Event, error) {
	var ticket model.Ticket
	if err := db.Preload("Order").Preload("Order.Event").
		First(&ticket, "ticket_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrNotFound
		}
		return nil, nil, nil, err
	}
	return &ticket, &ticket.Order, &ticket.Order.Event, nil
}

// CheckTicket soát vé chỉ đọc: VALID / USED / EXPIRED / INVALID
func CheckTicket(c *fiber.Ctx) error {
	ticketCode := c.Params("ticketCode")

	ticket, order, event, err := findTicketByCode(database.DB, ticketCode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return utils.ErrorResponseHaveKey(c, 404, "Vé không tồn tại", err, constants.KEY_NOT_FOUND)
		}
		return utils.ErrorResponse(c, 500, "Lỗi tra cứu vé", err)
	}

	state := ClassifyTicket(ticket, order, event, time.Now())

	response := fiber.Map{
		"ticketCode": ticket.TicketCode,
		"state":      state,
		"eventTitle": event.Title,
		"eventTime":  event.DateTime.Format("02/01/2006 15:04"),
		"orderCode":  order.PublicCode,
	}
	if ticket.UsedAt != nil {
		response["usedAt"] = ticket.UsedAt.Format("02/01/2006 15:04:05")
	}

	return utils.SuccessResponse(c, 200, response)
}

// RedeemTicket chuyển vé VALID → USED đúng một lần. Update có điều kiện
// ("set used where not yet used") là trọng tài duy nhất giữa hai máy quét
// cùng lúc: RowsAffected = 0 nghĩa là thua cuộc đua → báo vé đã dùng.
func RedeemTicket(db *gorm.DB, code string, now time.Time) (*model.Ticket, error) {
	ticket, order, event, err := findTicketByCode(db, code)
	if err != nil {
		return nil, err
	}

	switch ClassifyTicket(ticket, order, event, now) {
	case TicketUsed:
		return nil, ErrAlreadyUsed
	case TicketExpired:
		return nil, ErrTicketExpired
	case TicketInvalid:
		return nil, ErrInvalidState
	}

	result := db.Model(&model.Ticket{}).
		Where("ticket_code = ? AND is_used = ?", code, false).
		Updates(map[string]any{
			"is_used": true,
			"used_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Máy quét khác vừa soát trước
		return nil, ErrAlreadyUsed
	}

	ticket.IsUsed = true
	ticket.UsedAt = &now
	return ticket, nil
}

// UseTicket check-in tại cổng (nhân viên soát vé)
func UseTicket(c *fiber.Ctx) error {
	ticketCode := c.Params("ticketCode")

	_, isAdmin, isGate := helper.GetInfoAccountFromToken(c)
	if !isAdmin && !isGate {
		return utils.ErrorResponseHaveKey(c, 403, constants.NOT_ADMIN, errors.New("not permission"), constants.KEY_FORBIDDEN)
	}

	now := time.Now()
	ticket, err := RedeemTicket(database.DB, ticketCode, now)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return utils.ErrorResponseHaveKey(c, 404, "Vé không tồn tại", err, constants.KEY_NOT_FOUND)
		case errors.Is(err, ErrAlreadyUsed):
			return utils.ErrorResponseHaveKey(c, 400, "Vé đã được sử dụng", err, constants.KEY_INVALID_STATE)
		case errors.Is(err, ErrTicketExpired):
			return utils.ErrorResponseHaveKey(c, 400, "Sự kiện đã diễn ra, vé hết hạn", err, constants.KEY_INVALID_STATE)
		case errors.Is(err, ErrInvalidState):
			return utils.ErrorResponseHaveKey(c, 400, "Vé không thuộc đơn hàng hợp lệ", err, constants.KEY_INVALID_STATE)
		}
		return utils.ErrorResponse(c, 500, "Lỗi soát vé", err)
	}

	return utils.SuccessResponse(c, 200, fiber.Map{
		"message":    "Check-in thành công",
		"ticketCode": ticket.TicketCode,
		"usedAt":     now.Format("02/01/2006 15:04:05"),
	})
}

// VerifyTicketSecret đối chiếu thủ công tại quầy khi không quét được QR:
// tra vé theo sự kiện + mã 5 số, trả về mã vé và trạng thái để soát tiếp
func VerifyTicketSecret(c *fiber.Ctx) error {
	input := c.Locals("input").(model.VerifySecretInput)

	_, isAdmin, isGate := helper.GetInfoAccountFromToken(c)
	if !isAdmin && !isGate {
		return utils.ErrorResponseHaveKey(c, 403, constants.NOT_ADMIN, errors.New("not permission"), constants.KEY_FORBIDDEN)
	}

	var ticket model.Ticket
	if err := database.DB.Preload("Order").Preload("Order.Event").
		Joins("JOIN orders ON orders.id = tickets.order_id").
		Where("tickets.secret_code = ? AND orders.event_id = ? AND orders.status = ?",
			input.SecretCode, input.EventId, OrderConfirmed).
		First(&ticket).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, 404, "Không tìm thấy vé với mã đối chiếu này", err, constants.KEY_NOT_FOUND)
	}

	state := ClassifyTicket(&ticket, &ticket.Order, &ticket.Order.Event, time.Now())

	return utils.SuccessResponse(c, 200, fiber.Map{
		"ticketCode": ticket.TicketCode,
		"state":      state,
		"orderCode":  ticket.Order.PublicCode,
	})
}

// GetTicketQRCode trả PNG QR của một vé thuộc đơn của chính chủ
func GetTicketQRCode(c *fiber.Ctx) error {
	ticketId, _ := c.ParamsInt("id")
	customer, ok := c.Locals("customer").(*model.Customer)
	if !ok || customer == nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Vui lòng đăng nhập", nil)
	}

	var ticket model.Ticket
	if err := database.DB.Preload("Order").
		Where("id = ?", ticketId).First(&ticket).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, 404, "Vé không tồn tại", err, constants.KEY_NOT_FOUND)
	}
	if ticket.Order.CustomerID != customer.ID {
		return utils.ErrorResponseHaveKey(c, 403, "Vé không thuộc về bạn", nil, constants.KEY_FORBIDDEN)
	}

	qrBytes, err := utils.GenerateQRCode(ticket.QrPayload, 400)
	if err != nil {
		return utils.ErrorResponse(c, 500, "Lỗi tạo QR", err)
	}

	c.Set("Content-Type", "image/png")
	return c.Send(qrBytes)
}

// AuditTicketBatches quét đơn CONFIRMED có số vé lệch ticket_count.
// Tiền đã thu mà vé thiếu là sự cố phải báo động, không được im lặng.
func AuditTicketBatches() {
	db := database.DB

	type mismatch struct {
		PublicCode  string
		TicketCount int
		Actual      int
	}

	var rows []mismatch
	err := db.Model(&model.Order{}).
		Select("orders.public_code, orders.ticket_count, COUNT(tickets.id) AS actual").
		Joins("LEFT JOIN tickets ON tickets.order_id = orders.id").
		Where("orders.status = ?", OrderConfirmed).
		Group("orders.id").
		Having("COUNT(tickets.id) <> orders.ticket_count").
		Scan(&rows).Error
	if err != nil {
		log.Printf("Lỗi audit lô vé: %v", err)
		return
	}

	for _, row := range rows {
		log.Printf("[%s] Đơn %s đã CONFIRMED nhưng có %d/%d vé",
			constants.KEY_INTEGRITY_FAULT, row.PublicCode, row.Actual, row.TicketCount)
	}
}

var ticketAuditScheduler gocron.Scheduler

func StartTicketAuditScheduler() {
	s, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal(err)
	}

	ticketAuditScheduler = s

	_, err = s.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(AuditTicketBatches),
	)
	if err != nil {
		log.Fatal(err)
	}

	s.Start()
	log.Println("✅ Ticket batch audit scheduler started (10m)")
}
