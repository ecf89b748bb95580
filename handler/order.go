package handler

import (
	"errors"
	"fmt"
	"log"
	"time"

	"event_ticketing/constants"
	"event_ticketing/database"
	"event_ticketing/helper"
	"event_ticketing/model"
	"event_ticketing/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	OrderPending   = "PENDING"
	OrderConfirmed = "CONFIRMED"
	OrderCancelled = "CANCELLED"
	OrderRefunded  = "REFUNDED"
)

// Đơn PENDING giữ chỗ trong 15 phút (trùng cửa sổ hết hạn của cổng thanh toán)
const PendingOrderTTL = 15 * time.Minute

// CountReservedTickets tổng số vé đang giữ chỗ hoặc đã bán của một sự kiện.
// Đơn PENDING tính vào sức chứa: xác nhận thanh toán không kiểm tra lại
// capacity, nên phải chặn ngay từ lúc tạo đơn.
func CountReservedTickets(tx *gorm.DB, eventId uint) (int, error) {
	var reserved int
	err := tx.Model(&model.Order{}).
		Where("event_id = ? AND status IN ?", eventId, []string{OrderPending, OrderConfirmed}).
		Select("COALESCE(SUM(ticket_count), 0)").
		Scan(&reserved).Error
	return reserved, err
}

// CreateOrderForCustomer tạo đơn PENDING, giữ chỗ số vé yêu cầu.
// Check-and-reserve chạy trong một transaction, khóa dòng sự kiện
// (SELECT ... FOR UPDATE) để hai request sát nút capacity không cùng lọt.
func CreateOrderForCustomer(db *gorm.DB, customerId uint, input model.CreateOrderInput) (*model.Order, error) {
	var order model.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		var event model.Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event, "id = ?", input.EventId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if event.Status != "PUBLISHED" || !event.IsVerified {
			return ErrInvalidState
		}
		if time.Now().After(event.DateTime) {
			return ErrInvalidState
		}

		reserved, err := CountReservedTickets(tx, event.ID)
		if err != nil {
			return err
		}
		if reserved+input.TicketCount > event.TotalTickets {
			return ErrCapacityExceeded
		}

		now := time.Now()
		order = model.Order{
			PublicCode:  "ORD-" + uuid.New().String()[:8],
			CustomerID:  customerId,
			EventID:     event.ID,
			TicketCount: input.TicketCount,
			TotalAmount: event.Price * float64(input.TicketCount), // chốt giá tại thời điểm tạo
			Status:      OrderPending,
			ExpiresAt:   now.Add(PendingOrderTTL),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// DeleteOrderForCustomer xóa đơn của chính chủ, chỉ khi còn PENDING.
// Đơn CONFIRMED đã phát hành vé, xóa sẽ làm vé mồ côi.
func DeleteOrderForCustomer(db *gorm.DB, customerId uint, orderCode string) (*model.Order, error) {
	var order model.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "public_code = ?", orderCode).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if order.CustomerID != customerId {
			return ErrForbidden
		}
		if order.Status != OrderPending {
			return ErrInvalidState
		}

		return tx.Delete(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func CreateOrder(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateOrderInput)
	customer := c.Locals("customer").(*model.Customer)

	order, err := CreateOrderForCustomer(database.DB, customer.ID, input)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return utils.ErrorResponseHaveKey(c, 404, "Sự kiện không tồn tại", err, constants.KEY_NOT_FOUND)
		case errors.Is(err, ErrInvalidState):
			return utils.ErrorResponseHaveKey(c, 400, "Sự kiện chưa mở bán hoặc đã diễn ra", err, constants.KEY_INVALID_STATE)
		case errors.Is(err, ErrCapacityExceeded):
			return utils.ErrorResponseHaveKey(c, 409, "Sự kiện không còn đủ vé", err, constants.KEY_CAPACITY_EXCEEDED)
		}
		return utils.ErrorResponse(c, 500, "Không thể tạo đơn hàng", err)
	}

	BroadcastEventAvailability(order.EventID)

	return utils.SuccessResponse(c, 201, fiber.Map{
		"order":    order,
		"nextStep": fmt.Sprintf("POST /api/v1/orders/pay/%s để lấy link thanh toán", order.PublicCode),
	})
}

func GetMyOrders(c *fiber.Ctx) error {
	customer, ok := c.Locals("customer").(*model.Customer)
	if !ok || customer == nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Vui lòng đăng nhập", nil)
	}

	var orders []model.Order
	if err := database.DB.
		Preload("Tickets").
		Preload("Event").
		Where("customer_id = ?", customer.ID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Lỗi tải đơn hàng", err)
	}

	response := []map[string]interface{}{}
	for _, order := range orders {
		response = append(response, map[string]interface{}{
			"orderCode":   order.PublicCode,
			"eventTitle":  order.Event.Title,
			"eventTime":   order.Event.DateTime.Format("02/01/2006 15:04"),
			"ticketCount": order.TicketCount,
			"totalAmount": order.TotalAmount,
			"status":      order.Status,
			"tickets":     order.Tickets,
			"createdAt":   order.CreatedAt.Format("02/01/2006 15:04"),
		})
	}

	return utils.SuccessResponse(c, fiber.StatusOK, response)
}

// GetOrderBySession tra cứu đơn theo mã phiên thanh toán (trang return của cổng).
// Ai biết sessionRef cũng xem được trạng thái, nhưng lô vé (kèm secret code)
// chỉ trả về cho chính chủ đăng nhập. Vé chỉ có sau khi webhook xác nhận.
func GetOrderBySession(c *fiber.Ctx) error {
	sessionRef := c.Params("sessionRef")

	var order model.Order
	if err := database.DB.
		Preload("Tickets").
		Preload("Event").
		Where("payment_session = ?", sessionRef).
		First(&order).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, 404, "Không tìm thấy đơn hàng", err, constants.KEY_NOT_FOUND)
	}

	response := fiber.Map{
		"orderCode":   order.PublicCode,
		"status":      order.Status,
		"eventTitle":  order.Event.Title,
		"eventTime":   order.Event.DateTime.Format("02/01/2006 15:04"),
		"location":    order.Event.Location,
		"ticketCount": order.TicketCount,
		"totalAmount": order.TotalAmount,
	}

	_, customer := helper.GetInfoCustomerFromToken(c)
	if customer.ID != 0 && customer.ID == order.CustomerID {
		response["tickets"] = order.Tickets
	}

	return utils.SuccessResponse(c, fiber.StatusOK, response)
}

func DeleteOrder(c *fiber.Ctx) error {
	orderCode := c.Params("orderCode")
	customer, ok := c.Locals("customer").(*model.Customer)
	if !ok || customer == nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Vui lòng đăng nhập", nil)
	}

	order, err := DeleteOrderForCustomer(database.DB, customer.ID, orderCode)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return utils.ErrorResponseHaveKey(c, 404, "Đơn hàng không tồn tại", err, constants.KEY_NOT_FOUND)
		case errors.Is(err, ErrForbidden):
			return utils.ErrorResponseHaveKey(c, 403, "Đơn hàng không thuộc về bạn", err, constants.KEY_FORBIDDEN)
		case errors.Is(err, ErrInvalidState):
			return utils.ErrorResponseHaveKey(c, 400, "Chỉ xóa được đơn chưa thanh toán", err, constants.KEY_INVALID_STATE)
		}
		return utils.ErrorResponse(c, 500, "Xóa đơn hàng thất bại", err)
	}

	BroadcastEventAvailability(order.EventID)

	return utils.SuccessResponse(c, 200, fiber.Map{
		"message":   "Đã xóa đơn hàng, số vé giữ chỗ được giải phóng",
		"orderCode": order.PublicCode,
	})
}

// ExpirePendingOrders hủy đơn PENDING quá hạn giữ chỗ, trả vé về sự kiện.
// Update có điều kiện từng đơn, tránh đè lên đơn vừa được webhook xác nhận.
func ExpirePendingOrders() {
	db := database.DB
	now := time.Now()

	var expiredOrders []model.Order
	if err := db.
		Where("status = ? AND expires_at < ?", OrderPending, now).
		Find(&expiredOrders).Error; err != nil {
		return
	}

	if len(expiredOrders) == 0 {
		return
	}

	affectedEvents := make(map[uint]bool)
	for _, order := range expiredOrders {
		result := db.Model(&model.Order{}).
			Where("id = ? AND status = ?", order.ID, OrderPending).
			Update("status", OrderCancelled)
		if result.Error != nil {
			log.Printf("Lỗi hủy đơn quá hạn %s: %v", order.PublicCode, result.Error)
			continue
		}
		if result.RowsAffected > 0 {
			affectedEvents[order.EventID] = true
		}
	}

	for eventId := range affectedEvents {
		BroadcastEventAvailability(eventId)
	}

	log.Printf("Đã hủy %d đơn giữ chỗ quá hạn", len(expiredOrders))
}

func StartOrderExpiryWorker() {
	ticker := time.NewTicker(30 * time.Second)
	go func() {
		for range ticker.C {
			ExpirePendingOrders()
		}
	}()
}
