package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"event_ticketing/constants"
	"event_ticketing/database"
	"event_ticketing/model"
	"event_ticketing/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreatePayment tạo phiên thanh toán hosted cho đơn PENDING của chính chủ
func CreatePayment(c *fiber.Ctx) error {
	orderCode := c.Params("orderCode")
	customer, ok := c.Locals("customer").(*model.Customer)
	if !ok || customer == nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Vui lòng đăng nhập", nil)
	}

	db := database.DB

	var order model.Order
	if err := db.Preload("Event").
		Where("public_code = ? AND customer_id = ?", orderCode, customer.ID).
		First(&order).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, 404, "Đơn hàng không tồn tại", err, constants.KEY_NOT_FOUND)
	}

	if order.Status != OrderPending {
		return utils.ErrorResponseHaveKey(c, 400, "Đơn hàng không ở trạng thái chờ thanh toán", nil, constants.KEY_INVALID_STATE)
	}
	if time.Now().After(order.ExpiresAt) {
		return utils.ErrorResponseHaveKey(c, 400, "Đơn hàng đã hết hạn giữ chỗ", nil, constants.KEY_INVALID_STATE)
	}

	sessionRef := "PAY-" + uuid.New().String()[:12]

	paygate := PayGateFromEnv()
	req := model.CheckoutRequest{
		Amount:     int64(order.TotalAmount),
		OrderInfo:  fmt.Sprintf("Thanh toán đơn hàng %s - Vé sự kiện", order.PublicCode),
		SessionRef: sessionRef,
		IPAddr:     c.IP(),
	}

	paymentUrl, err := paygate.BuildCheckoutUrl(req)
	if err != nil {
		return utils.ErrorResponse(c, 502, "Lỗi tạo payment URL", err)
	}

	if err := db.Model(&order).Update("payment_session", sessionRef).Error; err != nil {
		return utils.ErrorResponse(c, 500, "Lỗi lưu phiên thanh toán", err)
	}

	return c.JSON(fiber.Map{
		"message":    "Tạo thanh toán thành công",
		"paymentUrl": paymentUrl,
		"sessionRef": sessionRef,
		"nextStep":   "Hoàn tất thanh toán",
	})
}

// ConfirmOrder xác nhận đơn đúng một lần, bất kể webhook gửi lại bao nhiêu lần.
// Trạng thái của chính đơn hàng là chốt idempotency: khóa dòng, đã CONFIRMED
// thì thoát êm, còn PENDING thì đổi trạng thái và phát hành trọn lô vé trong
// cùng transaction. Trả về issued = true nếu lần gọi này thực sự phát hành vé.
func ConfirmOrder(db *gorm.DB, orderCode string, paymentRef string) (*model.Order, bool, error) {
	var order model.Order
	issued := false

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "public_code = ?", orderCode).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if order.Status == OrderConfirmed {
			// Webhook gửi lại → no-op, không phát hành thêm vé
			return nil
		}
		if order.Status != OrderPending {
			log.Printf("[CẢNH BÁO] Thanh toán cho đơn %s ở trạng thái %s, bỏ qua", order.PublicCode, order.Status)
			return ErrInvalidState
		}

		var event model.Event
		if err := tx.First(&event, "id = ?", order.EventID).Error; err != nil {
			return err
		}

		now := time.Now()
		order.Status = OrderConfirmed
		order.PaymentRef = utils.StringPtr(paymentRef)
		order.PaidAt = &now
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		// Phát hành vé cùng transaction với việc đổi trạng thái:
		// hoặc đủ cả lô, hoặc rollback toàn bộ
		tickets, err := GenerateTicketsForOrder(tx, &order, &event)
		if err != nil {
			return err
		}
		order.Tickets = tickets
		issued = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if issued {
		// Side effect hoãn lại, không chặn response webhook
		EnqueueOrderEmail(order.ID)
		BroadcastEventAvailability(order.EventID)
	}

	return &order, issued, nil
}

// PayGateWebhook nhận notification thanh toán từ cổng (at-least-once).
// Verify chữ ký trên body THÔ trước khi parse; sai chữ ký → 400, không
// đụng dữ liệu. Xử lý xong (kể cả no-op idempotent) → 200 để cổng ngừng retry.
func PayGateWebhook(c *fiber.Ctx) error {
	paygate := PayGateFromEnv()

	rawBody := c.Body()
	signature := c.Get("X-Paygate-Signature")

	if !paygate.VerifyWebhook(rawBody, signature) {
		return utils.ErrorResponseHaveKey(c, 400, "Chữ ký không hợp lệ", nil, constants.KEY_SIGNATURE_INVALID)
	}

	var notification model.WebhookNotification
	if err := json.Unmarshal(rawBody, &notification); err != nil {
		return utils.ErrorResponse(c, 400, "Notification không đọc được", err)
	}

	if notification.Type != "payment.completed" {
		// Loại notification khác không thuộc phạm vi xử lý
		return c.JSON(fiber.Map{"RspCode": "00", "Message": "Ignored"})
	}

	_, issued, err := ConfirmOrder(database.DB, notification.Data.OrderCode, notification.Data.TransactionRef)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return utils.ErrorResponseHaveKey(c, 404, "Đơn hàng không tồn tại", err, constants.KEY_NOT_FOUND)
		case errors.Is(err, ErrInvalidState):
			return utils.ErrorResponseHaveKey(c, 400, "Đơn hàng không thể xác nhận", err, constants.KEY_INVALID_STATE)
		}
		log.Printf("Lỗi xác nhận đơn %s: %v", notification.Data.OrderCode, err)
		return utils.ErrorResponse(c, 500, "Lỗi xử lý notification", err)
	}

	if issued {
		log.Printf("Đã xác nhận đơn %s, phát hành vé", notification.Data.OrderCode)
	} else {
		log.Printf("Notification lặp cho đơn %s, bỏ qua", notification.Data.OrderCode)
	}

	return c.JSON(fiber.Map{"RspCode": "00", "Message": "Success"})
}
