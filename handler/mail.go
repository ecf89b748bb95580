package handler

import (
	"log"

	"event_ticketing/database"
	"event_ticketing/model"
	"event_ticketing/utils"
)

type orderEmailJob struct {
	OrderId uint
}

// Hàng đợi email: webhook chỉ enqueue, worker render QR + gửi mail riêng
var emailQueue = make(chan orderEmailJob, 256)

// EnqueueOrderEmail không bao giờ block luồng gọi; queue đầy thì bỏ job
// và ghi log (khách vẫn xem được vé qua trang đơn hàng)
func EnqueueOrderEmail(orderId uint) {
	select {
	case emailQueue <- orderEmailJob{OrderId: orderId}:
	default:
		log.Printf("Hàng đợi email đầy, bỏ qua email cho đơn %d", orderId)
	}
}

func StartEmailWorker() {
	go func() {
		for job := range emailQueue {
			sendOrderEmail(job)
		}
	}()
	log.Println("✅ Email worker started")
}

func sendOrderEmail(job orderEmailJob) {
	var order model.Order
	if err := database.DB.
		Preload("Tickets").
		Preload("Event").
		Preload("Customer").
		First(&order, "id = ?", job.OrderId).Error; err != nil {
		log.Printf("Lỗi tải đơn %d để gửi email: %v", job.OrderId, err)
		return
	}

	if order.Customer.Email == "" {
		return
	}

	tickets := make([]utils.TicketEmailData, 0, len(order.Tickets))
	for _, ticket := range order.Tickets {
		tickets = append(tickets, utils.TicketEmailData{
			TicketCode: ticket.TicketCode,
			SecretCode: ticket.SecretCode,
			QrPayload:  ticket.QrPayload,
		})
	}

	data := utils.OrderConfirmationData{
		OrderCode:   order.PublicCode,
		EventName:   order.Event.Title,
		EventTime:   order.Event.DateTime.Format("02/01/2006 15:04"),
		Location:    order.Event.Location,
		TicketCount: order.TicketCount,
		TotalAmount: order.TotalAmount,
		Tickets:     tickets,
	}

	if err := utils.SendOrderConfirmationEmail(order.Customer.Email, data); err != nil {
		log.Printf("Lỗi gửi email cho đơn %s: %v", order.PublicCode, err)
	} else {
		log.Printf("Email xác nhận + QR đã gửi đến %s", order.Customer.Email)
	}
}
