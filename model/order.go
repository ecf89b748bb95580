package model

import "time"

type Order struct {
	DTO
	PublicCode     string     `gorm:"unique;size:20" json:"publicCode"` // Mã đơn hàng công khai (ORD-XXXXXX)
	CustomerID     uint       `json:"customerId"`
	Customer       Customer   `json:"-"`
	EventID        uint       `json:"eventId"`
	Event          Event      `json:"-"`
	TicketCount    int        `gorm:"not null" json:"ticketCount"`
	TotalAmount    float64    `gorm:"not null" json:"totalAmount"` // giá sự kiện × số vé, chốt tại thời điểm tạo
	Status         string     `gorm:"not null;default:'PENDING'" json:"status"`
	PaymentRef     *string    `gorm:"size:50" json:"paymentRef,omitempty"` // mã giao dịch phía cổng thanh toán
	PaymentSession *string    `gorm:"size:50;index" json:"paymentSession,omitempty"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
	ExpiresAt      time.Time  `json:"expiresAt"` // đơn PENDING giữ chỗ tới thời điểm này
	Tickets        []Ticket   `gorm:"foreignKey:OrderId" json:"tickets,omitempty"`
}

type CreateOrderInput struct {
	EventId     uint `json:"eventId" validate:"required,gt=0"`
	TicketCount int  `json:"ticketCount" validate:"required,min=1"`
}
