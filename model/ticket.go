package model

import "time"

type Ticket struct {
	DTO
	OrderId    uint       `gorm:"not null" json:"orderId"`
	Order      Order      `gorm:"foreignKey:OrderId" json:"-"`
	TicketCode string     `gorm:"size:30;uniqueIndex" json:"ticketCode"`
	QrPayload  string     `gorm:"size:255" json:"qrPayload"`           // URL nhúng ticket_code, nội dung QR
	SecretCode string     `gorm:"size:10" json:"secretCode"`           // mã số ngắn, đối chiếu thủ công tại quầy
	IsUsed     bool       `gorm:"not null;default:false" json:"isUsed"`
	UsedAt     *time.Time `json:"usedAt,omitempty"`
}

type VerifySecretInput struct {
	EventId    uint   `json:"eventId" validate:"required,gt=0"`
	SecretCode string `json:"secretCode" validate:"required,len=5,numeric"`
}
