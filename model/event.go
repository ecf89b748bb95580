package model

import "time"

type Event struct {
	DTO
	Title        string    `gorm:"size:255;not null" json:"title"`
	Slug         string    `gorm:"uniqueIndex;size:255" json:"slug"`
	Description  string    `json:"description"`
	Location     string    `gorm:"size:255" json:"location"`
	Price        float64   `gorm:"not null" json:"price"`
	TotalTickets int       `gorm:"not null" json:"totalTickets"` // sức chứa, cố định khi tạo
	Status       string    `gorm:"not null;default:'DRAFT'" json:"status"`
	IsVerified   bool      `gorm:"default:false" json:"isVerified"`
	DateTime     time.Time `gorm:"not null" json:"dateTime"` // thời điểm diễn ra, cũng là hạn soát vé
	Orders       []Order   `gorm:"foreignKey:EventID" json:"-"`
}

// EventResponse projection trả về cho client, kèm số vé còn lại
type EventResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Price        float64   `json:"price"`
	TotalTickets int       `json:"totalTickets"`
	Status       string    `json:"status"`
	DateTime     time.Time `json:"dateTime"`
	Remaining    int       `json:"remaining"`
}

type FilterEventInput struct {
	Pagination
	Keyword string `json:"keyword" validate:"omitempty"`
}
