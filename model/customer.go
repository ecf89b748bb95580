package model

type Customer struct {
	DTO
	Name     string `gorm:"size:100" json:"name"`
	Email    string `gorm:"unique;size:100" json:"email"`
	Phone    string `gorm:"size:20" json:"phone"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}
