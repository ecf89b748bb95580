package model

// Account tài khoản nội bộ (admin, nhân viên soát vé).
// Việc cấp phát session/token do hệ thống auth bên ngoài đảm nhiệm,
// service này chỉ đọc claim từ JWT.
type Account struct {
	DTO
	Username string `gorm:"unique;size:50" json:"username"`
	Password string `json:"-"`
	Role     string `gorm:"size:20" json:"role"`
	Active   bool   `gorm:"default:true" json:"active"`
}
