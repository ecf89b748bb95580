package database

import (
	"event_ticketing/constants"
	"event_ticketing/model"
	"log"
	"time"

	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func parseDateTime(s string) time.Time {
	t, _ := time.Parse("2006-01-02 15:04", s)
	return t
}

func SeedData(db *gorm.DB) {
	bytes, err := bcrypt.GenerateFromPassword([]byte("123456cn"), 10)
	HashPassword := string(bytes)
	if err != nil {
		HashPassword = "123456cn"
	}
	accounts := []model.Account{
		{Username: "Administration", Password: HashPassword, Active: true, Role: constants.ROLE_ADMIN},
		{Username: "gate_staff_01", Password: HashPassword, Active: true, Role: constants.ROLE_GATE},
	}

	for _, account := range accounts {
		// Tạo mới nếu không tồn tại
		if err := db.Where(model.Account{Username: account.Username}).FirstOrCreate(&account).Error; err != nil {
			log.Println("failed to seed data for account:", account.Username, "error:", err)
		}
	}

	customers := []model.Customer{
		{Name: "Nguyễn Văn A", Email: "vana@example.com", Phone: "0901234567", IsActive: true},
		{Name: "Trần Thị B", Email: "thib@example.com", Phone: "0907654321", IsActive: true},
	}
	for _, customer := range customers {
		if err := db.Where(model.Customer{Email: customer.Email}).FirstOrCreate(&customer).Error; err != nil {
			log.Println("failed to seed data for customer:", customer.Email, "error:", err)
		}
	}

	events := []model.Event{
		{
			Title:        "Đêm nhạc Acoustic Hà Nội 2026",
			Description:  "Đêm nhạc acoustic với các nghệ sĩ trẻ",
			Location:     "Cung Văn hóa Hữu nghị, Hà Nội",
			Price:        250000,
			TotalTickets: 500,
			Status:       "PUBLISHED",
			IsVerified:   true,
			DateTime:     parseDateTime("2026-11-20 20:00"),
		},
		{
			Title:        "Workshop Nhiếp ảnh cơ bản",
			Description:  "Workshop một buổi cho người mới bắt đầu",
			Location:     "Quận 1, TP.HCM",
			Price:        150000,
			TotalTickets: 40,
			Status:       "PUBLISHED",
			IsVerified:   true,
			DateTime:     parseDateTime("2026-10-05 09:00"),
		},
		{
			Title:        "Giải chạy đêm Sài Gòn",
			Description:  "Giải chạy 5km/10km ban đêm",
			Location:     "Phố đi bộ Nguyễn Huệ, TP.HCM",
			Price:        300000,
			TotalTickets: 2000,
			Status:       "DRAFT", // chưa publish, chưa bán được
			IsVerified:   false,
			DateTime:     parseDateTime("2026-12-12 21:00"),
		},
	}
	for _, event := range events {
		event.Slug = slug.Make(event.Title)
		if err := db.Where(model.Event{Slug: event.Slug}).FirstOrCreate(&event).Error; err != nil {
			log.Println("failed to seed data for event:", event.Title, "error:", err)
		}
	}
}
