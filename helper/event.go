package helper

import (
	"event_ticketing/database"
	"event_ticketing/model"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

var eventScheduler gocron.Scheduler

// AutoUpdateEventStatus quét sự kiện đã qua giờ diễn ra → FINISHED
func AutoUpdateEventStatus() {
	log.Println("[CRON] AutoUpdateEventStatus triggered")

	db := database.DB
	loc := time.FixedZone("ICT", 7*3600)
	now := time.Now().In(loc)

	var events []model.Event
	if err := db.Where("status = ? AND date_time < ?", "PUBLISHED", now).Find(&events).Error; err != nil {
		log.Printf("Lỗi khi quét sự kiện: %v", err)
		return
	}

	for _, event := range events {
		event.Status = "FINISHED"
		if err := db.Save(&event).Error; err != nil {
			log.Printf("Lỗi cập nhật trạng thái sự kiện '%s': %v", event.Title, err)
		} else {
			log.Printf("Cập nhật trạng thái sự kiện '%s' → FINISHED", event.Title)
		}
	}
}

func StartEventStatusScheduler() {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.FixedZone("ICT", 7*3600)),
	)
	if err != nil {
		log.Fatal(err)
	}

	eventScheduler = s

	_, err = s.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(
				gocron.NewAtTime(0, 5, 0),
			),
		),
		gocron.NewTask(AutoUpdateEventStatus),
	)
	if err != nil {
		log.Fatal(err)
	}

	s.Start()
	log.Println("✅ Event status scheduler started (00:05 ICT)")
}

func StopEventStatusScheduler() {
	if eventScheduler != nil {
		_ = eventScheduler.Shutdown()
	}
}
