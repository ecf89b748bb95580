package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"

	"event_ticketing/config"
	"event_ticketing/database"
	"event_ticketing/model"

	"github.com/gofiber/contrib/websocket"
	"github.com/redis/go-redis/v9"
)

var (
	redisClient = redis.NewClient(&redis.Options{
		Addr: config.ConfigOrDefault("REDIS_ADDR", "localhost:6379"),
	})

	clients = make(map[uint]map[*websocket.Conn]bool)
	mu      sync.Mutex
)

type availabilityMessage struct {
	EventId      uint `json:"eventId"`
	TotalTickets int  `json:"totalTickets"`
	Remaining    int  `json:"remaining"`
}

// BroadcastEventAvailability publish số vé còn lại của sự kiện lên Redis,
// các client đang theo dõi nhận được cập nhật realtime
func BroadcastEventAvailability(eventId uint) {
	db := database.DB

	var event model.Event
	if err := db.First(&event, "id = ?", eventId).Error; err != nil {
		return
	}
	reserved, err := CountReservedTickets(db, eventId)
	if err != nil {
		return
	}

	msg := availabilityMessage{
		EventId:      eventId,
		TotalTickets: event.TotalTickets,
		Remaining:    event.TotalTickets - reserved,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	if err := redisClient.Publish(
		context.Background(),
		fmt.Sprintf("event:%d", eventId),
		payload,
	).Err(); err != nil {
		log.Printf("Lỗi publish availability sự kiện %d: %v", eventId, err)
	}
}

// WebSocketConnection xử lý WS connection theo dõi một sự kiện
func WebSocketConnection(c *websocket.Conn) {
	eventIdStr := c.Params("id")
	id64, _ := strconv.ParseUint(eventIdStr, 10, 64)
	eventId := uint(id64)

	// Khi WS disconnect → xoá client
	defer func() {
		mu.Lock()
		if clients[eventId] != nil {
			delete(clients[eventId], c)
		}
		mu.Unlock()
		c.Close()
	}()

	// Thêm client mới vào room
	mu.Lock()
	if clients[eventId] == nil {
		clients[eventId] = make(map[*websocket.Conn]bool)
	}
	clients[eventId][c] = true
	mu.Unlock()

	// Gửi trạng thái hiện tại lần đầu
	var event model.Event
	if err := database.DB.First(&event, "id = ?", eventId).Error; err == nil {
		reserved, err := CountReservedTickets(database.DB, eventId)
		if err == nil {
			c.WriteJSON(availabilityMessage{
				EventId:      eventId,
				TotalTickets: event.TotalTickets,
				Remaining:    event.TotalTickets - reserved,
			})
		}
	}

	// Sub kênh Redis
	pubsub := redisClient.Subscribe(
		context.Background(),
		fmt.Sprintf("event:%d", eventId),
	)
	defer pubsub.Close()

	channel := pubsub.Channel()

	for msg := range channel {
		payload := []byte(msg.Payload)

		mu.Lock()
		for conn := range clients[eventId] {
			// Nếu client lỗi → xoá
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				conn.Close()
				delete(clients[eventId], conn)
			}
		}
		mu.Unlock()
	}
}
