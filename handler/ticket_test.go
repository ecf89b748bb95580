package handler

import (
	"testing"
	"time"

	"event_ticketing/model"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTicket(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)
	usedAt := now.Add(-time.Hour)

	tests := []struct {
		name        string
		orderStatus string
		isUsed      bool
		usedAt      *time.Time
		eventTime   time.Time
		want        string
	}{
		{
			name:        "vé hợp lệ",
			orderStatus: OrderConfirmed,
			eventTime:   future,
			want:        TicketValid,
		},
		{
			name:        "vé đã sử dụng",
			orderStatus: OrderConfirmed,
			isUsed:      true,
			usedAt:      &usedAt,
			eventTime:   future,
			want:        TicketUsed,
		},
		{
			name:        "sự kiện đã diễn ra, vé chưa dùng",
			orderStatus: OrderConfirmed,
			eventTime:   past,
			want:        TicketExpired,
		},
		{
			name:        "đã dùng thì vẫn là USED kể cả khi sự kiện đã qua",
			orderStatus: OrderConfirmed,
			isUsed:      true,
			usedAt:      &usedAt,
			eventTime:   past,
			want:        TicketUsed,
		},
		{
			name:        "đơn chưa xác nhận",
			orderStatus: OrderPending,
			eventTime:   future,
			want:        TicketInvalid,
		},
		{
			name:        "đơn đã hủy",
			orderStatus: OrderCancelled,
			eventTime:   future,
			want:        TicketInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := &model.Ticket{
				TicketCode: "TKT-TEST",
				IsUsed:     tt.isUsed,
				UsedAt:     tt.usedAt,
			}
			order := &model.Order{Status: tt.orderStatus}
			event := &model.Event{DateTime: tt.eventTime}

			assert.Equal(t, tt.want, ClassifyTicket(ticket, order, event, now))
		})
	}
}
