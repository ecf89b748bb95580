package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"event_ticketing/database"
	"event_ticketing/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	testDBOnce sync.Once
	testDBConn *gorm.DB
	testDBErr  error
)

// testDB dựng một Postgres tạm bằng testcontainers, migrate schema và trỏ
// database.DB vào đó (các side effect sau commit như broadcast đọc biến này).
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("bỏ qua test tích hợp ở chế độ -short")
	}

	testDBOnce.Do(func() {
		ctx := context.Background()

		container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
			tcpostgres.WithDatabase("tickets_test"),
			tcpostgres.WithUsername("test"),
			tcpostgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(time.Minute)),
		)
		if err != nil {
			testDBErr = err
			return
		}

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			testDBErr = err
			return
		}

		db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			testDBErr = err
			return
		}

		database.Migrate(db)
		database.DB = db
		testDBConn = db
	})
	if testDBErr != nil {
		t.Skipf("không khởi động được Postgres container: %v", testDBErr)
	}
	return testDBConn
}

func seedTestEvent(t *testing.T, db *gorm.DB, totalTickets int, dateTime time.Time) *model.Event {
	t.Helper()
	suffix := uuid.New().String()[:8]
	event := &model.Event{
		Title:        "Đêm nhạc test " + suffix,
		Slug:         "dem-nhac-test-" + suffix,
		Location:     "Nhà hát test",
		Price:        150000,
		TotalTickets: totalTickets,
		Status:       "PUBLISHED",
		IsVerified:   true,
		DateTime:     dateTime,
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

func seedTestCustomer(t *testing.T, db *gorm.DB) *model.Customer {
	t.Helper()
	customer := &model.Customer{
		Name:     "Khách test",
		Email:    uuid.New().String()[:8] + "@test.local",
		IsActive: true,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// Đặt đơn và xác nhận luôn, trả về đơn kèm lô vé đã phát hành.
func confirmedOrder(t *testing.T, db *gorm.DB, customerId uint, eventId uint, ticketCount int) *model.Order {
	t.Helper()
	order, err := CreateOrderForCustomer(db, customerId, model.CreateOrderInput{
		EventId:     eventId,
		TicketCount: ticketCount,
	})
	require.NoError(t, err)

	confirmed, issued, err := ConfirmOrder(db, order.PublicCode, "TXN-"+uuid.New().String()[:8])
	require.NoError(t, err)
	require.True(t, issued)
	require.Len(t, confirmed.Tickets, ticketCount)
	return confirmed
}

func TestCreateOrderConcurrentCapacity(t *testing.T) {
	db := testDB(t)
	event := seedTestEvent(t, db, 10, time.Now().Add(24*time.Hour))
	customer := seedTestCustomer(t, db)

	// Hai đơn 6 vé tranh 10 chỗ: row lock trên sự kiện bắt buộc
	// đúng một đơn lọt qua, đơn kia bị từ chối vì hết chỗ.
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = CreateOrderForCustomer(db, customer.ID, model.CreateOrderInput{
				EventId:     event.ID,
				TicketCount: 6,
			})
		}(i)
	}
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrCapacityExceeded):
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	reserved, err := CountReservedTickets(db, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, reserved)
}

func TestCreateOrderRejectsUnbookableEvent(t *testing.T) {
	db := testDB(t)
	customer := seedTestCustomer(t, db)

	draft := seedTestEvent(t, db, 50, time.Now().Add(24*time.Hour))
	require.NoError(t, db.Model(draft).Updates(map[string]any{
		"status":      "DRAFT",
		"is_verified": false,
	}).Error)

	_, err := CreateOrderForCustomer(db, customer.ID, model.CreateOrderInput{
		EventId: draft.ID, TicketCount: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	past := seedTestEvent(t, db, 50, time.Now().Add(24*time.Hour))
	require.NoError(t, db.Model(past).Update("date_time", time.Now().Add(-time.Hour)).Error)

	_, err = CreateOrderForCustomer(db, customer.ID, model.CreateOrderInput{
		EventId: past.ID, TicketCount: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = CreateOrderForCustomer(db, customer.ID, model.CreateOrderInput{
		EventId: 999999, TicketCount: 1,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmOrderIdempotent(t *testing.T) {
	db := testDB(t)
	event := seedTestEvent(t, db, 20, time.Now().Add(24*time.Hour))
	customer := seedTestCustomer(t, db)

	order, err := CreateOrderForCustomer(db, customer.ID, model.CreateOrderInput{
		EventId: event.ID, TicketCount: 3,
	})
	require.NoError(t, err)

	first, issued, err := ConfirmOrder(db, order.PublicCode, "TXN-FIRST")
	require.NoError(t, err)
	assert.True(t, issued)
	assert.Equal(t, OrderConfirmed, first.Status)
	require.NotNil(t, first.PaymentRef)
	assert.Equal(t, "TXN-FIRST", *first.PaymentRef)
	assert.NotNil(t, first.PaidAt)
	require.Len(t, first.Tickets, 3)

	// Webhook gửi lại: không phát hành thêm vé, không đổi paymentRef
	second, issued, err := ConfirmOrder(db, order.PublicCode, "TXN-RETRY")
	require.NoError(t, err)
	assert.False(t, issued)
	assert.Equal(t, OrderConfirmed, second.Status)
	require.NotNil(t, second.PaymentRef)
	assert.Equal(t, "TXN-FIRST", *second.PaymentRef)

	var count int64
	require.NoError(t, db.Model(&model.Ticket{}).
		Where("order_id = ?", order.ID).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestConfirmOrderRejectsCancelled(t *testing.T) {
	db := testDB(t)
	event := seedTestEvent(t, db, 20, time.Now().Add(24*time.Hour))
	customer := seedTestCustomer(t, db)

	order, err := CreateOrderForCustomer(db, customer.ID, model.CreateOrderInput{
		EventId: event.ID, TicketCount: 2,
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(order).Update("status", OrderCancelled).Error)

	_, _, err = ConfirmOrder(db, order.PublicCode, "TXN-LATE")
	assert.ErrorIs(t, err, ErrInvalidState)

	// Đơn đã hủy không được phát hành vé
	var count int64
	require.NoError(t, db.Model(&model.Ticket{}).
		Where("order_id = ?", order.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestConfirmOrderUnknownCode(t *testing.T) {
	db := testDB(t)
	_, _, err := ConfirmOrder(db, "ORD-khongton", "TXN-X")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedeemTicketExactlyOnce(t *testing.T) {
	db := testDB(t)
	event := seedTestEvent(t, db, 20, time.Now().Add(24*time.Hour))
	customer := seedTestCustomer(t, db)
	order := confirmedOrder(t, db, customer.ID, event.ID, 1)
	code := order.Tickets[0].TicketCode

	// 8 máy quét cùng soát một vé: đúng một máy thắng
	const scanners = 8
	errs := make([]error, scanners)
	var wg sync.WaitGroup
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = RedeemTicket(db, code, time.Now())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyUsed)
		}
	}
	assert.Equal(t, 1, succeeded)

	var ticket model.Ticket
	require.NoError(t, db.First(&ticket, "ticket_code = ?", code).Error)
	assert.True(t, ticket.IsUsed)
	assert.NotNil(t, ticket.UsedAt)
}

func TestRedeemThenClassifyUsed(t *testing.T) {
	db := testDB(t)
	event := seedTestEvent(t, db, 20, time.Now().Add(24*time.Hour))
	customer := seedTestCustomer(t, db)
	order := confirmedOrder(t, db, customer.ID, event.ID, 1)
	code := order.Tickets[0].TicketCode

	redeemed, err := RedeemTicket(db, code, time.Now())
	require.NoError(t, err)
	assert.True(t, redeemed.IsUsed)
	require.NotNil(t, redeemed.UsedAt)

	ticket, loadedOrder, loadedEvent, err := findTicketByCode(db, code)
	require.NoError(t, err)
	assert.Equal(t, TicketUsed, ClassifyTicket(ticket, loadedOrder, loadedEvent, time.Now()))

	_, err = RedeemTicket(db, code, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestRedeemAfterEventEnds(t *testing.T) {
	db := testDB(t)
	event := seedTestEvent(t, db, 20, time.Now().Add(24*time.Hour))
	customer := seedTestCustomer(t, db)
	order := confirmedOrder(t, db, customer.ID, event.ID, 1)
	code := order.Tickets[0].TicketCode

	// Sự kiện đã diễn ra → vé chưa dùng hết hạn soát, không bị đánh dấu dùng
	require.NoError(t, db.Model(&model.Event{}).
		Where("id = ?", event.ID).
		Update("date_time", time.Now().Add(-time.Hour)).Error)

	_, err := RedeemTicket(db, code, time.Now())
	assert.ErrorIs(t, err, ErrTicketExpired)

	ticket, loadedOrder, loadedEvent, err := findTicketByCode(db, code)
	require.NoError(t, err)
	assert.False(t, ticket.IsUsed)
	assert.Equal(t, TicketExpired, ClassifyTicket(ticket, loadedOrder, loadedEvent, time.Now()))
}

func TestRedeemUnknownCode(t *testing.T) {
	db := testDB(t)
	_, err := RedeemTicket(db, "TKT-khongton", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIssuedTicketsPassGateCheck(t *testing.T) {
	db := testDB(t)
	event := seedTestEvent(t, db, 20, time.Now().Add(24*time.Hour))
	customer := seedTestCustomer(t, db)
	order := confirmedOrder(t, db, customer.ID, event.ID, 4)

	// Mọi vé vừa phát hành phải qua được soát vé, mã không trùng nhau
	seen := make(map[string]bool)
	for _, issued := range order.Tickets {
		assert.False(t, seen[issued.TicketCode])
		seen[issued.TicketCode] = true

		ticket, loadedOrder, loadedEvent, err := findTicketByCode(db, issued.TicketCode)
		require.NoError(t, err)
		assert.Equal(t, TicketValid, ClassifyTicket(ticket, loadedOrder, loadedEvent, time.Now()))
		assert.Contains(t, ticket.QrPayload, ticket.TicketCode)
		assert.Len(t, ticket.SecretCode, 5)
	}
}

func TestDeleteOrderRules(t *testing.T) {
	db := testDB(t)
	event := seedTestEvent(t, db, 10, time.Now().Add(24*time.Hour))
	customer := seedTestCustomer(t, db)
	stranger := seedTestCustomer(t, db)

	pending, err := CreateOrderForCustomer(db, customer.ID, model.CreateOrderInput{
		EventId: event.ID, TicketCount: 4,
	})
	require.NoError(t, err)

	// Không phải chủ đơn → cấm
	_, err = DeleteOrderForCustomer(db, stranger.ID, pending.PublicCode)
	assert.ErrorIs(t, err, ErrForbidden)

	// Chính chủ xóa đơn PENDING → vé giữ chỗ được giải phóng
	_, err = DeleteOrderForCustomer(db, customer.ID, pending.PublicCode)
	require.NoError(t, err)

	reserved, err := CountReservedTickets(db, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reserved)

	// Đơn đã CONFIRMED thì không xóa được
	confirmed := confirmedOrder(t, db, customer.ID, event.ID, 2)
	_, err = DeleteOrderForCustomer(db, customer.ID, confirmed.PublicCode)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestExpirePendingOrdersFreesCapacity(t *testing.T) {
	db := testDB(t)
	event := seedTestEvent(t, db, 10, time.Now().Add(24*time.Hour))
	customer := seedTestCustomer(t, db)

	stale, err := CreateOrderForCustomer(db, customer.ID, model.CreateOrderInput{
		EventId: event.ID, TicketCount: 7,
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(stale).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	fresh, err := CreateOrderForCustomer(db, customer.ID, model.CreateOrderInput{
		EventId: event.ID, TicketCount: 3,
	})
	require.NoError(t, err)

	ExpirePendingOrders()

	var reloaded model.Order
	require.NoError(t, db.First(&reloaded, "id = ?", stale.ID).Error)
	assert.Equal(t, OrderCancelled, reloaded.Status)

	require.NoError(t, db.First(&reloaded, "id = ?", fresh.ID).Error)
	assert.Equal(t, OrderPending, reloaded.Status)

	// 7 vé quá hạn trả về sự kiện, giờ lại đặt được
	_, err = CreateOrderForCustomer(db, customer.ID, model.CreateOrderInput{
		EventId: event.ID, TicketCount: 7,
	})
	assert.NoError(t, err)
}
