package model

type PayGateConfig struct {
	MerchantCode string
	HashSecret   string
	BaseURL      string
	ReturnURL    string
}

type CheckoutRequest struct {
	Amount     int64  `json:"amount"`
	OrderInfo  string `json:"orderInfo"`
	SessionRef string `json:"sessionRef"`
	IPAddr     string `json:"ipAddr"`
}

// WebhookNotification thông báo thanh toán từ cổng (server-to-server).
// Body thô của request được ký HMAC, parse sau khi verify.
type WebhookNotification struct {
	Type string `json:"type"` // payment.completed, payment.failed...
	Data struct {
		SessionRef     string `json:"sessionRef"`
		OrderCode      string `json:"orderCode"`
		TransactionRef string `json:"transactionRef"`
		Amount         int64  `json:"amount"`
	} `json:"data"`
}
