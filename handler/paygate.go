package handler

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"strconv"
	"time"

	"event_ticketing/config"
	"event_ticketing/model"
)

// PayGate client cổng thanh toán hosted checkout.
// Config truyền tường minh để test không dính môi trường.
type PayGate struct {
	Config model.PayGateConfig
}

func NewPayGate(cfg model.PayGateConfig) *PayGate {
	return &PayGate{Config: cfg}
}

// PayGateFromEnv dựng client từ biến môi trường (dùng ở tầng HTTP)
func PayGateFromEnv() *PayGate {
	return NewPayGate(model.PayGateConfig{
		MerchantCode: config.Config("PAYGATE_MERCHANT_CODE"),
		HashSecret:   config.Config("PAYGATE_HASH_SECRET"),
		BaseURL:      config.Config("PAYGATE_URL"),
		ReturnURL:    config.Config("APP_URL") + "/payment/return",
	})
}

// BuildCheckoutUrl tạo URL thanh toán hosted, ký HMAC-SHA512 trên query đã sort
func (p *PayGate) BuildCheckoutUrl(req model.CheckoutRequest) (string, error) {
	params := url.Values{}
	params.Add("pg_Version", "1.0")
	params.Add("pg_Command", "pay")
	params.Add("pg_MerchantCode", p.Config.MerchantCode)
	params.Add("pg_Amount", strconv.FormatInt(req.Amount, 10))
	params.Add("pg_CreateDate", time.Now().Format("20060102150405"))
	params.Add("pg_CurrCode", "VND")
	params.Add("pg_IpAddr", req.IPAddr)
	params.Add("pg_OrderInfo", req.OrderInfo)
	params.Add("pg_ReturnUrl", p.Config.ReturnURL)
	params.Add("pg_SessionRef", req.SessionRef)
	params.Add("pg_ExpireDate", time.Now().Add(15*time.Minute).Format("20060102150405"))

	// Sort & Hash
	query := params.Encode()
	hash := p.sign([]byte(query))
	fullQuery := query + "&pg_SecureHash=" + hash

	return p.Config.BaseURL + "?" + fullQuery, nil
}

// VerifyWebhook kiểm tra chữ ký trên body THÔ của notification.
// Sai chữ ký → fail closed, không đụng vào dữ liệu.
func (p *PayGate) VerifyWebhook(rawBody []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := p.sign(rawBody)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (p *PayGate) sign(data []byte) string {
	h := hmac.New(sha512.New, []byte(p.Config.HashSecret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
