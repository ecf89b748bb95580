package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// TicketEmailData một vé trong email xác nhận
type TicketEmailData struct {
	TicketCode string
	SecretCode string
	QrPayload  string
}

// OrderConfirmationData dữ liệu cho template email
type OrderConfirmationData struct {
	OrderCode   string
	EventName   string
	EventTime   string
	Location    string
	TicketCount int
	TotalAmount float64
	Tickets     []TicketEmailData
}

// SendOrderConfirmationEmail gửi email xác nhận đơn hàng kèm QR từng vé.
// Hàm chạy đồng bộ, worker email gọi nó ngoài luồng webhook.
func SendOrderConfirmationEmail(to string, data OrderConfirmationData) error {
	tmplPath := "templates/order_confirmation.html"
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("load template email: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render template email: %w", err)
	}

	host := os.Getenv("SMTP_HOST")
	portStr := os.Getenv("SMTP_PORT")
	username := os.Getenv("SMTP_USERNAME")
	password := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")

	port, _ := strconv.Atoi(portStr)
	if port == 0 {
		port = 587
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Xác nhận đơn hàng #"+data.OrderCode)
	m.SetBody("text/html", body.String())

	// Đính kèm QR code cho từng vé
	for _, ticket := range data.Tickets {
		qrBytes, err := GenerateQRCode(ticket.QrPayload, 256)
		if err != nil {
			log.Printf("Lỗi tạo QR cho vé %s: %v", ticket.TicketCode, err)
			continue
		}

		filename := fmt.Sprintf("Ve_%s.png", ticket.TicketCode)
		m.Attach(filename, gomail.Rename(filename), gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(qrBytes))
			return err
		}))
	}

	d := gomail.NewDialer(host, port, username, password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("gửi email: %w", err)
	}
	return nil
}
