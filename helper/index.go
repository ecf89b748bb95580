package helper

import (
	"event_ticketing/database"
	"event_ticketing/model"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func claimsFromLocals(c *fiber.Ctx) (jwt.MapClaims, bool) {
	u := c.Locals("user")
	if u == nil {
		return nil, false
	}

	userToken, ok := u.(*jwt.Token)
	if !ok || userToken == nil {
		return nil, false
	}

	claims, ok := userToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	return claims, true
}

// GetInfoCustomerFromToken lấy claim + bản ghi khách hàng từ JWT.
// Không có token hợp lệ → trả về guest (CustomerId = 0).
func GetInfoCustomerFromToken(c *fiber.Ctx) (model.TokenClaim, model.Customer) {
	var emptyCustomer model.Customer
	var guestClaim = model.TokenClaim{
		CustomerId: 0,
		Username:   "",
	}

	claims, ok := claimsFromLocals(c)
	if !ok {
		return guestClaim, emptyCustomer
	}

	customerIdFloat := float64(0)
	if cid, ok := claims["customerId"].(float64); ok {
		customerIdFloat = cid
	}
	if customerIdFloat == 0 {
		return guestClaim, emptyCustomer
	}

	claim := model.TokenClaim{
		CustomerId: uint(customerIdFloat),
	}
	if username, ok := claims["username"].(string); ok {
		claim.Username = username
	}

	var customer model.Customer
	if err := database.DB.First(&customer, "id = ? AND is_active IS true", claim.CustomerId).Error; err != nil {
		log.Printf("Không tìm thấy khách hàng %d từ token: %v", claim.CustomerId, err)
		return claim, emptyCustomer
	}

	return claim, customer
}

// GetInfoAccountFromToken lấy claim tài khoản nội bộ từ JWT
func GetInfoAccountFromToken(c *fiber.Ctx) (model.TokenClaim, bool, bool) {
	var claim model.TokenClaim

	claims, ok := claimsFromLocals(c)
	if !ok {
		return claim, false, false
	}

	if aid, ok := claims["accountId"].(float64); ok {
		claim.AccountId = uint(aid)
	}
	if username, ok := claims["username"].(string); ok {
		claim.Username = username
	}
	if role, ok := claims["role"].(string); ok {
		claim.Role = role
	}

	isAdmin := claim.Role == "ADMIN"
	isGate := claim.Role == "GATE"
	return claim, isAdmin, isGate
}
