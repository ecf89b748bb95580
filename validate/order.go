package validate

import (
	"event_ticketing/helper"
	"event_ticketing/model"
	"event_ticketing/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateOrder parse + validate input, yêu cầu khách hàng đăng nhập
func CreateOrder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, customer := helper.GetInfoCustomerFromToken(c)
		if customer.ID == 0 {
			return utils.ErrorResponse(c, 401, "Vui lòng đăng nhập", nil)
		}

		var input model.CreateOrderInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, 400, "Dữ liệu không hợp lệ", err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, 400, err.Error(), err)
		}

		c.Locals("input", input)
		c.Locals("customer", &customer)
		return c.Next()
	}
}

// RequireCustomer gán khách hàng đăng nhập vào Locals cho các route đọc/xóa
func RequireCustomer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, customer := helper.GetInfoCustomerFromToken(c)
		if customer.ID == 0 {
			return utils.ErrorResponse(c, 401, "Vui lòng đăng nhập", nil)
		}
		c.Locals("customer", &customer)
		return c.Next()
	}
}
