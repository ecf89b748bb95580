package validate

import (
	"event_ticketing/model"
	"event_ticketing/utils"

	"github.com/gofiber/fiber/v2"
)

// VerifySecret parse + validate input đối chiếu mã thủ công
func VerifySecret() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.VerifySecretInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, 400, "Dữ liệu không hợp lệ", err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, 400, err.Error(), err)
		}

		c.Locals("input", input)
		return c.Next()
	}
}
