package handler

import (
	"event_ticketing/constants"
	"event_ticketing/database"
	"event_ticketing/model"
	"event_ticketing/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
)

// GetEvents danh sách sự kiện đang mở bán
func GetEvents(c *fiber.Ctx) error {
	filterInput := new(model.FilterEventInput)
	if err := c.QueryParser(filterInput); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
	}

	db := database.DB
	condition := db.Model(&model.Event{}).
		Where("status = ? AND is_verified = ?", "PUBLISHED", true)

	if filterInput.Keyword != "" {
		condition = condition.Where("title ILIKE ?", "%"+filterInput.Keyword+"%")
	}

	var totalCount int64
	condition.Count(&totalCount)

	var events []model.Event
	condition = utils.ApplyPagination(condition, filterInput.Limit, filterInput.Page)
	if err := condition.Order("date_time asc").Find(&events).Error; err != nil {
		return utils.ErrorResponse(c, 500, "Lỗi tải danh sách sự kiện", err)
	}

	rows := make([]model.EventResponse, 0, len(events))
	for _, event := range events {
		var resp model.EventResponse
		copier.Copy(&resp, &event)

		reserved, err := CountReservedTickets(db, event.ID)
		if err == nil {
			resp.Remaining = event.TotalTickets - reserved
		}
		rows = append(rows, resp)
	}

	response := &model.ResponseCustom{
		Rows:       rows,
		Limit:      filterInput.Limit,
		Page:       filterInput.Page,
		TotalCount: totalCount,
	}
	return utils.SuccessResponse(c, fiber.StatusOK, response)
}

// GetEventBySlug chi tiết sự kiện kèm số vé còn lại
func GetEventBySlug(c *fiber.Ctx) error {
	eventSlug := c.Params("slug")

	var event model.Event
	if err := database.DB.Where("slug = ?", eventSlug).First(&event).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, 404, "Sự kiện không tồn tại", err, constants.KEY_NOT_FOUND)
	}

	var resp model.EventResponse
	copier.Copy(&resp, &event)

	reserved, err := CountReservedTickets(database.DB, event.ID)
	if err != nil {
		return utils.ErrorResponse(c, 500, "Lỗi tính số vé còn lại", err)
	}
	resp.Remaining = event.TotalTickets - reserved

	return utils.SuccessResponse(c, fiber.StatusOK, resp)
}
