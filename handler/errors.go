package handler

import "errors"

// Lỗi nghiệp vụ dùng chung giữa handler HTTP và webhook
var (
	ErrNotFound         = errors.New("không tìm thấy bản ghi")
	ErrInvalidState     = errors.New("trạng thái không hợp lệ cho thao tác này")
	ErrCapacityExceeded = errors.New("sự kiện không còn đủ vé")
	ErrForbidden        = errors.New("không có quyền trên bản ghi này")
	ErrAlreadyUsed      = errors.New("vé đã được sử dụng")
	ErrTicketExpired    = errors.New("sự kiện đã diễn ra, vé hết hạn soát")
)
