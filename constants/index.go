package constants

// Roles
const (
	ROLE_ADMIN = "ADMIN"
	ROLE_GATE  = "GATE" // nhân viên soát vé tại cổng
)

// Thông báo lỗi chung
const (
	ERROR_INPUT              = "Dữ liệu đầu vào không hợp lệ"
	DATA_INPUT_IS_NOT_NUMBER = "Dữ liệu đầu vào phải là số"
	NOT_ADMIN                = "Không có quyền thực hiện thao tác này"
)

// keyError trả về cho client (máy đọc được, không đổi)
const (
	KEY_NOT_FOUND         = "NOT_FOUND"
	KEY_INVALID_STATE     = "INVALID_STATE"
	KEY_CAPACITY_EXCEEDED = "CAPACITY_EXCEEDED"
	KEY_SIGNATURE_INVALID = "SIGNATURE_INVALID"
	KEY_FORBIDDEN         = "FORBIDDEN"
	KEY_INTEGRITY_FAULT   = "INTEGRITY_FAULT"
)
