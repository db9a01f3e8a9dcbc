package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenRevoked       ErrCode = "TOKEN_REVOKED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidPeriod  ErrCode = "INVALID_PERIOD"
	ErrInvalidSetting ErrCode = "INVALID_SETTING"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"
	ErrUnknownReference ErrCode = "UNKNOWN_REFERENCE"

	// ─── Classes & students ────────────────────────────────────────────
	ErrClassClosed          ErrCode = "CLASS_CLOSED"
	ErrClassNotClosed       ErrCode = "CLASS_NOT_CLOSED"
	ErrClassHasStudents     ErrCode = "CLASS_HAS_STUDENTS"
	ErrStudentNotActive     ErrCode = "STUDENT_NOT_ACTIVE"
	ErrStudentInactive      ErrCode = "STUDENT_INACTIVE"
	ErrNotSuspended         ErrCode = "NOT_SUSPENDED"
	ErrRestartBeforeSuspend ErrCode = "RESTART_BEFORE_SUSPEND"

	// ─── Payments ──────────────────────────────────────────────────────
	ErrAlreadyProrated ErrCode = "ALREADY_PRORATED"

	// ─── Parent portal ─────────────────────────────────────────────────
	ErrPortalNotFound ErrCode = "PORTAL_NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email hoặc mật khẩu không đúng."
	case ErrTokenRequired:
		return "Cần có mã xác thực."
	case ErrTokenInvalid:
		return "Mã xác thực không hợp lệ hoặc đã hết hạn."
	case ErrTokenRevoked:
		return "Phiên đăng nhập đã kết thúc. Vui lòng đăng nhập lại."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Bạn không có quyền truy cập tài nguyên này."
	case ErrPermissionDenied:
		return "Không đủ quyền thực hiện thao tác."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Dữ liệu không hợp lệ. Vui lòng kiểm tra lại."
	case ErrInvalidID:
		return "Định dạng ID không hợp lệ."
	case ErrInvalidPayload:
		return "Nội dung yêu cầu không hợp lệ."
	case ErrInvalidPeriod:
		return "Ngày kết thúc phải sau hoặc bằng ngày bắt đầu."
	case ErrInvalidSetting:
		return "Giá trị cài đặt không hợp lệ."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Không tìm thấy dữ liệu."
	case ErrConflict:
		return "Dữ liệu đã tồn tại."
	case ErrDependencyExists:
		return "Không thể xóa vì dữ liệu đang được sử dụng."
	case ErrUnknownReference:
		return "Dữ liệu liên kết không tồn tại."

	// ─── Classes & students ────────────────────────────────────────────
	case ErrClassClosed:
		return "Lớp học đã đóng."
	case ErrClassNotClosed:
		return "Lớp học đang hoạt động."
	case ErrClassHasStudents:
		return "Không thể xóa lớp vì vẫn còn học sinh."
	case ErrStudentNotActive:
		return "Học sinh không ở trạng thái đang học."
	case ErrStudentInactive:
		return "Học sinh đã nghỉ học."
	case ErrNotSuspended:
		return "Học sinh không ở trạng thái tạm nghỉ."
	case ErrRestartBeforeSuspend:
		return "Ngày học lại không được trước ngày tạm nghỉ."

	// ─── Payments ──────────────────────────────────────────────────────
	case ErrAlreadyProrated:
		return "Khoản thanh toán này đã được điều chỉnh."

	// ─── Parent portal ─────────────────────────────────────────────────
	case ErrPortalNotFound:
		return "Không tìm thấy học sinh với mã và số điện thoại đã nhập."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Quá nhiều yêu cầu. Vui lòng thử lại sau."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Lỗi máy chủ nội bộ."
	default:
		return "Đã xảy ra lỗi không xác định."
	}
}
