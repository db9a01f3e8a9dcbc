package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionClassesRead allows viewing classes and the daily board.
	PermissionClassesRead Permission = "classes:read"

	// PermissionClassesWrite allows creating, updating, closing and deleting classes.
	PermissionClassesWrite Permission = "classes:write"

	PermissionStudentsRead  Permission = "students:read"
	PermissionStudentsWrite Permission = "students:write"

	PermissionAttendanceRead  Permission = "attendance:read"
	PermissionAttendanceWrite Permission = "attendance:write"

	PermissionPaymentsRead  Permission = "payments:read"
	PermissionPaymentsWrite Permission = "payments:write"

	// PermissionPaymentsProrate allows shrinking a payment to attended sessions.
	PermissionPaymentsProrate Permission = "payments:prorate"

	PermissionSettingsRead  Permission = "settings:read"
	PermissionSettingsWrite Permission = "settings:write"
)

// AllPermissions lists every permission code, in the order they are seeded.
var AllPermissions = []Permission{
	PermissionClassesRead, PermissionClassesWrite,
	PermissionStudentsRead, PermissionStudentsWrite,
	PermissionAttendanceRead, PermissionAttendanceWrite,
	PermissionPaymentsRead, PermissionPaymentsWrite, PermissionPaymentsProrate,
	PermissionSettingsRead, PermissionSettingsWrite,
}

// Standard role names.
const (
	RoleOwner = "owner"
	RoleStaff = "staff"
)

// DefaultRoles maps each standard role to the permissions it is granted.
// Staff run classes day to day but cannot prorate or change settings.
var DefaultRoles = map[string][]Permission{
	RoleOwner: AllPermissions,
	RoleStaff: {
		PermissionClassesRead,
		PermissionStudentsRead, PermissionStudentsWrite,
		PermissionAttendanceRead, PermissionAttendanceWrite,
		PermissionPaymentsRead, PermissionPaymentsWrite,
		PermissionSettingsRead,
	},
}

// PermissionCodes converts permissions to their string codes.
func PermissionCodes(ps []Permission) []string {
	codes := make([]string, len(ps))
	for i, p := range ps {
		codes[i] = string(p)
	}
	return codes
}
