package user

type Permission string

const (
	// Self
	PermissionProfileViewOwn Permission = "profile.view_own"
	PermissionDutySelf       Permission = "duty.self"

	// Attendance
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"

	// Leave
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveViewOwn Permission = "leave.view_own"
	PermissionLeaveViewAll Permission = "leave.view_all"
	PermissionLeaveApprove Permission = "leave.approve"

	// Employee roster
	PermissionEmployeeViewAll Permission = "employee.view_all"
	PermissionEmployeeManage  Permission = "employee.manage"

	// Reports
	PermissionReportsViewOwn Permission = "reports.view_own"
	PermissionReportsViewAll Permission = "reports.view_all"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdministrator: {
		PermissionProfileViewOwn,
		PermissionAttendanceViewAll,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionEmployeeViewAll,
		PermissionEmployeeManage,
		PermissionReportsViewAll,
	},
	RoleEmployee: {
		PermissionProfileViewOwn,
		PermissionDutySelf,
		PermissionAttendanceViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewOwn,
		PermissionReportsViewOwn,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// Capabilities is the fixed operation set of one role.
type Capabilities struct {
	role Role
}

func CapabilitiesFor(role Role) Capabilities {
	return Capabilities{role: role}
}

func (c Capabilities) Role() Role {
	return c.role
}

func (c Capabilities) Can(permission Permission) bool {
	return HasPermission(c.role, permission)
}

// Require returns ErrInsufficientPermissions unless the role has permission.
func (c Capabilities) Require(permission Permission) error {
	if !c.Can(permission) {
		return ErrInsufficientPermissions
	}
	return nil
}
