package rbac

import "strings"

// 写操作权限；读操作对所有角色开放，不单独建模
const (
	PermissionProjectWrite   = "project:write"
	PermissionScheduleImport = "schedule:import"
	PermissionExtensionWrite = "extension:write"
	PermissionLogWrite       = "log:write"
	PermissionPersonnelWrite = "personnel:write"
	PermissionSOPWrite       = "sop:write"
	PermissionOutboxReplay   = "outbox:replay"
)

const (
	RoleAdmin    = "admin"
	RoleEngineer = "engineer"
	RoleViewer   = "viewer"
)

// 进度表导入和展延由管理员核定，现场工程师只能填日志和维护人员
var rolePermissions = map[string][]string{
	RoleAdmin: {
		PermissionProjectWrite,
		PermissionScheduleImport,
		PermissionExtensionWrite,
		PermissionLogWrite,
		PermissionPersonnelWrite,
		PermissionSOPWrite,
		PermissionOutboxReplay,
	},
	RoleEngineer: {
		PermissionLogWrite,
		PermissionPersonnelWrite,
	},
	RoleViewer: {},
}

// NormalizeRole 未知或空角色按 viewer 处理
func NormalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	if _, ok := rolePermissions[role]; ok {
		return role
	}
	return RoleViewer
}

// HasPermission 检查角色是否有指定权限
func HasPermission(role string, permission string) bool {
	for _, p := range rolePermissions[NormalizeRole(role)] {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission 返回错误而不是布尔值，便于 handler 统一处理
func CheckPermission(role string, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{Role: NormalizeRole(role), Permission: permission}
	}
	return nil
}

type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions: " + e.Role + " lacks " + e.Permission
}
