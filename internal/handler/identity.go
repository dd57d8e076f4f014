package handler

// 身份由前置网关注入到请求头，本服务只读取
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	ContextUserID = "user_id"
	ContextRole   = "role"
)
