package dto

// ── 用户模块 DTO ──

// UpdateUserRequest 更新用户请求（管理员）
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=50"`
	LastName  *string `json:"last_name"  binding:"omitempty,min=1,max=50"`
	Role      *string `json:"role"       binding:"omitempty,oneof=admin employee"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
}
