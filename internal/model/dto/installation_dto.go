package dto

// CreateInstallationRequest 创建租户实例请求
type CreateInstallationRequest struct {
	Edition    string  `json:"edition,omitempty" binding:"omitempty,oneof=community enterprise"`
	Database   string  `json:"database" binding:"required,dbname"`
	Password   string  `json:"password" binding:"required,tenant_password"`
	LicenseKey *string `json:"license_key,omitempty" binding:"omitempty,max=255"`
	Version    string  `json:"version,omitempty" binding:"omitempty,oneof=18.0"`
}

// UpdateInstallationRequest 管理员更新实例
type UpdateInstallationRequest struct {
	Status     *string `json:"status,omitempty" binding:"omitempty,oneof=pending active maintenance failed inactive"`
	LicenseKey *string `json:"license_key,omitempty" binding:"omitempty,max=255"`
	Version    *string `json:"version,omitempty" binding:"omitempty,oneof=18.0"`
}

// InstallationInfo 实例信息
type InstallationInfo struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	Domain     string `json:"domain"`
	Database   string `json:"database"`
	Version    string `json:"version"`
	Edition    string `json:"edition"`
	Status     string `json:"status"`
	LicenseKey string `json:"license_key,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// ListQuery 分页查询参数
type ListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=pending active maintenance failed inactive"`
}
