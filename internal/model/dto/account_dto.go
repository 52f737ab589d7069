package dto

// UpdateAccountRequest 更新账户信息请求
type UpdateAccountRequest struct {
	FirstName  *string `json:"first_name,omitempty" binding:"omitempty,min=1,max=255"`
	LastName   *string `json:"last_name,omitempty" binding:"omitempty,min=1,max=255"`
	Phone      *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Language   *string `json:"language,omitempty" binding:"omitempty,oneof=en es"`
	Timezone   *string `json:"timezone,omitempty" binding:"omitempty,timezone"`
	Newsletter *bool   `json:"newsletter,omitempty"`
}

// UpdatePasswordRequest 修改密码请求
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=255"`
}

// SelectPlanRequest 选择套餐请求
type SelectPlanRequest struct {
	PlanID   int64  `json:"plan_id" binding:"required"`
	Interval string `json:"interval,omitempty" binding:"omitempty,oneof=month year"`
}

// SelectPlanResponse 返回 Stripe Checkout 地址
type SelectPlanResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// AvatarResponse 头像上传结果
type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

// CompanyRequest 公司信息
type CompanyRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	TaxID       string `json:"tax_id,omitempty" binding:"omitempty,max=50"`
	Address     string `json:"address,omitempty" binding:"omitempty,max=500"`
	City        string `json:"city,omitempty" binding:"omitempty,max=100"`
	CountryCode string `json:"country_code,omitempty" binding:"omitempty,iso3166_1_alpha2"`
	Phone       string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Website     string `json:"website,omitempty" binding:"omitempty,url"`
}

// CompanyInfo 公司信息
type CompanyInfo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	TaxID       string `json:"tax_id"`
	Address     string `json:"address"`
	City        string `json:"city"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
}
