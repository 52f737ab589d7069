package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=255"`
	LastName  string `json:"last_name" binding:"required,min=1,max=255"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=255"`
	Phone     string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Language  string `json:"language,omitempty" binding:"omitempty,oneof=en es"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	UserID int64 `json:"user_id"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// VerifyEmailRequest 邮箱验证请求
type VerifyEmailRequest struct {
	Code string `json:"code" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=255"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID            int64             `json:"id"`
	Email         string            `json:"email"`
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name"`
	Phone         string            `json:"phone,omitempty"`
	Role          string            `json:"role"`
	Language      string            `json:"language"`
	Timezone      string            `json:"timezone"`
	Newsletter    bool              `json:"newsletter"`
	AvatarURL     string            `json:"avatar_url"`
	EmailVerified bool              `json:"email_verified"`
	Subscription  *SubscriptionInfo `json:"subscription,omitempty"`
	Installation  *InstallationInfo `json:"installation,omitempty"`
	CreatedAt     string            `json:"created_at,omitempty"`
}

// SubscriptionInfo 当前订阅
type SubscriptionInfo struct {
	PlanID    int64  `json:"plan_id"`
	PlanName  string `json:"plan_name"`
	Status    string `json:"status"`
	StartedAt string `json:"started_at,omitempty"`
	EndsAt    string `json:"ends_at,omitempty"`
}
