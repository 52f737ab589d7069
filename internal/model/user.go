package model

import (
	"time"
)

// 订阅状态，与 Stripe subscription.status 一致
const (
	PlanStatusActive            = "active"
	PlanStatusCanceled          = "canceled"
	PlanStatusPastDue           = "past_due"
	PlanStatusUnpaid            = "unpaid"
	PlanStatusIncomplete        = "incomplete"
	PlanStatusIncompleteExpired = "incomplete_expired"
	PlanStatusTrialing          = "trialing"
	PlanStatusPaused            = "paused"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID                     int64         `gorm:"primaryKey" json:"id"`
	Email                  string        `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FirstName              string        `gorm:"size:255;not null" json:"first_name"`
	LastName               string        `gorm:"size:255;not null" json:"last_name"`
	Phone                  *string       `gorm:"size:20" json:"phone,omitempty"`
	PasswordHash           string        `gorm:"size:255;not null" json:"-"`
	Role                   string        `gorm:"size:20;default:user" json:"role"`
	Language               string        `gorm:"size:5;default:es" json:"language"`
	Timezone               string        `gorm:"size:100;default:UTC" json:"timezone"`
	Newsletter             bool          `gorm:"default:false" json:"newsletter"`
	AvatarURL              string        `gorm:"size:500" json:"avatar_url"`
	CompanyID              *int64        `gorm:"index" json:"company_id,omitempty"`
	StripeCustomerID       *string       `gorm:"size:100;uniqueIndex" json:"-"`
	StripeSubscriptionID   *string       `gorm:"size:100;index" json:"-"`
	DefaultPaymentMethodID *string       `gorm:"size:100" json:"-"`
	PlanID                 *int64        `gorm:"index" json:"plan_id,omitempty"`
	Plan                   *Plan         `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	PlanStatus             string        `gorm:"size:30" json:"plan_status"`
	PlanStart              *time.Time    `json:"plan_start,omitempty"`
	PlanEnd                *time.Time    `json:"plan_end,omitempty"`
	Installation           *Installation `gorm:"foreignKey:UserID" json:"installation,omitempty"`
	EmailVerified          bool          `gorm:"default:false" json:"email_verified"`
	VerificationCode       *string       `gorm:"size:100" json:"-"`
	VerificationExpiresAt  *time.Time    `json:"-"`
	PasswordResetToken     *string       `gorm:"size:100;index" json:"-"`
	PasswordResetExpiresAt *time.Time    `json:"-"`
	CreatedAt              time.Time     `json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// FullName 用于 Stripe customer 名称
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsSubscribed 同时持有 customer 与 subscription 才视为已订阅
func (u *User) IsSubscribed() bool {
	return u.StripeCustomerID != nil && *u.StripeCustomerID != "" &&
		u.StripeSubscriptionID != nil && *u.StripeSubscriptionID != ""
}
