package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
)

var seq int64

func next() int64 {
	return atomic.AddInt64(&seq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := next()
	user := &model.User{
		Email:         fmt.Sprintf("test_%d_%d@example.com", time.Now().UnixNano(), n),
		FirstName:     "Test",
		LastName:      fmt.Sprintf("User%d", n),
		PasswordHash:  "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
		Role:          model.RoleUser,
		Language:      "es",
		Timezone:      "UTC",
		EmailVerified: true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithPasswordHash 设置密码哈希
func WithPasswordHash(hash string) func(*model.User) {
	return func(u *model.User) {
		u.PasswordHash = hash
	}
}

// WithStripe 设置 Stripe customer 与 subscription，空字符串表示不设置
func WithStripe(customerID, subscriptionID string) func(*model.User) {
	return func(u *model.User) {
		if customerID != "" {
			u.StripeCustomerID = &customerID
		}
		if subscriptionID != "" {
			u.StripeSubscriptionID = &subscriptionID
		}
	}
}

// WithLanguage 设置首选语言
func WithLanguage(lang string) func(*model.User) {
	return func(u *model.User) {
		u.Language = lang
	}
}

// WithPhone 设置电话
func WithPhone(phone string) func(*model.User) {
	return func(u *model.User) {
		u.Phone = &phone
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithCompany 关联公司
func WithCompany(companyID int64) func(*model.User) {
	return func(u *model.User) {
		u.CompanyID = &companyID
	}
}

// TestPlan 创建测试套餐
func TestPlan(t *testing.T, db *gorm.DB, priceID string, opts ...func(*model.Plan)) *model.Plan {
	t.Helper()

	plan := &model.Plan{
		Name:          fmt.Sprintf("Plan %d", next()),
		Description:   "test plan",
		Price:         29,
		AnnualPrice:   290,
		StripePriceID: priceID,
		Active:        true,
	}

	for _, opt := range opts {
		opt(plan)
	}

	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("Failed to create test plan: %v", err)
	}

	return plan
}

// WithAnnualPrice 设置年付 price
func WithAnnualPrice(priceID string) func(*model.Plan) {
	return func(p *model.Plan) {
		p.StripeAnnualPriceID = &priceID
	}
}

// WithPlanName 设置套餐名
func WithPlanName(name string) func(*model.Plan) {
	return func(p *model.Plan) {
		p.Name = name
	}
}

// TestInstallation 创建测试实例
func TestInstallation(t *testing.T, db *gorm.DB, userID int64, domain string, opts ...func(*model.Installation)) *model.Installation {
	t.Helper()

	installation := &model.Installation{
		Domain:   domain,
		UserID:   userID,
		Database: domain,
		Version:  "18.0",
		Edition:  model.EditionCommunity,
		Status:   model.InstallationStatusActive,
	}

	for _, opt := range opts {
		opt(installation)
	}

	if err := db.Create(installation).Error; err != nil {
		t.Fatalf("Failed to create test installation: %v", err)
	}

	return installation
}

// WithInstallationStatus 设置实例状态
func WithInstallationStatus(status string) func(*model.Installation) {
	return func(i *model.Installation) {
		i.Status = status
	}
}

// TestIntent 创建开通意图，age 为距今的创建时长
func TestIntent(t *testing.T, db *gorm.DB, installation *model.Installation, age time.Duration) *model.ProvisioningIntent {
	t.Helper()

	intent := &model.ProvisioningIntent{
		InstallationID: installation.ID,
		UserID:         installation.UserID,
		Domain:         installation.Domain,
		Edition:        installation.Edition,
		State:          model.IntentStateInFlight,
		CreatedAt:      time.Now().Add(-age),
	}

	if err := db.Create(intent).Error; err != nil {
		t.Fatalf("Failed to create test intent: %v", err)
	}

	return intent
}

// TestNotification 创建测试通知
func TestNotification(t *testing.T, db *gorm.DB, userID int64, read bool) *model.Notification {
	t.Helper()

	notification := &model.Notification{
		UserID:  userID,
		Type:    model.NotificationAccountUpdate,
		Title:   "Account Updated",
		Message: "Your account details have been successfully updated.",
		Read:    read,
	}

	if err := db.Create(notification).Error; err != nil {
		t.Fatalf("Failed to create test notification: %v", err)
	}

	return notification
}
