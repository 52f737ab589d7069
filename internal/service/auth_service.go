package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model/dto"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/email"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/jwt"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/odoo"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/queue"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidVerifyCode  = errors.New("verification code is invalid or expired")
	ErrInvalidResetToken  = errors.New("password reset token is invalid or expired")
	ErrEmailVerified      = errors.New("email already verified")
)

const (
	verificationCodeTTL = 24 * time.Hour
	passwordResetTTL    = time.Hour
)

type AuthService struct {
	userRepo      *repository.UserRepository
	notifications *NotificationService
	emails        EmailQueue
	cfg           *config.Config
}

func NewAuthService(
	userRepo *repository.UserRepository,
	notifications *NotificationService,
	emails EmailQueue,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		notifications: notifications,
		emails:        emails,
		cfg:           cfg,
	}
}

// Register 用户注册，发送欢迎邮件（含验证码）并创建站内通知
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.userRepo.ExistsByEmail(emailAddr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	verifyCode, err := generateRandomCode(32)
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(verificationCodeTTL)

	language := req.Language
	if !odoo.IsSupportedLanguage(language) {
		language = odoo.DefaultLanguage
	}

	user := &model.User{
		Email:                 emailAddr,
		FirstName:             strings.TrimSpace(req.FirstName),
		LastName:              strings.TrimSpace(req.LastName),
		PasswordHash:          string(hashedPassword),
		Role:                  model.RoleUser,
		Language:              language,
		Timezone:              "UTC",
		VerificationCode:      &verifyCode,
		VerificationExpiresAt: &expiresAt,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	// 开发环境自动验证邮箱
	if s.cfg.Server.Mode == "debug" {
		user.EmailVerified = true
		if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"email_verified": true}); err != nil {
			return nil, err
		}
	}

	enqueueEmail(ctx, s.emails, &queue.EmailJob{
		Template: email.TemplateWelcome,
		To:       user.Email,
		Lang:     user.Language,
		UserID:   user.ID,
		Data: map[string]string{
			"Name": user.FullName(),
			"Code": verifyCode,
		},
	})
	if s.notifications != nil {
		s.notifications.NotifyKind(ctx, user.ID, model.NotificationWelcome, user.Language)
	}

	return &dto.RegisterResponse{
		UserID: user.ID,
	}, nil
}

// Login 用户登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 生产环境强制要求邮箱验证
	if !user.EmailVerified && s.cfg.Server.Mode != "debug" {
		return nil, ErrEmailNotVerified
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  buildUserInfo(user),
	}, nil
}

// VerifyEmail 验证邮箱
func (s *AuthService) VerifyEmail(code string) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByVerificationCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidVerifyCode
		}
		return nil, err
	}

	if user.VerificationExpiresAt == nil || time.Now().After(*user.VerificationExpiresAt) {
		return nil, ErrInvalidVerifyCode
	}

	user.EmailVerified = true
	user.VerificationCode = nil
	user.VerificationExpiresAt = nil
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  buildUserInfo(user),
	}, nil
}

// ForgotPassword 生成一小时有效的重置令牌并发送邮件。
// 未注册的邮箱同样返回 nil，不暴露账号是否存在。
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(emailAddr)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Info().Msg("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := generateRandomCode(32)
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(passwordResetTTL)
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"password_reset_token":      token,
		"password_reset_expires_at": expiresAt,
	}); err != nil {
		return err
	}

	enqueueEmail(ctx, s.emails, &queue.EmailJob{
		Template: email.TemplatePasswordReset,
		To:       user.Email,
		Lang:     user.Language,
		UserID:   user.ID,
		Data: map[string]string{
			"Name":  user.FullName(),
			"Token": token,
		},
	})
	if s.notifications != nil {
		s.notifications.NotifyKind(ctx, user.ID, model.NotificationPasswordReset, user.Language, user.Email)
	}
	return nil
}

// ResetPassword 用重置令牌设置新密码，同时视为邮箱已验证并清空所有一次性令牌
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidResetToken
	}
	user, err := s.userRepo.GetByPasswordResetToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if user.PasswordResetExpiresAt == nil || time.Now().After(*user.PasswordResetExpiresAt) {
		return ErrInvalidResetToken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"password_hash":             string(hashed),
		"email_verified":            true,
		"verification_code":         nil,
		"verification_expires_at":   nil,
		"password_reset_token":      nil,
		"password_reset_expires_at": nil,
	}); err != nil {
		return err
	}

	if s.notifications != nil {
		s.notifications.NotifyKind(ctx, user.ID, model.NotificationPasswordUpdate, user.Language)
	}
	return nil
}

// ResendVerification 重新生成验证码并发送，未注册的邮箱返回 nil
func (s *AuthService) ResendVerification(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(emailAddr)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Info().Msg("verification resend requested for unknown email")
			return nil
		}
		return err
	}
	if user.EmailVerified {
		return ErrEmailVerified
	}

	code, err := generateRandomCode(32)
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(verificationCodeTTL)
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"verification_code":       code,
		"verification_expires_at": expiresAt,
	}); err != nil {
		return err
	}

	enqueueEmail(ctx, s.emails, &queue.EmailJob{
		Template: email.TemplateVerifyEmail,
		To:       user.Email,
		Lang:     user.Language,
		UserID:   user.ID,
		Data: map[string]string{
			"Name": user.FullName(),
			"Code": code,
		},
	})
	if s.notifications != nil {
		s.notifications.NotifyKind(ctx, user.ID, model.NotificationVerification, user.Language, user.Email)
	}
	return nil
}

// GetUserByID 根据 ID 获取用户
func (s *AuthService) GetUserByID(id int64) (*model.User, error) {
	return s.userRepo.GetByID(id)
}

func generateRandomCode(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
