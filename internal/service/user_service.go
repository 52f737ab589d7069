package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model/dto"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/storage"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
)

var (
	ErrWrongPassword   = errors.New("current password is incorrect")
	ErrStorageDisabled = errors.New("object storage is not configured")
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidFileType = errors.New("file type not allowed")
	ErrInvalidLanguage = errors.New("unsupported language")
	ErrInvalidTimezone = errors.New("unknown timezone")
	ErrAccountInUse    = errors.New("account still owns an installation")
)

// ObjectStorage 头像等媒体文件的存储
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) string
}

type UserService struct {
	userRepo      *repository.UserRepository
	storage       ObjectStorage
	notifications *NotificationService
	cfg           *config.Config
}

// NewUserService storage 为 nil 时头像上传不可用
func NewUserService(
	userRepo *repository.UserRepository,
	storage ObjectStorage,
	notifications *NotificationService,
	cfg *config.Config,
) *UserService {
	return &UserService{
		userRepo:      userRepo,
		storage:       storage,
		notifications: notifications,
		cfg:           cfg,
	}
}

// GetProfile 获取用户详情（含套餐与实例）
func (s *UserService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByIDWithRelations(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return buildUserInfo(user), nil
}

// UpdateProfile 更新用户信息
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateAccountRequest) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		if *req.Phone == "" {
			fields["phone"] = nil
		} else {
			fields["phone"] = *req.Phone
		}
	}
	if req.Language != nil {
		if *req.Language != "en" && *req.Language != "es" {
			return nil, ErrInvalidLanguage
		}
		fields["language"] = *req.Language
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, ErrInvalidTimezone
		}
		fields["timezone"] = *req.Timezone
	}
	if req.Newsletter != nil {
		fields["newsletter"] = *req.Newsletter
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(user.ID, fields); err != nil {
			return nil, err
		}
		if s.notifications != nil {
			lang := user.Language
			if req.Language != nil {
				lang = *req.Language
			}
			s.notifications.NotifyKind(ctx, user.ID, model.NotificationAccountUpdate, lang)
		}
	}

	return s.GetProfile(user.ID)
}

// UpdatePassword 修改登录密码
func (s *UserService) UpdatePassword(ctx context.Context, userID int64, req *dto.UpdatePasswordRequest) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"password_hash": string(hashed)}); err != nil {
		return err
	}

	if s.notifications != nil {
		s.notifications.NotifyKind(ctx, user.ID, model.NotificationPasswordUpdate, user.Language)
	}
	return nil
}

// UploadAvatar 上传头像到对象存储并替换旧头像
func (s *UserService) UploadAvatar(ctx context.Context, userID int64, file io.Reader, size int64, filename, contentType string) (string, error) {
	if s.storage == nil {
		return "", ErrStorageDisabled
	}
	if s.cfg.Upload.MaxSize > 0 && size > s.cfg.Upload.MaxSize {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !s.extensionAllowed(ext) {
		return "", ErrInvalidFileType
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	avatarURL, err := s.storage.Upload(ctx, storage.ObjectKey("avatars", ext), file, size, contentType)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"avatar_url": avatarURL}); err != nil {
		return "", err
	}

	if user.AvatarURL != "" {
		if key := s.storage.KeyFromURL(user.AvatarURL); key != "" {
			if err := s.storage.Delete(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to delete old avatar")
			}
		}
	}

	return avatarURL, nil
}

// DeleteAccount 删除账号及其通知。仍持有实例的账号不能删除，需先由管理员移除实例。
func (s *UserService) DeleteAccount(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByIDWithRelations(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Installation != nil {
		return ErrAccountInUse
	}

	if err := s.userRepo.DeleteWithNotifications(user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if s.storage != nil && user.AvatarURL != "" {
		if key := s.storage.KeyFromURL(user.AvatarURL); key != "" {
			if err := s.storage.Delete(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to delete avatar of removed account")
			}
		}
	}

	log.Info().Int64("user_id", user.ID).Msg("account deleted")
	return nil
}

func (s *UserService) extensionAllowed(ext string) bool {
	if ext == "" {
		return false
	}
	if len(s.cfg.Upload.AllowedExtensions) == 0 {
		return true
	}
	for _, allowed := range s.cfg.Upload.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

func buildUserInfo(user *model.User) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:            user.ID,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Role:          user.Role,
		Language:      user.Language,
		Timezone:      user.Timezone,
		Newsletter:    user.Newsletter,
		AvatarURL:     user.AvatarURL,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
	}
	if user.Phone != nil {
		info.Phone = *user.Phone
	}

	if user.PlanID != nil {
		sub := &dto.SubscriptionInfo{
			PlanID: *user.PlanID,
			Status: user.PlanStatus,
		}
		if user.Plan != nil {
			sub.PlanName = user.Plan.Name
		}
		if user.PlanStart != nil {
			sub.StartedAt = user.PlanStart.Format(time.RFC3339)
		}
		if user.PlanEnd != nil {
			sub.EndsAt = user.PlanEnd.Format(time.RFC3339)
		}
		info.Subscription = sub
	}

	if user.Installation != nil {
		info.Installation = buildInstallationInfo(user.Installation)
	}

	return info
}
