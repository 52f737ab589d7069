package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model/dto"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/email"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/metrics"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/odoo"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/queue"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/validation"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
)

// SupportedVersion 当前唯一支持的 Odoo 版本
const SupportedVersion = "18.0"

// ProvisioningGateway 租户数据库的创建与查询
type ProvisioningGateway interface {
	CreateDatabase(ctx context.Context, req odoo.CreateDatabaseRequest) error
	DatabaseExists(ctx context.Context, name string) (bool, error)
}

type InstallationService struct {
	userRepo         *repository.UserRepository
	companyRepo      *repository.CompanyRepository
	installationRepo *repository.InstallationRepository
	gateway          ProvisioningGateway
	notifications    *NotificationService
	emails           EmailQueue
	cfg              config.OdooConfig
}

func NewInstallationService(
	userRepo *repository.UserRepository,
	companyRepo *repository.CompanyRepository,
	installationRepo *repository.InstallationRepository,
	gateway ProvisioningGateway,
	notifications *NotificationService,
	emails EmailQueue,
	cfg config.OdooConfig,
) *InstallationService {
	return &InstallationService{
		userRepo:         userRepo,
		companyRepo:      companyRepo,
		installationRepo: installationRepo,
		gateway:          gateway,
		notifications:    notifications,
		emails:           emails,
		cfg:              cfg,
	}
}

// CreateInstallation 为用户开通租户实例。
// 所有检查通过后才写库；社区版调用 Odoo 创建数据库，失败时删除实例并返回 ErrProvisioningFailed。
func (s *InstallationService) CreateInstallation(ctx context.Context, userID int64, req *dto.CreateInstallationRequest) (*dto.InstallationInfo, error) {
	edition, version, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !user.IsSubscribed() {
		metrics.ProvisioningTotal.WithLabelValues(edition, "not_subscribed").Inc()
		return nil, ErrNotSubscribed
	}

	installation := &model.Installation{
		Domain:               req.Database,
		UserID:               user.ID,
		Database:             req.Database,
		Version:              version,
		Edition:              edition,
		LicenseKey:           req.LicenseKey,
		Status:               model.InstallationStatusPending,
		StripeCustomerID:     *user.StripeCustomerID,
		StripeSubscriptionID: *user.StripeSubscriptionID,
	}
	intent := &model.ProvisioningIntent{
		UserID:  user.ID,
		Domain:  installation.Domain,
		Edition: edition,
	}

	if err := s.installationRepo.Reserve(installation, intent); err != nil {
		switch {
		case errors.Is(err, repository.ErrDomainExists):
			metrics.ProvisioningTotal.WithLabelValues(edition, "domain_taken").Inc()
			return nil, ErrDomainTaken
		case errors.Is(err, repository.ErrUserHasInstallation):
			metrics.ProvisioningTotal.WithLabelValues(edition, "already_exists").Inc()
			return nil, ErrInstallationAlreadyExists
		}
		return nil, err
	}

	// 企业版走人工开通流程，实例保持 pending
	if edition == model.EditionEnterprise {
		if err := s.installationRepo.Complete(installation.ID, model.InstallationStatusPending); err != nil {
			return nil, err
		}
		metrics.ProvisioningTotal.WithLabelValues(edition, "pending").Inc()
		log.Info().Int64("user_id", user.ID).Str("domain", installation.Domain).Msg("enterprise installation reserved")
		return buildInstallationInfo(installation), nil
	}

	if err := s.provision(ctx, user, req); err != nil {
		if rbErr := s.installationRepo.RollBack(installation.ID, err.Error()); rbErr != nil {
			// 意图仍为 in_flight，由恢复任务处理
			log.Error().Err(rbErr).Int64("installation_id", installation.ID).Msg("rollback failed")
		}
		metrics.ProvisioningTotal.WithLabelValues(edition, "failed").Inc()
		log.Warn().Err(err).Int64("user_id", user.ID).Str("domain", installation.Domain).Msg("provisioning failed")
		return nil, fmt.Errorf("%w: %w", ErrProvisioningFailed, err)
	}

	if err := s.installationRepo.Complete(installation.ID, model.InstallationStatusActive); err != nil {
		// 数据库已创建，恢复任务会把实例标记为 active
		log.Error().Err(err).Int64("installation_id", installation.ID).Msg("failed to mark installation active")
		return buildInstallationInfo(installation), nil
	}
	installation.Status = model.InstallationStatusActive
	metrics.ProvisioningTotal.WithLabelValues(edition, "success").Inc()

	log.Info().Int64("user_id", user.ID).Str("domain", installation.Domain).Msg("installation provisioned")
	s.announce(ctx, user, installation)

	return buildInstallationInfo(installation), nil
}

// validate 在任何读写之前校验请求，返回规范化后的版本类型和版本号
func (s *InstallationService) validate(req *dto.CreateInstallationRequest) (string, string, error) {
	edition := req.Edition
	if edition == "" {
		edition = model.EditionCommunity
	}
	if edition != model.EditionCommunity && edition != model.EditionEnterprise {
		return "", "", ErrInvalidEdition
	}
	if !validation.IsDatabaseName(req.Database) {
		return "", "", ErrInvalidDatabaseName
	}
	if !validation.IsTenantPassword(req.Password) {
		return "", "", ErrWeakPassword
	}

	version := req.Version
	if version == "" {
		version = s.cfg.DefaultVersion
	}
	if version == "" {
		version = SupportedVersion
	}
	if version != SupportedVersion {
		return "", "", ErrUnsupportedVersion
	}
	return edition, version, nil
}

func (s *InstallationService) provision(ctx context.Context, user *model.User, req *dto.CreateInstallationRequest) error {
	payload := odoo.CreateDatabaseRequest{
		Login:       user.Email,
		Name:        req.Database,
		Password:    req.Password,
		Lang:        odoo.LanguageTag(user.Language),
		CountryCode: s.countryCode(user),
	}
	if user.Phone != nil {
		payload.Phone = *user.Phone
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout())
	defer cancel()

	start := time.Now()
	err := s.gateway.CreateDatabase(ctx, payload)
	metrics.ProvisioningDuration.Observe(time.Since(start).Seconds())
	return err
}

// countryCode 公司信息缺失时不传国家
func (s *InstallationService) countryCode(user *model.User) string {
	if user.CompanyID == nil || s.companyRepo == nil {
		return ""
	}
	company, err := s.companyRepo.GetByID(*user.CompanyID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Err(err).Int64("company_id", *user.CompanyID).Msg("failed to load company")
		}
		return ""
	}
	return company.CountryCode
}

func (s *InstallationService) announce(ctx context.Context, user *model.User, installation *model.Installation) {
	if s.notifications != nil {
		s.notifications.NotifyKind(ctx, user.ID, model.NotificationInstallationReady, user.Language, installation.Domain)
	}
	enqueueEmail(ctx, s.emails, &queue.EmailJob{
		Template: email.TemplateInstallationReady,
		To:       user.Email,
		Lang:     user.Language,
		UserID:   user.ID,
		Data: map[string]string{
			"Name":   user.FullName(),
			"Domain": installation.Domain,
		},
	})
}

// GetMine 获取当前用户的实例
func (s *InstallationService) GetMine(userID int64) (*dto.InstallationInfo, error) {
	installation, err := s.installationRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstallationNotFound
		}
		return nil, err
	}
	return buildInstallationInfo(installation), nil
}

// List 管理员分页查询
func (s *InstallationService) List(page, pageSize int, status string) ([]*dto.InstallationInfo, int64, error) {
	installations, total, err := s.installationRepo.List(page, pageSize, status)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.InstallationInfo, 0, len(installations))
	for _, installation := range installations {
		items = append(items, buildInstallationInfo(installation))
	}
	return items, total, nil
}

// Update 管理员修改状态、许可证或版本
func (s *InstallationService) Update(id int64, req *dto.UpdateInstallationRequest) (*dto.InstallationInfo, error) {
	installation, err := s.installationRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstallationNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Status != nil && !isInstallationStatus(*req.Status) {
		return nil, ErrInvalidInstallationStatus
	}
	if req.LicenseKey != nil {
		fields["license_key"] = *req.LicenseKey
		installation.LicenseKey = req.LicenseKey
	}
	if req.Version != nil {
		if *req.Version != SupportedVersion {
			return nil, ErrUnsupportedVersion
		}
		fields["version"] = *req.Version
		installation.Version = *req.Version
	}

	if len(fields) > 0 {
		if err := s.installationRepo.UpdateFields(id, fields); err != nil {
			return nil, err
		}
	}
	if req.Status != nil && *req.Status != installation.Status {
		if err := s.installationRepo.UpdateStatus(id, *req.Status); err != nil {
			return nil, err
		}
		installation.Status = *req.Status
	}
	return buildInstallationInfo(installation), nil
}

// Delete 管理员删除实例记录（不删除 Odoo 数据库）
func (s *InstallationService) Delete(id int64) error {
	if _, err := s.installationRepo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInstallationNotFound
		}
		return err
	}
	return s.installationRepo.Delete(id)
}

func isInstallationStatus(status string) bool {
	switch status {
	case model.InstallationStatusPending, model.InstallationStatusActive,
		model.InstallationStatusMaintenance, model.InstallationStatusFailed,
		model.InstallationStatusInactive:
		return true
	}
	return false
}

func buildInstallationInfo(installation *model.Installation) *dto.InstallationInfo {
	info := &dto.InstallationInfo{
		ID:        installation.ID,
		UserID:    installation.UserID,
		Domain:    installation.Domain,
		Database:  installation.Database,
		Version:   installation.Version,
		Edition:   installation.Edition,
		Status:    installation.Status,
		CreatedAt: installation.CreatedAt.Format(time.RFC3339),
	}
	if installation.LicenseKey != nil {
		info.LicenseKey = *installation.LicenseKey
	}
	return info
}
