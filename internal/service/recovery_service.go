package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/metrics"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
)

const recoveryBatchSize = 100

// RecoveryReport 一次恢复扫描的结果
type RecoveryReport struct {
	Scanned    int `json:"scanned"`
	Completed  int `json:"completed"`
	RolledBack int `json:"rolled_back"`
	Retried    int `json:"retried"`
	Orphaned   int `json:"orphaned"`
}

// ProvisioningRecovery 处理进程崩溃后遗留的 in_flight 开通意图
type ProvisioningRecovery struct {
	intentRepo       *repository.IntentRepository
	installationRepo *repository.InstallationRepository
	gateway          ProvisioningGateway
	cfg              config.ProvisioningConfig
	now              func() time.Time
}

func NewProvisioningRecovery(
	intentRepo *repository.IntentRepository,
	installationRepo *repository.InstallationRepository,
	gateway ProvisioningGateway,
	cfg config.ProvisioningConfig,
) *ProvisioningRecovery {
	return &ProvisioningRecovery{
		intentRepo:       intentRepo,
		installationRepo: installationRepo,
		gateway:          gateway,
		cfg:              cfg,
		now:              time.Now,
	}
}

// Recover 只处理超过宽限期的意图：数据库已存在则补全为 active，不存在则回滚，
// 查询失败时记录错误留给下一轮。
func (r *ProvisioningRecovery) Recover(ctx context.Context) (*RecoveryReport, error) {
	report := &RecoveryReport{}
	cutoff := r.now().Add(-r.cfg.RecoveryGrace())

	intents, err := r.intentRepo.ListInFlightBefore(cutoff, recoveryBatchSize)
	if err != nil {
		return nil, err
	}

	for _, intent := range intents {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		outcome, err := r.recoverOne(ctx, intent)
		if err != nil {
			log.Error().Err(err).Int64("intent_id", intent.ID).Str("domain", intent.Domain).Msg("recovery step failed")
			outcome = "error"
		}
		metrics.RecoveryTotal.WithLabelValues(outcome).Inc()

		switch outcome {
		case "completed":
			report.Completed++
		case "rolled_back":
			report.RolledBack++
		case "retry":
			report.Retried++
		case "orphaned":
			report.Orphaned++
		}
	}

	if n, err := r.intentRepo.CountInFlight(); err == nil {
		metrics.InFlightIntents.Set(float64(n))
	}

	if report.Scanned > 0 {
		log.Info().
			Int("scanned", report.Scanned).
			Int("completed", report.Completed).
			Int("rolled_back", report.RolledBack).
			Int("retried", report.Retried).
			Int("orphaned", report.Orphaned).
			Msg("provisioning recovery finished")
	}
	return report, nil
}

func (r *ProvisioningRecovery) recoverOne(ctx context.Context, intent *model.ProvisioningIntent) (string, error) {
	installation, err := r.installationRepo.GetByID(intent.InstallationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "orphaned", r.intentRepo.Close(intent.ID, model.IntentStateRolledBack, "installation missing")
		}
		return "", err
	}

	// 企业版不调用 Odoo，只需补上 Complete
	if intent.Edition == model.EditionEnterprise {
		return "completed", r.installationRepo.Complete(installation.ID, model.InstallationStatusPending)
	}

	exists, err := r.gateway.DatabaseExists(ctx, intent.Domain)
	if err != nil {
		log.Warn().Err(err).Str("domain", intent.Domain).Int("attempts", intent.Attempts+1).Msg("recovery lookup failed")
		return "retry", r.intentRepo.RecordFailure(intent.ID, err.Error())
	}

	if exists {
		log.Info().Str("domain", intent.Domain).Msg("recovered installation as active")
		return "completed", r.installationRepo.Complete(installation.ID, model.InstallationStatusActive)
	}

	log.Info().Str("domain", intent.Domain).Msg("rolling back unprovisioned installation")
	return "rolled_back", r.installationRepo.RollBack(installation.ID, "database not found during recovery")
}
