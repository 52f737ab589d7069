package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
)

var (
	ErrDomainExists        = errors.New("installation domain already exists")
	ErrUserHasInstallation = errors.New("user already owns an installation")
)

type InstallationRepository struct {
	db *gorm.DB
	// precheck 在插入前检查唯一性，测试中可替换以模拟并发写入
	precheck func(tx *gorm.DB, installation *model.Installation) error
}

func NewInstallationRepository(db *gorm.DB) *InstallationRepository {
	r := &InstallationRepository{db: db}
	r.precheck = checkAvailable
	return r
}

func (r *InstallationRepository) GetByID(id int64) (*model.Installation, error) {
	var installation model.Installation
	err := r.db.Where("id = ?", id).First(&installation).Error
	if err != nil {
		return nil, err
	}
	return &installation, nil
}

func (r *InstallationRepository) GetByDomain(domain string) (*model.Installation, error) {
	var installation model.Installation
	err := r.db.Where("domain = ?", domain).First(&installation).Error
	if err != nil {
		return nil, err
	}
	return &installation, nil
}

func (r *InstallationRepository) GetByUserID(userID int64) (*model.Installation, error) {
	var installation model.Installation
	err := r.db.Where("user_id = ?", userID).First(&installation).Error
	if err != nil {
		return nil, err
	}
	return &installation, nil
}

func (r *InstallationRepository) CountByDomain(domain string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Installation{}).Where("domain = ?", domain).Count(&count).Error
	return count, err
}

func (r *InstallationRepository) CountByUserID(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Installation{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Reserve 在同一事务内检查唯一性、插入 pending 实例和 in_flight 开通意图。
// 并发请求由唯一索引兜底，冲突会被归类为 ErrDomainExists 或 ErrUserHasInstallation。
func (r *InstallationRepository) Reserve(installation *model.Installation, intent *model.ProvisioningIntent) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := r.precheck(tx, installation); err != nil {
			return err
		}

		if err := tx.Create(installation).Error; err != nil {
			return err
		}

		intent.InstallationID = installation.ID
		intent.State = model.IntentStateInFlight
		return tx.Create(intent).Error
	})
	if isDuplicateKey(err) {
		installation.ID = 0
		return r.classifyConflict(installation, err)
	}
	return err
}

func checkAvailable(tx *gorm.DB, installation *model.Installation) error {
	var count int64
	if err := tx.Model(&model.Installation{}).Where("domain = ?", installation.Domain).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDomainExists
	}

	if err := tx.Model(&model.Installation{}).Where("user_id = ?", installation.UserID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUserHasInstallation
	}
	return nil
}

// classifyConflict 在事务外重新查询，找出是哪个唯一索引冲突
func (r *InstallationRepository) classifyConflict(installation *model.Installation, cause error) error {
	if n, err := r.CountByDomain(installation.Domain); err == nil && n > 0 {
		return ErrDomainExists
	}
	if n, err := r.CountByUserID(installation.UserID); err == nil && n > 0 {
		return ErrUserHasInstallation
	}
	return cause
}

// Complete 写入最终状态并关闭开通意图
func (r *InstallationRepository) Complete(id int64, status string) error {
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Installation{}).Where("id = ?", id).
			Update("status", status).Error; err != nil {
			return err
		}
		return tx.Model(&model.ProvisioningIntent{}).
			Where("installation_id = ? AND state = ?", id, model.IntentStateInFlight).
			Updates(map[string]interface{}{
				"state":       model.IntentStateCompleted,
				"resolved_at": now,
			}).Error
	})
}

// RollBack 删除实例（补偿动作）并把意图标记为已回滚
func (r *InstallationRepository) RollBack(id int64, reason string) error {
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Delete(&model.Installation{}).Error; err != nil {
			return err
		}
		return tx.Model(&model.ProvisioningIntent{}).
			Where("installation_id = ? AND state = ?", id, model.IntentStateInFlight).
			Updates(map[string]interface{}{
				"state":       model.IntentStateRolledBack,
				"last_error":  reason,
				"resolved_at": now,
			}).Error
	})
}

// UpdateStatus 管理员手动设置状态，仍在 in_flight 的意图一并关闭，恢复任务不再处理
func (r *InstallationRepository) UpdateStatus(id int64, status string) error {
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Installation{}).Where("id = ?", id).Update("status", status)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&model.ProvisioningIntent{}).
			Where("installation_id = ? AND state = ?", id, model.IntentStateInFlight).
			Updates(map[string]interface{}{
				"state":       model.IntentStateCompleted,
				"last_error":  "resolved manually as " + status,
				"resolved_at": now,
			}).Error
	})
}

func (r *InstallationRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Installation{}).Where("id = ?", id).Updates(fields).Error
}

func (r *InstallationRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&model.Installation{}).Error
}

func (r *InstallationRepository) List(page, pageSize int, status string) ([]*model.Installation, int64, error) {
	var installations []*model.Installation
	var total int64

	query := r.db.Model(&model.Installation{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&installations).Error; err != nil {
		return nil, 0, err
	}

	return installations, total, nil
}
