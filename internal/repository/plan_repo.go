package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) GetByID(id int64) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.Where("id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByPriceID 月付或年付 price 均可匹配
func (r *PlanRepository) GetByPriceID(priceID string) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.Where("stripe_price_id = ? OR stripe_annual_price_id = ?", priceID, priceID).
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepository) ListActive() ([]*model.Plan, error) {
	var plans []*model.Plan
	err := r.db.Where("active = ?", true).Order("price ASC").Find(&plans).Error
	return plans, err
}

// Upsert 以 stripe_price_id 为键写入套餐
func (r *PlanRepository) Upsert(plan *model.Plan) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stripe_price_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "price", "annual_price", "stripe_annual_price_id", "active", "updated_at",
		}),
	}).Create(plan).Error
}
