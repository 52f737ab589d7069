package repository

import (
	"gorm.io/gorm"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) GetByID(id int64) (*model.Company, error) {
	var company model.Company
	err := r.db.Where("id = ?", id).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// CreateForUser 创建公司并关联到用户
func (r *CompanyRepository) CreateForUser(userID int64, company *model.Company) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(company).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", userID).Update("company_id", company.ID).Error
	})
}

func (r *CompanyRepository) Update(company *model.Company) error {
	return r.db.Save(company).Error
}
