package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model/dto"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
)

var ErrCompanyNotFound = errors.New("company not found")

type CompanyService struct {
	userRepo    *repository.UserRepository
	companyRepo *repository.CompanyRepository
}

func NewCompanyService(userRepo *repository.UserRepository, companyRepo *repository.CompanyRepository) *CompanyService {
	return &CompanyService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
	}
}

// Get 获取用户所属公司
func (s *CompanyService) Get(userID int64) (*dto.CompanyInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.CompanyID == nil {
		return nil, ErrCompanyNotFound
	}

	company, err := s.companyRepo.GetByID(*user.CompanyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return buildCompanyInfo(company), nil
}

// Save 没有公司时创建并关联到用户，否则覆盖更新
func (s *CompanyService) Save(userID int64, req *dto.CompanyRequest) (*dto.CompanyInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var company *model.Company
	if user.CompanyID != nil {
		company, err = s.companyRepo.GetByID(*user.CompanyID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	isNew := company == nil
	if isNew {
		company = &model.Company{}
	}
	company.Name = strings.TrimSpace(req.Name)
	company.TaxID = req.TaxID
	company.Address = req.Address
	company.City = req.City
	company.CountryCode = strings.ToUpper(req.CountryCode)
	company.Phone = req.Phone
	company.Website = req.Website

	if isNew {
		err = s.companyRepo.CreateForUser(user.ID, company)
	} else {
		err = s.companyRepo.Update(company)
	}
	if err != nil {
		return nil, err
	}
	return buildCompanyInfo(company), nil
}

func buildCompanyInfo(company *model.Company) *dto.CompanyInfo {
	return &dto.CompanyInfo{
		ID:          company.ID,
		Name:        company.Name,
		TaxID:       company.TaxID,
		Address:     company.Address,
		City:        company.City,
		CountryCode: company.CountryCode,
		Phone:       company.Phone,
		Website:     company.Website,
	}
}
