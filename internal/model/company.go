package model

import (
	"time"
)

type Company struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	TaxID       string    `gorm:"size:50" json:"tax_id"`
	Address     string    `gorm:"size:500" json:"address"`
	City        string    `gorm:"size:100" json:"city"`
	CountryCode string    `gorm:"size:2" json:"country_code"`
	Phone       string    `gorm:"size:20" json:"phone"`
	Website     string    `gorm:"size:255" json:"website"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Company) TableName() string {
	return "companies"
}
