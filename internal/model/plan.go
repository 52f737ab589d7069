package model

import (
	"time"
)

type Plan struct {
	ID                  int64     `gorm:"primaryKey" json:"id"`
	Name                string    `gorm:"size:100;not null" json:"name"`
	Description         string    `gorm:"type:text" json:"description"`
	Price               float64   `gorm:"type:decimal(10,2)" json:"price"`
	AnnualPrice         float64   `gorm:"type:decimal(10,2)" json:"annual_price"`
	StripePriceID       string    `gorm:"size:100;uniqueIndex;not null" json:"stripe_price_id"`
	StripeAnnualPriceID *string   `gorm:"size:100;uniqueIndex" json:"stripe_annual_price_id,omitempty"`
	Active              bool      `gorm:"default:true;index" json:"active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (Plan) TableName() string {
	return "plans"
}

// PriceFor 按计费周期返回对应的 Stripe price
func (p *Plan) PriceFor(interval string) (string, bool) {
	switch interval {
	case "", "month":
		return p.StripePriceID, p.StripePriceID != ""
	case "year":
		if p.StripeAnnualPriceID == nil || *p.StripeAnnualPriceID == "" {
			return "", false
		}
		return *p.StripeAnnualPriceID, true
	}
	return "", false
}
