package service

import (
	"github.com/rs/zerolog/log"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model/dto"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
)

type PlanService struct {
	planRepo *repository.PlanRepository
}

func NewPlanService(planRepo *repository.PlanRepository) *PlanService {
	return &PlanService{planRepo: planRepo}
}

// ListActive 可订阅的套餐，按价格升序
func (s *PlanService) ListActive() ([]*dto.PlanInfo, error) {
	plans, err := s.planRepo.ListActive()
	if err != nil {
		return nil, err
	}

	items := make([]*dto.PlanInfo, 0, len(plans))
	for _, plan := range plans {
		items = append(items, buildPlanInfo(plan))
	}
	return items, nil
}

// Seed 按 stripe_price_id 幂等写入套餐，返回写入数量
func (s *PlanService) Seed(seeds []config.PlanSeed) (int, error) {
	count := 0
	for _, seed := range seeds {
		if seed.PriceID == "" {
			log.Warn().Str("name", seed.Name).Msg("skipping plan without price id")
			continue
		}

		plan := &model.Plan{
			Name:          seed.Name,
			Description:   seed.Description,
			Price:         seed.Price,
			AnnualPrice:   seed.AnnualPrice,
			StripePriceID: seed.PriceID,
			Active:        true,
		}
		if seed.AnnualPriceID != "" {
			annual := seed.AnnualPriceID
			plan.StripeAnnualPriceID = &annual
		}

		if err := s.planRepo.Upsert(plan); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func buildPlanInfo(plan *model.Plan) *dto.PlanInfo {
	info := &dto.PlanInfo{
		ID:            plan.ID,
		Name:          plan.Name,
		Description:   plan.Description,
		Price:         plan.Price,
		AnnualPrice:   plan.AnnualPrice,
		StripePriceID: plan.StripePriceID,
	}
	if plan.StripeAnnualPriceID != nil {
		info.StripeAnnualPriceID = *plan.StripeAnnualPriceID
	}
	return info
}
