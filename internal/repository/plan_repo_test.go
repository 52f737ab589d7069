package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/testutil"
)

func TestPlanRepository_GetByPriceID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPlanRepository(db)
	plan := testutil.TestPlan(t, db, "price_m", testutil.WithAnnualPrice("price_y"))

	found, err := repo.GetByPriceID("price_m")
	require.NoError(t, err)
	assert.Equal(t, plan.ID, found.ID)

	found, err = repo.GetByPriceID("price_y")
	require.NoError(t, err)
	assert.Equal(t, plan.ID, found.ID)

	_, err = repo.GetByPriceID("price_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPlanRepository_Upsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPlanRepository(db)

	require.NoError(t, repo.Upsert(&model.Plan{Name: "Starter", Price: 29, StripePriceID: "price_s", Active: true}))
	require.NoError(t, repo.Upsert(&model.Plan{Name: "Starter+", Price: 39, StripePriceID: "price_s", Active: true}))

	plans, err := repo.ListActive()
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Starter+", plans[0].Name)
	assert.Equal(t, 39.0, plans[0].Price)
}
