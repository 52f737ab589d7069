package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/testutil"
)

func TestWebhookEventRepository_Claim(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewWebhookEventRepository(db)

	claimed, err := repo.Claim("evt_1", "customer.subscription.updated")
	require.NoError(t, err)
	assert.True(t, claimed)

	// 未处理完成（received）时允许重新投递
	claimed, err = repo.Claim("evt_1", "customer.subscription.updated")
	require.NoError(t, err)
	assert.True(t, claimed)

	require.NoError(t, repo.MarkStatus("evt_1", model.WebhookStatusProcessed, ""))
	claimed, err = repo.Claim("evt_1", "customer.subscription.updated")
	require.NoError(t, err)
	assert.False(t, claimed)

	event, err := repo.GetByEventID("evt_1")
	require.NoError(t, err)
	assert.NotNil(t, event.ProcessedAt)
}

func TestWebhookEventRepository_ClaimFailedAndIgnored(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewWebhookEventRepository(db)

	_, err := repo.Claim("evt_failed", "customer.subscription.updated")
	require.NoError(t, err)
	require.NoError(t, repo.MarkStatus("evt_failed", model.WebhookStatusFailed, "unknown plan"))

	claimed, err := repo.Claim("evt_failed", "customer.subscription.updated")
	require.NoError(t, err)
	assert.True(t, claimed)

	_, err = repo.Claim("evt_ignored", "invoice.paid")
	require.NoError(t, err)
	require.NoError(t, repo.MarkStatus("evt_ignored", model.WebhookStatusIgnored, ""))

	claimed, err = repo.Claim("evt_ignored", "invoice.paid")
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestWebhookEventRepository_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewWebhookEventRepository(db)

	_, err := repo.Claim("", "invoice.paid")
	assert.ErrorIs(t, err, ErrEmptyEventID)

	err = repo.MarkStatus("evt_missing", model.WebhookStatusProcessed, "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
