package workflow

import (
	"testing"

	"resto-pos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentSettings_LazyDefault(t *testing.T) {
	t.Parallel()
	db := testDB(t)

	var count int64
	require.NoError(t, db.Model(&models.WorkflowSettings{}).Count(&count).Error)
	require.Zero(t, count)

	s, err := CurrentSettings(db)
	require.NoError(t, err)
	assert.Equal(t, models.ModeFullService, s.Mode)
	assert.Equal(t, models.FlowPendingPreparingServedCompleted, s.StatusFlow)
	assert.True(t, s.AutoOccupyTableOnOrder)
	assert.True(t, s.AllowPartialPayment)
	assert.False(t, s.RequirePaymentAtOrder)

	// Absence meant "create defaults", and only once.
	require.NoError(t, db.Model(&models.WorkflowSettings{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	again, err := CurrentSettings(db)
	require.NoError(t, err)
	assert.Equal(t, s.ID, again.ID)

	require.NoError(t, db.Model(&models.WorkflowSettings{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateSettings_KeepsSingleton(t *testing.T) {
	t.Parallel()
	db := testDB(t)

	first, err := CurrentSettings(db)
	require.NoError(t, err)

	in := DefaultSettings()
	in.Mode = models.ModeQuickService
	in.StatusFlow = models.FlowPendingCompleted
	in.AutoMarkServedWhenPaid = true

	updated, err := UpdateSettings(db, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, models.FlowPendingCompleted, updated.StatusFlow)

	var count int64
	require.NoError(t, db.Model(&models.WorkflowSettings{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateSettings_Validation(t *testing.T) {
	t.Parallel()
	db := testDB(t)

	cases := []struct {
		name   string
		mutate func(*models.WorkflowSettings)
	}{
		{"unknown mode", func(s *models.WorkflowSettings) { s.Mode = "buffet" }},
		{"unknown flow", func(s *models.WorkflowSettings) { s.StatusFlow = "backwards" }},
		{"delay too long", func(s *models.WorkflowSettings) { s.KOTPrintDelaySeconds = 61 }},
		{"negative delay", func(s *models.WorkflowSettings) { s.KOTPrintDelaySeconds = -1 }},
	}

	for _, tc := range cases {
		in := DefaultSettings()
		tc.mutate(&in)
		_, err := UpdateSettings(db, in)
		assert.ErrorIs(t, err, ErrValidation, tc.name)
	}
}
