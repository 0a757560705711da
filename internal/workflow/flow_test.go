package workflow

import (
	"testing"

	"resto-pos/internal/models"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []string{
	models.StatusPending,
	models.StatusPreparing,
	models.StatusReady,
	models.StatusServed,
	models.StatusCompleted,
	models.StatusCancelled,
}

func TestAllowedNext_FlowTables(t *testing.T) {
	t.Parallel()

	cases := []struct {
		flow string
		from string
		want []string
	}{
		{models.FlowPendingPreparingServedCompleted, models.StatusPending, []string{models.StatusPreparing}},
		{models.FlowPendingPreparingServedCompleted, models.StatusPreparing, []string{models.StatusServed}},
		{models.FlowPendingPreparingServedCompleted, models.StatusServed, []string{models.StatusCompleted}},
		{models.FlowPendingPreparingServedCompleted, models.StatusCompleted, nil},
		{models.FlowPendingPreparingServedCompleted, models.StatusCancelled, nil},
		{models.FlowPendingPreparingServedCompleted, models.StatusReady, nil},

		{models.FlowPendingReadyServedCompleted, models.StatusPending, []string{models.StatusReady}},
		{models.FlowPendingReadyServedCompleted, models.StatusReady, []string{models.StatusServed}},
		{models.FlowPendingReadyServedCompleted, models.StatusServed, []string{models.StatusCompleted}},
		{models.FlowPendingReadyServedCompleted, models.StatusPreparing, nil},

		{models.FlowPendingCompleted, models.StatusPending, []string{models.StatusCompleted}},
		{models.FlowPendingCompleted, models.StatusPreparing, nil},
		{models.FlowPendingCompleted, models.StatusCompleted, nil},

		{models.FlowCustom, models.StatusPending, []string{models.StatusPreparing, models.StatusReady, models.StatusServed, models.StatusCompleted}},
		{models.FlowCustom, models.StatusPreparing, []string{models.StatusReady, models.StatusServed, models.StatusCompleted}},
		{models.FlowCustom, models.StatusReady, []string{models.StatusServed, models.StatusCompleted}},
		{models.FlowCustom, models.StatusServed, []string{models.StatusCompleted}},
		{models.FlowCustom, models.StatusCompleted, nil},
	}

	for _, tc := range cases {
		got := AllowedNext(tc.flow, tc.from)
		assert.ElementsMatch(t, tc.want, got, "flow %s from %s", tc.flow, tc.from)
	}
}

func TestNextStatuses_CancelOverride(t *testing.T) {
	t.Parallel()

	flows := []string{
		models.FlowPendingPreparingServedCompleted,
		models.FlowPendingReadyServedCompleted,
		models.FlowPendingCompleted,
		models.FlowCustom,
	}

	for _, flow := range flows {
		for _, status := range allStatuses {
			next := NextStatuses(flow, status)
			if Terminal(status) {
				assert.NotContains(t, next, models.StatusCancelled,
					"terminal %s in %s must not offer cancellation", status, flow)
			} else {
				assert.Contains(t, next, models.StatusCancelled,
					"non-terminal %s in %s must always allow cancellation", status, flow)
			}
		}
	}
}

func TestNextStatuses_TerminalsHaveNoExits(t *testing.T) {
	t.Parallel()

	for _, flow := range []string{models.FlowPendingPreparingServedCompleted, models.FlowPendingCompleted, models.FlowCustom} {
		assert.Empty(t, NextStatuses(flow, models.StatusCompleted))
		assert.Empty(t, NextStatuses(flow, models.StatusCancelled))
	}
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	assert.True(t, CanTransition(models.FlowPendingPreparingServedCompleted, models.StatusPending, models.StatusPreparing))
	assert.True(t, CanTransition(models.FlowPendingPreparingServedCompleted, models.StatusPreparing, models.StatusCancelled))
	assert.False(t, CanTransition(models.FlowPendingPreparingServedCompleted, models.StatusPending, models.StatusServed))
	assert.False(t, CanTransition(models.FlowPendingCompleted, models.StatusPending, models.StatusServed))
	assert.False(t, CanTransition(models.FlowPendingPreparingServedCompleted, models.StatusCompleted, models.StatusPending))
}

func TestCanReach(t *testing.T) {
	t.Parallel()

	// Served lies ahead of pending via preparing, even without a direct edge.
	assert.True(t, CanReach(models.FlowPendingPreparingServedCompleted, models.StatusPending, models.StatusServed))
	assert.True(t, CanReach(models.FlowPendingReadyServedCompleted, models.StatusReady, models.StatusServed))
	assert.True(t, CanReach(models.FlowCustom, models.StatusPending, models.StatusCompleted))

	// No going back, and no served at all in the two-stage flow.
	assert.False(t, CanReach(models.FlowPendingPreparingServedCompleted, models.StatusServed, models.StatusPending))
	assert.False(t, CanReach(models.FlowPendingCompleted, models.StatusPending, models.StatusServed))
}

func TestAllowedNext_UnknownFlowFallsBackToCustom(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		AllowedNext(models.FlowCustom, models.StatusPending),
		AllowedNext("someday_flow", models.StatusPending))
}
