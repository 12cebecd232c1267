package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileWithPlan_Actions(t *testing.T) {
	adapter := newFakeAdapter()

	plan, err := ReconcileWithPlan[detectedItem, storedItem](context.Background(), adapter, Options{DoRemove: true})
	require.NoError(t, err)

	assert.Equal(t, PlanSummary{
		TotalItems:      3,
		MissingStored:   1,
		MissingDetected: 1,
		Mismatches:      1,
		CreateActions:   1,
		UpdateActions:   1,
		RemoveActions:   1,
	}, plan.Summary)

	require.Len(t, plan.Actions, 3)
	assert.Equal(t, ActionCreate, plan.Actions[0].Type)
	assert.Equal(t, "100", plan.Actions[0].Key)
	assert.Equal(t, "Portal", plan.Actions[0].Detected.Name)

	assert.Equal(t, ActionUpdate, plan.Actions[1].Type)
	assert.Equal(t, uint(2), plan.Actions[1].Stored.ID)
	assert.Contains(t, plan.Actions[1].Reason, "path")

	assert.Equal(t, ActionRemove, plan.Actions[2].Type)
	assert.Equal(t, uint(3), plan.Actions[2].Stored.ID)
}

func TestReconcileWithPlan_NoRemoveWithoutOption(t *testing.T) {
	plan, err := ReconcileWithPlan[detectedItem, storedItem](context.Background(), newFakeAdapter(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, plan.Summary.MissingDetected)
	assert.Zero(t, plan.Summary.RemoveActions)
	for _, action := range plan.Actions {
		assert.NotEqual(t, ActionRemove, action.Type)
	}
}

func TestReconcileWithPlan_InSync(t *testing.T) {
	adapter := &fakeAdapter{
		detected: map[string]detectedItem{"1": {Name: "A", Path: "x"}},
		stored:   map[string]storedItem{"1": {ID: 1, Name: "A", Path: "x"}},
	}

	plan, err := ReconcileWithPlan[detectedItem, storedItem](context.Background(), adapter, Options{DoRemove: true})
	require.NoError(t, err)
	assert.Empty(t, plan.Actions)
	assert.Equal(t, 1, plan.Summary.TotalItems)
}

func TestApplyPlan_RequiresConfirmation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "not confirmed", opts: Options{DoRemove: true}},
		{name: "dry run", opts: Options{DoRemove: true, Confirmed: true, DryRun: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newFakeAdapter()
			plan, executed, err := ReconcileAndApply[detectedItem, storedItem](context.Background(), adapter, adapter, tt.opts)
			require.NoError(t, err)
			assert.Len(t, plan.Actions, 3)
			assert.Zero(t, executed)
			assert.Empty(t, adapter.created)
			assert.Empty(t, adapter.updated)
			assert.Empty(t, adapter.removed)
		})
	}
}

func TestApplyPlan_Executes(t *testing.T) {
	adapter := newFakeAdapter()
	opts := Options{DoRemove: true, Confirmed: true}

	_, executed, err := ReconcileAndApply[detectedItem, storedItem](context.Background(), adapter, adapter, opts)
	require.NoError(t, err)

	assert.Equal(t, 3, executed)
	assert.Equal(t, []string{"100"}, adapter.created)
	assert.Equal(t, []string{"200"}, adapter.updated)
	assert.Equal(t, []string{"300"}, adapter.removed)
}

func TestApplyPlan_PrefersBatchRemover(t *testing.T) {
	inner := newFakeAdapter()
	mutator := batchAdapter{inner}
	opts := Options{DoRemove: true, Confirmed: true}

	plan, err := ReconcileWithPlan[detectedItem, storedItem](context.Background(), inner, opts)
	require.NoError(t, err)

	executed, err := ApplyPlan[detectedItem, storedItem](context.Background(), mutator, plan, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, executed)
	assert.True(t, inner.batchUsed)
	assert.Equal(t, []string{"300"}, inner.removed)
}

func TestApplyPlan_StopsOnError(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.failOn = "200"
	opts := Options{DoRemove: true, Confirmed: true}

	_, executed, err := ReconcileAndApply[detectedItem, storedItem](context.Background(), adapter, adapter, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update 200")
	assert.Equal(t, 1, executed)
	assert.Empty(t, adapter.removed)
}
