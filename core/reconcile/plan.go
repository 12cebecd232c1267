package reconcile

import (
	"context"
	"fmt"
	"strings"
)

// ReconcileWithPlan performs reconciliation and returns a plan with results and actions.
// It does NOT execute actions; use ApplyPlan for that.
func ReconcileWithPlan[D, S any](ctx context.Context, adapter Adapter[D, S], opts Options) (*Plan[D, S], error) {
	index, err := BuildIndex(ctx, adapter)
	if err != nil {
		return nil, err
	}

	results := resultsFromIndex(index, adapter)
	summary, actions := buildPlanFromResults(results, index, opts)

	return &Plan[D, S]{
		Results: results,
		Actions: actions,
		Summary: summary,
	}, nil
}

// ApplyPlan executes the actions in a reconcile plan.
// Returns the number of actions executed and any error encountered.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
func ApplyPlan[D, S any](ctx context.Context, mutator Mutator[D, S], plan *Plan[D, S], opts Options) (executed int, err error) {
	if !opts.Confirmed || opts.DryRun || plan == nil {
		return 0, nil
	}

	removals := make(map[string]S)

	for _, action := range plan.Actions {
		if err := ctx.Err(); err != nil {
			return executed, err
		}

		switch action.Type {
		case ActionCreate:
			if err := mutator.Create(ctx, action.Key, action.Detected); err != nil {
				return executed, fmt.Errorf("failed to create %s: %w", action.Key, err)
			}
			executed++
		case ActionUpdate:
			if err := mutator.Update(ctx, action.Key, action.Detected, action.Stored); err != nil {
				return executed, fmt.Errorf("failed to update %s: %w", action.Key, err)
			}
			executed++
		case ActionRemove:
			removals[action.Key] = action.Stored
		}
	}

	if len(removals) == 0 {
		return executed, nil
	}

	if batch, ok := mutator.(BatchRemover[S]); ok {
		if err := batch.RemoveBatch(ctx, removals); err != nil {
			return executed, fmt.Errorf("failed to batch remove: %w", err)
		}
		return executed + len(removals), nil
	}

	for _, action := range plan.Actions {
		if action.Type != ActionRemove {
			continue
		}
		if err := mutator.Remove(ctx, action.Key, action.Stored); err != nil {
			return executed, fmt.Errorf("failed to remove %s: %w", action.Key, err)
		}
		executed++
	}

	return executed, nil
}

// ReconcileAndApply is a convenience wrapper that plans and optionally applies actions.
func ReconcileAndApply[D, S any](ctx context.Context, adapter Adapter[D, S], mutator Mutator[D, S], opts Options) (*Plan[D, S], int, error) {
	plan, err := ReconcileWithPlan(ctx, adapter, opts)
	if err != nil {
		return nil, 0, err
	}

	executed, err := ApplyPlan(ctx, mutator, plan, opts)
	if err != nil {
		return plan, executed, err
	}

	return plan, executed, nil
}

// buildPlanFromResults generates the summary and actions from reconcile results.
func buildPlanFromResults[D, S any](results []Result, index *Index[D, S], opts Options) (PlanSummary, []Action[D, S]) {
	summary := PlanSummary{TotalItems: len(results)}
	var actions []Action[D, S]

	for _, result := range results {
		switch {
		case result.DetectedPresent && !result.StoredPresent:
			summary.MissingStored++
			summary.CreateActions++
			actions = append(actions, Action[D, S]{
				Type:     ActionCreate,
				Key:      result.Key,
				Reason:   "detected but not stored",
				Detected: index.Detected[result.Key],
			})

		case !result.DetectedPresent && result.StoredPresent:
			summary.MissingDetected++
			if !opts.DoRemove {
				continue
			}
			summary.RemoveActions++
			actions = append(actions, Action[D, S]{
				Type:   ActionRemove,
				Key:    result.Key,
				Reason: "stored but no longer detected",
				Stored: index.Stored[result.Key],
			})

		case len(result.Mismatch) > 0:
			summary.Mismatches++
			summary.UpdateActions++
			actions = append(actions, Action[D, S]{
				Type:     ActionUpdate,
				Key:      result.Key,
				Reason:   "field mismatch: " + strings.Join(result.Mismatch, ", "),
				Detected: index.Detected[result.Key],
				Stored:   index.Stored[result.Key],
			})
		}
	}

	return summary, actions
}
