// Package reconcile compares what a scanner currently reports against what
// the catalog has stored and turns the difference into a plan.
//
// Both sides are loaded into in-memory indices concurrently, keyed by the
// same identifier. The engine walks the union of keys and reports presence
// on each side plus any field mismatches. From those results a plan is built:
//
//   - create: detected but not stored
//   - update: present on both sides with differing fields
//   - remove: stored but no longer detected (only with Options.DoRemove)
//
// Plans are inert until ApplyPlan runs them through a Mutator, which only
// happens with Options.Confirmed set and Options.DryRun unset.
//
// # Usage Example
//
//	plan, executed, err := reconcile.ReconcileAndApply(ctx, adapter, adapter, reconcile.Options{
//	    DoRemove:  true,
//	    Confirmed: true,
//	})
//
// Mutators that can remove in bulk implement BatchRemover.
package reconcile
