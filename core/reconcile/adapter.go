package reconcile

import "context"

// Adapter defines the model-specific half of a reconciliation.
// D is the detected item type, S the stored item type.
type Adapter[D, S any] interface {
	// Name returns the adapter name used in logs and errors.
	Name() string

	// LoadDetected returns every detected item keyed by its identifier.
	LoadDetected(ctx context.Context) (map[string]D, error)

	// LoadStored returns every stored item keyed by the same identifier.
	LoadStored(ctx context.Context) (map[string]S, error)

	// ResolveName picks a display name. Either pointer may be nil.
	ResolveName(detected *D, stored *S) string

	// CompareFields returns one description per differing field.
	CompareFields(detected D, stored S) []string
}

// Mutator applies planned actions.
type Mutator[D, S any] interface {
	Create(ctx context.Context, key string, detected D) error
	Update(ctx context.Context, key string, detected D, stored S) error
	Remove(ctx context.Context, key string, stored S) error
}

// BatchRemover is implemented by mutators that can remove many items at once.
type BatchRemover[S any] interface {
	RemoveBatch(ctx context.Context, stored map[string]S) error
}
