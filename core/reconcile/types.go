package reconcile

// Result represents the reconciliation output for a single key.
// It contains presence flags for each side and any detected mismatches.
type Result struct {
	// Key is the identifier shared by both sides.
	Key string `json:"key"`

	// Name is the display name of the item.
	Name string `json:"name"`

	// DetectedPresent indicates whether the item was found by the scanner.
	DetectedPresent bool `json:"detected_present"`

	// StoredPresent indicates whether the item exists in the catalog.
	StoredPresent bool `json:"stored_present"`

	// Mismatch contains descriptions of field mismatches between both sides,
	// e.g. "install_location: detected=D:\Games stored=C:\Games".
	Mismatch []string `json:"mismatch"`
}

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionCreate stores an item that was detected but never stored.
	ActionCreate ActionType = "create"
	// ActionUpdate refreshes a stored item from its detected counterpart.
	ActionUpdate ActionType = "update"
	// ActionRemove deletes a stored item that is no longer detected.
	ActionRemove ActionType = "remove"
)

// Action represents a planned mutation operation.
type Action[D, S any] struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the item identifier.
	Key string `json:"key"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`

	// Detected is set for create and update actions.
	Detected D `json:"-"`

	// Stored is set for update and remove actions.
	Stored S `json:"-"`
}

// Plan contains reconciliation results and planned actions.
type Plan[D, S any] struct {
	Results []Result       `json:"results"`
	Actions []Action[D, S] `json:"actions"`
	Summary PlanSummary    `json:"summary"`
}

// PlanSummary provides aggregate statistics for a reconcile plan.
type PlanSummary struct {
	// TotalItems is the total number of unique keys.
	TotalItems int `json:"total_items"`

	// MissingStored counts detected items absent from the catalog.
	MissingStored int `json:"missing_stored"`

	// MissingDetected counts stored items the scanner no longer reports.
	MissingDetected int `json:"missing_detected"`

	// Mismatches counts items with field discrepancies.
	Mismatches int `json:"mismatches"`

	CreateActions int `json:"create_actions"`
	UpdateActions int `json:"update_actions"`
	RemoveActions int `json:"remove_actions"`
}

// Options controls which actions are planned and whether they run.
type Options struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// DoRemove enables removal of stored items that are no longer detected.
	DoRemove bool

	// Confirmed indicates the caller accepts mutations.
	// If false, mutations will not execute regardless of DryRun.
	Confirmed bool
}
