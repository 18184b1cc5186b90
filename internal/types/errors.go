package types

import "errors"

// Sentinel errors for costrules operations.
// Configuration faults are wrapped with context (entry index, offending value)
// and must be matched with errors.Is.
var (
	// ErrMissingSelector indicates neither InheritedValues nor RegularValues is present.
	ErrMissingSelector = errors.New("configuration requires InheritedValues or RegularValues")

	// ErrMissingTagOrder indicates InheritedValues is present without TagOrder.
	ErrMissingTagOrder = errors.New("InheritedValues requires TagOrder")

	// ErrInvalidRulePosition indicates RulePosition is neither First nor Last.
	// Extends the base fault set; an unknown position is rejected rather than
	// dropping the inherited rules.
	ErrInvalidRulePosition = errors.New("RulePosition must be First or Last")

	// ErrMissingCategoryLabel indicates a RegularValues entry without Value.
	ErrMissingCategoryLabel = errors.New("RegularValues entry requires Value")

	// ErrInvalidMatchMode indicates a tag match mode other than ENDS_WITH or STARTS_WITH.
	ErrInvalidMatchMode = errors.New("match mode must be ENDS_WITH or STARTS_WITH")

	// ErrInvalidDocument indicates the configuration document could not be decoded.
	ErrInvalidDocument = errors.New("invalid configuration document")

	// ErrDocumentTooLarge indicates the configuration document exceeds MaxDocumentSize.
	ErrDocumentTooLarge = errors.New("configuration document exceeds maximum size")

	// ErrGenerationNotFound indicates no ledger entry exists for a generation ID.
	ErrGenerationNotFound = errors.New("generation not found")

	// ErrMissingFragment indicates a macro request without a fragment.
	ErrMissingFragment = errors.New("missing fragment")
)
