// Package types provides domain models shared across costrules components.
//
// The configuration model mirrors the human-authored cost category document.
// Presence is explicit: a nil pointer or nil slice means the key was absent
// from the document, a non-nil empty slice means it was present but empty.
// Rule generation depends on that distinction, so decoders must preserve it.
//
// Document decoding (decode.go) uses yaml.v3; JSON documents decode through
// the same path since JSON is a subset of YAML. ID utilities in ids.go import
// uuid.
package types

// RulePosition selects where inherited-value rules go in the generated list.
type RulePosition string

const (
	// PositionFirst places inherited-value rules before all category rules.
	PositionFirst RulePosition = "First"

	// PositionLast places inherited-value rules after all category rules.
	PositionLast RulePosition = "Last"
)

// Valid reports whether p is one of the known positions.
// The empty position is not valid; callers treat it as PositionLast.
func (p RulePosition) Valid() bool {
	return p == PositionFirst || p == PositionLast
}

// InheritedValues configures fallback rules that use a tag's value directly
// as the category value.
type InheritedValues struct {
	TagOrder     []string     `yaml:"TagOrder"`     // fallback priority, first wins
	RulePosition RulePosition `yaml:"RulePosition"` // empty means PositionLast
}

// CategoryEntry describes one cost category value and what assigns to it.
type CategoryEntry struct {
	Value         *string  `yaml:"Value"` // required label
	Accounts      []string `yaml:"Accounts"`
	TagNames      []string `yaml:"TagNames"`
	TagEndsWith   []string `yaml:"TagEndsWith"`
	TagStartsWith []string `yaml:"TagStartsWith"`
}

// Configuration is the top-level cost category document.
// At least one of InheritedValues or RegularValues must be present.
type Configuration struct {
	InheritedValues *InheritedValues `yaml:"InheritedValues"`
	RegularValues   []CategoryEntry  `yaml:"RegularValues"`
}

// Resource limits enforced when decoding configuration documents.
const (
	// MaxDocumentSize caps the raw configuration document.
	// 1MB is far beyond any hand-written cost category and bounds decoder memory.
	MaxDocumentSize = 1024 * 1024
)
