// internal/rules/rule.go
package rules

import (
	"encoding/json"
	"fmt"
)

/*
 * Cost category rule model and wire encoding.
 *
 * Rule is a closed union of three variants. Each variant marshals itself to
 * the exact cost category wire shape:
 *
 *   RegularTagRule      {"Type":"REGULAR","Value":V,"Rule":{"Tags":{"Key","Values","MatchOptions"}}}
 *   RegularAccountRule  {"Type":"REGULAR","Value":V,"Rule":{"Dimensions":{...}}}
 *                       or "Rule":{"And":[{"Dimensions":{...}},{"Tags":{"Key","MatchOptions":["ABSENT"]}},...]}
 *   InheritedValueRule  {"Type":"INHERITED_VALUE","InheritedValue":{"DimensionName":"TAG","DimensionKey":K}}
 *
 * Field names, nesting and key order are consumed downstream verbatim. Wire
 * structs below declare fields in output order; do not reorder them.
 *
 * Lists are never encoded as null: nil slices are normalised to empty arrays.
 */

// RuleType is the wire discriminator of a rule.
type RuleType string

const (
	RuleTypeRegular        RuleType = "REGULAR"
	RuleTypeInheritedValue RuleType = "INHERITED_VALUE"
)

// MatchOption is a condition match mode.
type MatchOption string

const (
	MatchEquals     MatchOption = "EQUALS"
	MatchAbsent     MatchOption = "ABSENT"
	MatchEndsWith   MatchOption = "ENDS_WITH"
	MatchStartsWith MatchOption = "STARTS_WITH"
)

const (
	// DimensionLinkedAccount is the billing dimension matched by account rules.
	DimensionLinkedAccount = "LINKED_ACCOUNT"

	// DimensionNameTag is the inherited-value source for tag fallback rules.
	DimensionNameTag = "TAG"
)

// Rule is one entry of an ordered cost category rule list.
// Implemented only by RegularTagRule, RegularAccountRule and InheritedValueRule.
type Rule interface {
	json.Marshaler
	Type() RuleType
	isRule()
}

// RegularTagRule assigns Value when tag Key matches any of Values under Match.
type RegularTagRule struct {
	Value  string
	Key    string
	Values []string
	Match  MatchOption
}

// RegularAccountRule assigns Value when the linked account is one of Accounts
// and none of ExcludedTags carries a value.
type RegularAccountRule struct {
	Value        string
	Accounts     []string
	ExcludedTags []string
}

// InheritedValueRule falls back to the value of tag DimensionKey.
type InheritedValueRule struct {
	DimensionKey string
}

func (RegularTagRule) Type() RuleType     { return RuleTypeRegular }
func (RegularAccountRule) Type() RuleType { return RuleTypeRegular }
func (InheritedValueRule) Type() RuleType { return RuleTypeInheritedValue }

func (RegularTagRule) isRule()     {}
func (RegularAccountRule) isRule() {}
func (InheritedValueRule) isRule() {}

type regularWire struct {
	Type  RuleType       `json:"Type"`
	Value string         `json:"Value"`
	Rule  expressionWire `json:"Rule"`
}

type inheritedWire struct {
	Type           RuleType           `json:"Type"`
	InheritedValue inheritedValueWire `json:"InheritedValue"`
}

type inheritedValueWire struct {
	DimensionName string `json:"DimensionName"`
	DimensionKey  string `json:"DimensionKey"`
}

// expressionWire holds exactly one of And, Dimensions, TagMatch or TagAbsent.
// Both tag forms encode under the "Tags" key.
type expressionWire struct {
	And        []expressionWire
	Dimensions *dimensionWire
	TagMatch   *tagMatchWire
	TagAbsent  *tagAbsentWire
}

// MarshalJSON implements json.Marshaler.
func (e expressionWire) MarshalJSON() ([]byte, error) {
	switch {
	case e.And != nil:
		return json.Marshal(struct {
			And []expressionWire `json:"And"`
		}{e.And})
	case e.Dimensions != nil:
		return json.Marshal(struct {
			Dimensions *dimensionWire `json:"Dimensions"`
		}{e.Dimensions})
	case e.TagMatch != nil:
		return json.Marshal(struct {
			Tags *tagMatchWire `json:"Tags"`
		}{e.TagMatch})
	case e.TagAbsent != nil:
		return json.Marshal(struct {
			Tags *tagAbsentWire `json:"Tags"`
		}{e.TagAbsent})
	}
	return nil, fmt.Errorf("empty rule expression")
}

type dimensionWire struct {
	Key          string        `json:"Key"`
	Values       []string      `json:"Values"`
	MatchOptions []MatchOption `json:"MatchOptions"`
}

type tagMatchWire struct {
	Key          string        `json:"Key"`
	Values       []string      `json:"Values"`
	MatchOptions []MatchOption `json:"MatchOptions"`
}

type tagAbsentWire struct {
	Key          string        `json:"Key"`
	MatchOptions []MatchOption `json:"MatchOptions"`
}

// MarshalJSON implements json.Marshaler.
func (r RegularTagRule) MarshalJSON() ([]byte, error) {
	return json.Marshal(regularWire{
		Type:  RuleTypeRegular,
		Value: r.Value,
		Rule: expressionWire{
			TagMatch: &tagMatchWire{
				Key:          r.Key,
				Values:       nonNil(r.Values),
				MatchOptions: []MatchOption{r.Match},
			},
		},
	})
}

// MarshalJSON implements json.Marshaler.
// The account condition always comes first inside And, followed by one
// ABSENT condition per excluded tag in declaration order.
func (r RegularAccountRule) MarshalJSON() ([]byte, error) {
	accounts := expressionWire{
		Dimensions: &dimensionWire{
			Key:          DimensionLinkedAccount,
			Values:       nonNil(r.Accounts),
			MatchOptions: []MatchOption{MatchEquals},
		},
	}

	wire := regularWire{
		Type:  RuleTypeRegular,
		Value: r.Value,
		Rule:  accounts,
	}

	if len(r.ExcludedTags) > 0 {
		and := make([]expressionWire, 0, len(r.ExcludedTags)+1)
		and = append(and, accounts)
		for _, tag := range r.ExcludedTags {
			and = append(and, expressionWire{
				TagAbsent: &tagAbsentWire{
					Key:          tag,
					MatchOptions: []MatchOption{MatchAbsent},
				},
			})
		}
		wire.Rule = expressionWire{And: and}
	}

	return json.Marshal(wire)
}

// MarshalJSON implements json.Marshaler.
func (r InheritedValueRule) MarshalJSON() ([]byte, error) {
	return json.Marshal(inheritedWire{
		Type: RuleTypeInheritedValue,
		InheritedValue: inheritedValueWire{
			DimensionName: DimensionNameTag,
			DimensionKey:  r.DimensionKey,
		},
	})
}

// Marshal encodes an ordered rule list. A nil or empty list encodes as [].
func Marshal(rules []Rule) ([]byte, error) {
	if rules == nil {
		rules = []Rule{}
	}
	return json.Marshal(rules)
}

// MarshalIndent is Marshal with indentation for human consumption.
func MarshalIndent(rules []Rule, prefix, indent string) ([]byte, error) {
	if rules == nil {
		rules = []Rule{}
	}
	return json.MarshalIndent(rules, prefix, indent)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
