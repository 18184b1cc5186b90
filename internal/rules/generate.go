// internal/rules/generate.go
package rules

import (
	"fmt"

	"github.com/solatis/costrules/internal/types"
)

/*
 * Rule list generation.
 *
 * ORDERING IS THE CONTRACT. The downstream engine assigns the category value
 * of the first matching rule, so the position of every rule is semantic:
 *
 *   [inherited rules if RulePosition=First]
 *   for each RegularValues entry, in document order:
 *       ENDS_WITH tag rules   (one per TagNames entry, in order)
 *       STARTS_WITH tag rules (one per TagNames entry, in order)
 *       account rule          (excluding the entry's TagNames)
 *   [inherited rules if RulePosition=Last or unset]
 *
 * Any refactor that sorts, groups or deduplicates rules silently changes cost
 * allocation without changing a single type. Tests pin the order.
 *
 * Validation runs before any rule is built and reports the first fault in
 * this order: missing selector, missing tag order, invalid rule position,
 * missing category label. There is no partial output.
 */

// Generate validates cfg and builds its ordered rule list.
func Generate(cfg *types.Configuration) ([]Rule, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	position := types.PositionLast
	var inherited []Rule
	if iv := cfg.InheritedValues; iv != nil {
		if iv.RulePosition != "" {
			position = iv.RulePosition
		}
		inherited = InheritedRules(iv.TagOrder)
	}

	rules := make([]Rule, 0, len(inherited)+len(cfg.RegularValues))

	if position == types.PositionFirst {
		rules = append(rules, inherited...)
	}

	for _, entry := range cfg.RegularValues {
		expanded, err := categoryRules(entry)
		if err != nil {
			return nil, err
		}
		rules = append(rules, expanded...)
	}

	if position == types.PositionLast {
		rules = append(rules, inherited...)
	}

	return rules, nil
}

// Validate checks required fields without building rules. Faults are
// reported in this order:
//
//  1. ErrMissingSelector: neither InheritedValues nor RegularValues present.
//  2. ErrMissingTagOrder: InheritedValues without TagOrder.
//  3. ErrInvalidRulePosition: RulePosition set to something other than
//     First or Last. This check is an addition to the three base faults;
//     without it an unknown position would silently drop every inherited
//     rule.
//  4. ErrMissingCategoryLabel: a RegularValues entry without Value.
func Validate(cfg *types.Configuration) error {
	if cfg == nil || (cfg.InheritedValues == nil && cfg.RegularValues == nil) {
		return types.ErrMissingSelector
	}

	if iv := cfg.InheritedValues; iv != nil {
		if iv.TagOrder == nil {
			return types.ErrMissingTagOrder
		}
		if iv.RulePosition != "" && !iv.RulePosition.Valid() {
			return fmt.Errorf("%w: got %q", types.ErrInvalidRulePosition, iv.RulePosition)
		}
	}

	for i, entry := range cfg.RegularValues {
		if entry.Value == nil {
			return fmt.Errorf("%w: RegularValues[%d]", types.ErrMissingCategoryLabel, i)
		}
	}

	return nil
}

// categoryRules expands one category entry: tag rules, then the account rule.
func categoryRules(entry types.CategoryEntry) ([]Rule, error) {
	label := *entry.Value
	var rules []Rule

	if entry.TagNames != nil {
		searches := []struct {
			values []string
			mode   MatchOption
		}{
			{entry.TagEndsWith, MatchEndsWith},
			{entry.TagStartsWith, MatchStartsWith},
		}
		for _, s := range searches {
			if s.values == nil {
				continue
			}
			tagRules, err := TagRules(label, entry.TagNames, s.values, s.mode)
			if err != nil {
				return nil, err
			}
			rules = append(rules, tagRules...)
		}
	}

	if entry.Accounts != nil {
		rules = append(rules, AccountRule(label, entry.Accounts, entry.TagNames))
	}

	return rules, nil
}
