// internal/rules/builders.go
package rules

import (
	"fmt"

	"github.com/solatis/costrules/internal/types"
)

/*
 * Stateless rule builders.
 *
 * Each builder maps one slice of configuration to rules and preserves input
 * order exactly: tag order becomes fallback priority, tag-name order becomes
 * rule order, excluded-tag order becomes And order. Builders never sort,
 * deduplicate or drop entries.
 *
 * Only TagRules validates (match mode). The other builders accept any input,
 * including empty lists.
 */

// InheritedRules builds one inherited-value rule per tag name, in order.
// Earlier tags take precedence downstream.
func InheritedRules(tagOrder []string) []Rule {
	rules := make([]Rule, 0, len(tagOrder))
	for _, tag := range tagOrder {
		rules = append(rules, InheritedValueRule{DimensionKey: tag})
	}
	return rules
}

// TagRules builds one tag-match rule per tag name, each carrying the full
// search list and mode. Mode must be MatchEndsWith or MatchStartsWith.
func TagRules(label string, tagNames, search []string, mode MatchOption) ([]Rule, error) {
	if mode != MatchEndsWith && mode != MatchStartsWith {
		return nil, fmt.Errorf("%w: got %q", types.ErrInvalidMatchMode, mode)
	}

	rules := make([]Rule, 0, len(tagNames))
	for _, tag := range tagNames {
		rules = append(rules, RegularTagRule{
			Value:  label,
			Key:    tag,
			Values: search,
			Match:  mode,
		})
	}
	return rules, nil
}

// AccountRule builds the linked-account rule for a category. When
// excludedTags is non-empty the rule only applies to resources where none of
// those tags is set, so tag rules for the same tags win.
func AccountRule(label string, accounts, excludedTags []string) Rule {
	return RegularAccountRule{
		Value:        label,
		Accounts:     accounts,
		ExcludedTags: excludedTags,
	}
}
