package types

import (
	"errors"
	"strings"
	"testing"
)

func TestParseConfiguration_YAML(t *testing.T) {
	doc := `
InheritedValues:
  TagOrder:
    - CostCenterOther
    - CostCenter
  RulePosition: Last
RegularValues:
  - Value: Category One
    Accounts:
      - 123abc
      - 456xyz
    TagNames:
      - CostCenter
      - CostCenterOther
    TagEndsWith:
      - 123400
  - Value: Category Two
    TagNames: [Team]
    TagStartsWith: [plat-]
`
	cfg, err := ParseConfiguration([]byte(doc))
	if err != nil {
		t.Fatalf("ParseConfiguration() error = %v, want nil", err)
	}

	if cfg.InheritedValues == nil {
		t.Fatal("InheritedValues = nil, want present")
	}
	if got := strings.Join(cfg.InheritedValues.TagOrder, ","); got != "CostCenterOther,CostCenter" {
		t.Errorf("TagOrder = %v, want [CostCenterOther CostCenter]", cfg.InheritedValues.TagOrder)
	}
	if cfg.InheritedValues.RulePosition != PositionLast {
		t.Errorf("RulePosition = %q, want %q", cfg.InheritedValues.RulePosition, PositionLast)
	}

	if len(cfg.RegularValues) != 2 {
		t.Fatalf("len(RegularValues) = %d, want 2", len(cfg.RegularValues))
	}
	first := cfg.RegularValues[0]
	if first.Value == nil || *first.Value != "Category One" {
		t.Errorf("RegularValues[0].Value = %v, want Category One", first.Value)
	}
	if len(first.Accounts) != 2 || first.Accounts[0] != "123abc" {
		t.Errorf("RegularValues[0].Accounts = %v, want [123abc 456xyz]", first.Accounts)
	}
	// Numeric YAML scalars keep their literal text.
	if len(first.TagEndsWith) != 1 || first.TagEndsWith[0] != "123400" {
		t.Errorf("RegularValues[0].TagEndsWith = %v, want [123400]", first.TagEndsWith)
	}
	if first.TagStartsWith != nil {
		t.Errorf("RegularValues[0].TagStartsWith = %v, want absent", first.TagStartsWith)
	}

	second := cfg.RegularValues[1]
	if second.Accounts != nil {
		t.Errorf("RegularValues[1].Accounts = %v, want absent", second.Accounts)
	}
	if len(second.TagStartsWith) != 1 || second.TagStartsWith[0] != "plat-" {
		t.Errorf("RegularValues[1].TagStartsWith = %v, want [plat-]", second.TagStartsWith)
	}
}

func TestParseConfiguration_JSON(t *testing.T) {
	doc := `{"RegularValues": [{"Value": "Category Foo", "Accounts": ["abc123"]}]}`

	cfg, err := ParseConfiguration([]byte(doc))
	if err != nil {
		t.Fatalf("ParseConfiguration() error = %v, want nil", err)
	}
	if cfg.InheritedValues != nil {
		t.Errorf("InheritedValues = %+v, want absent", cfg.InheritedValues)
	}
	if len(cfg.RegularValues) != 1 || *cfg.RegularValues[0].Value != "Category Foo" {
		t.Fatalf("RegularValues = %+v, want one Category Foo entry", cfg.RegularValues)
	}
}

func TestParseConfiguration_Presence(t *testing.T) {
	tests := []struct {
		name            string
		doc             string
		wantInherited   bool
		wantTagOrder    bool
		wantRegular     bool
		wantFirstValue  bool
		wantFirstTagSet bool
	}{
		{
			name: "empty document",
			doc:  "",
		},
		{
			name: "empty object",
			doc:  "{}",
		},
		{
			name:          "inherited without tag order",
			doc:           "InheritedValues: {}",
			wantInherited: true,
		},
		{
			name:          "empty tag order is present",
			doc:           "InheritedValues: {TagOrder: []}",
			wantInherited: true,
			wantTagOrder:  true,
		},
		{
			name:        "empty regular values is present",
			doc:         "RegularValues: []",
			wantRegular: true,
		},
		{
			name:            "entry without label",
			doc:             "RegularValues: [{Accounts: [abc123], TagNames: []}]",
			wantRegular:     true,
			wantFirstTagSet: true,
		},
		{
			name:           "empty label is present",
			doc:            `RegularValues: [{Value: ""}]`,
			wantRegular:    true,
			wantFirstValue: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfiguration([]byte(tt.doc))
			if err != nil {
				t.Fatalf("ParseConfiguration() error = %v, want nil", err)
			}
			if got := cfg.InheritedValues != nil; got != tt.wantInherited {
				t.Errorf("InheritedValues present = %v, want %v", got, tt.wantInherited)
			}
			if cfg.InheritedValues != nil {
				if got := cfg.InheritedValues.TagOrder != nil; got != tt.wantTagOrder {
					t.Errorf("TagOrder present = %v, want %v", got, tt.wantTagOrder)
				}
			}
			if got := cfg.RegularValues != nil; got != tt.wantRegular {
				t.Errorf("RegularValues present = %v, want %v", got, tt.wantRegular)
			}
			if len(cfg.RegularValues) > 0 {
				entry := cfg.RegularValues[0]
				if got := entry.Value != nil; got != tt.wantFirstValue {
					t.Errorf("Value present = %v, want %v", got, tt.wantFirstValue)
				}
				if got := entry.TagNames != nil; got != tt.wantFirstTagSet {
					t.Errorf("TagNames present = %v, want %v", got, tt.wantFirstTagSet)
				}
			}
		})
	}
}

func TestParseConfiguration_UnknownKeysIgnored(t *testing.T) {
	// A misspelled key is dropped, not rejected.
	doc := `RegularValues: [{Value: Foo, TagNames: [One], TagEndWith: [x]}]`

	cfg, err := ParseConfiguration([]byte(doc))
	if err != nil {
		t.Fatalf("ParseConfiguration() error = %v, want nil", err)
	}
	if cfg.RegularValues[0].TagEndsWith != nil {
		t.Errorf("TagEndsWith = %v, want absent", cfg.RegularValues[0].TagEndsWith)
	}
}

func TestParseConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "top-level list",
			doc:     `[1, 2, 3]`,
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "tag order is not a list",
			doc:     `InheritedValues: {TagOrder: {a: b}}`,
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "malformed yaml",
			doc:     "RegularValues: [\n",
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "oversized document",
			doc:     "# " + strings.Repeat("x", MaxDocumentSize),
			wantErr: ErrDocumentTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfiguration([]byte(tt.doc))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseConfiguration() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
