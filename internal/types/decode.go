package types

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseConfiguration decodes a YAML or JSON cost category document.
// Unknown keys are ignored. An empty document decodes to the zero
// Configuration, which generation rejects with ErrMissingSelector.
func ParseConfiguration(data []byte) (*Configuration, error) {
	if len(data) > MaxDocumentSize {
		return nil, ErrDocumentTooLarge
	}

	var cfg Configuration
	if len(bytes.TrimSpace(data)) == 0 {
		return &cfg, nil
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &cfg, nil
}
