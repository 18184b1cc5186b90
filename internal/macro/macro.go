// Package macro adapts rule generation to the request/response envelope used
// by template macro invocations.
package macro

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/solatis/costrules/internal/rules"
	"github.com/solatis/costrules/internal/types"
)

// generateRules is swapped in tests to exercise panic recovery.
var generateRules = rules.Generate

// Request is the subset of a macro event the handler reads.
// Other event keys (region, accountId, params, ...) are ignored.
type Request struct {
	RequestID string          `json:"requestId"`
	Fragment  json.RawMessage `json:"fragment"`
}

// Response is the macro reply. Fragment is set on success, ErrorMessage on failure.
type Response struct {
	RequestID    string       `json:"requestId"`
	Status       types.Status `json:"status"`
	Fragment     string       `json:"fragment,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty"`

	// RuleCount is the number of generated rules; not part of the reply.
	RuleCount int `json:"-"`
}

// Failed reports whether the response carries a failure.
func (r Response) Failed() bool {
	return r.Status != types.StatusSuccess
}

// DecodeRequest parses a macro event.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", types.ErrInvalidDocument, err)
	}
	return req, nil
}

// Handle runs generation for one request and never panics.
// The request id is echoed on every path.
func Handle(req Request) (resp Response) {
	resp.RequestID = req.RequestID

	defer func() {
		if r := recover(); r != nil {
			resp = failure(req.RequestID, fmt.Errorf("internal error: %v", r))
		}
	}()

	fragment, count, err := Generate(req.Fragment)
	if err != nil {
		return failure(req.RequestID, err)
	}

	return Response{
		RequestID: req.RequestID,
		Status:    types.StatusSuccess,
		Fragment:  string(fragment),
		RuleCount: count,
	}
}

// Generate decodes a fragment, builds its rules and returns the serialized
// rule list together with the rule count.
func Generate(fragment []byte) ([]byte, int, error) {
	trimmed := bytes.TrimSpace(fragment)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, 0, types.ErrMissingFragment
	}

	cfg, err := types.ParseConfiguration(fragment)
	if err != nil {
		return nil, 0, err
	}

	list, err := generateRules(cfg)
	if err != nil {
		return nil, 0, err
	}

	data, err := rules.Marshal(list)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal rules: %w", err)
	}
	return data, len(list), nil
}

func failure(requestID string, err error) Response {
	return Response{
		RequestID:    requestID,
		Status:       types.StatusFailed,
		ErrorMessage: err.Error(),
	}
}
