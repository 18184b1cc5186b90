package api

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/solatis/costrules/internal/macro"
	"github.com/solatis/costrules/internal/types"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Envelope keys on the wire. Request and response are google.protobuf.Struct
// values carrying the macro event and macro reply shapes.
const (
	keyRequestID    = "requestId"
	keyFragment     = "fragment"
	keyStatus       = "status"
	keyErrorMessage = "errorMessage"
)

// RequestToStruct encodes a macro request as a Struct.
func RequestToStruct(req macro.Request) (*structpb.Struct, error) {
	if len(bytes.TrimSpace(req.Fragment)) == 0 {
		req.Fragment = nil
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return s, nil
}

// RequestFromStruct decodes a Struct into a macro request. Keys other than
// requestId and fragment are ignored.
func RequestFromStruct(s *structpb.Struct) (macro.Request, error) {
	data, err := protojson.Marshal(s)
	if err != nil {
		return macro.Request{}, fmt.Errorf("failed to decode request: %w", err)
	}
	return macro.DecodeRequest(data)
}

// ResponseToStruct encodes a macro response as a Struct.
func ResponseToStruct(resp macro.Response) (*structpb.Struct, error) {
	fields := map[string]any{
		keyRequestID: resp.RequestID,
		keyStatus:    string(resp.Status),
	}
	if resp.Failed() {
		fields[keyErrorMessage] = resp.ErrorMessage
	} else {
		fields[keyFragment] = resp.Fragment
	}
	return structpb.NewStruct(fields)
}

// ResponseFromStruct decodes a Struct into a macro response.
func ResponseFromStruct(s *structpb.Struct) (macro.Response, error) {
	if s == nil {
		return macro.Response{}, fmt.Errorf("empty response")
	}
	fields := s.GetFields()
	resp := macro.Response{
		RequestID:    fields[keyRequestID].GetStringValue(),
		Status:       types.Status(fields[keyStatus].GetStringValue()),
		Fragment:     fields[keyFragment].GetStringValue(),
		ErrorMessage: fields[keyErrorMessage].GetStringValue(),
	}
	switch resp.Status {
	case types.StatusSuccess, types.StatusFailed:
	default:
		return macro.Response{}, fmt.Errorf("unknown response status %q", resp.Status)
	}
	return resp, nil
}

// fragmentChecksum hashes the compact JSON form of a fragment so equal
// documents hash equally regardless of transport whitespace.
func fragmentChecksum(fragment []byte) string {
	var compact bytes.Buffer
	if err := json.Compact(&compact, fragment); err != nil {
		compact.Reset()
		compact.Write(fragment)
	}
	return fmt.Sprintf("%x", sha256.Sum256(compact.Bytes()))
}
