package api

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/solatis/costrules/internal/core/auth"
	"github.com/solatis/costrules/internal/macro"
	"github.com/solatis/costrules/internal/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// jsonlRecord is one line of the daily generations mirror.
type jsonlRecord struct {
	GenerationID   types.GenerationID `json:"generationId"`
	RequestID      string             `json:"requestId"`
	Status         types.Status       `json:"status"`
	RuleCount      int                `json:"ruleCount"`
	ConfigChecksum string             `json:"configChecksum"`
	ErrorMessage   string             `json:"errorMessage,omitempty"`
	CreatedAt      string             `json:"createdAt"`
}

// Generate runs the macro handler for one envelope.
// Generation faults are reported in the reply envelope, never as gRPC errors.
// Ledger and JSONL output are best-effort and never fail the request.
// An expired or cancelled request returns the context error and records nothing.
func (s *RuleGeneratorService) Generate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "request envelope required")
	}

	req, err := RequestFromStruct(in)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed request envelope: %v", err)
	}

	resp := macro.Handle(req)

	// A request past its deadline is not recorded; the client never sees the reply
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	s.record(ctx, req, resp)

	out, err := ResponseToStruct(resp)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// record writes the generation to the ledger (when configured) and the JSONL
// mirror. The ledger is the source of truth; JSONL is a debugging aid.
func (s *RuleGeneratorService) record(ctx context.Context, req macro.Request, resp macro.Response) {
	g := &types.Generation{
		ID:             types.NewGenerationID(),
		RequestID:      resp.RequestID,
		Status:         resp.Status,
		RuleCount:      resp.RuleCount,
		Fragment:       resp.Fragment,
		ErrorMessage:   resp.ErrorMessage,
		ConfigChecksum: fragmentChecksum(req.Fragment),
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}

	logger := s.logger.With().
		Str("generation_id", string(g.ID)).
		Str("request_id", g.RequestID).
		Logger()
	if secretID := auth.SecretIDFromContext(ctx); secretID != "" {
		logger = logger.With().Str("secret_id", secretID).Logger()
	}

	if resp.Failed() {
		logger.Warn().Str("error", resp.ErrorMessage).Msg("Generation failed")
	} else {
		logger.Info().Int("rule_count", resp.RuleCount).Msg("Generation succeeded")
	}

	if s.recorder != nil {
		if err := s.recorder.InsertGeneration(ctx, g); err != nil {
			logger.Error().Err(err).Msg("Failed to record generation")
		}
	}

	if err := s.appendJSONL(g); err != nil {
		logger.Warn().Err(err).Msg("Failed to append generation to JSONL mirror")
	}
}

// appendJSONL appends g to the daily mirror file named after its creation date.
func (s *RuleGeneratorService) appendJSONL(g *types.Generation) error {
	filename := filepath.Join(generationsDir(s.cfg), g.CreatedAt.Format("2006-01-02.jsonl"))
	mu := s.getJSONLMutex(filename)
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(jsonlRecord{
		GenerationID:   g.ID,
		RequestID:      g.RequestID,
		Status:         g.Status,
		RuleCount:      g.RuleCount,
		ConfigChecksum: g.ConfigChecksum,
		ErrorMessage:   g.ErrorMessage,
		CreatedAt:      g.CreatedAt.Format(time.RFC3339),
	})
}
