// Package api provides the gRPC rule generator service.
package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/solatis/costrules/internal/core/config"
	"github.com/solatis/costrules/internal/logging"
	"github.com/solatis/costrules/internal/types"
)

// Recorder persists generation records. *db.Queries implements it.
type Recorder interface {
	InsertGeneration(ctx context.Context, g *types.Generation) error
}

// RuleGeneratorService implements RuleGeneratorServer.
// Thin orchestration layer delegating to macro, with ledger and JSONL
// recording on the side.
type RuleGeneratorService struct {
	recorder     Recorder
	cfg          *config.ServiceConfig
	logger       zerolog.Logger
	jsonlMutexes map[string]*sync.Mutex
	mutexLock    sync.Mutex
}

// NewRuleGeneratorService creates service instance with dependencies.
// recorder may be nil to disable the ledger.
// Auto-creates generations directory if not exists.
func NewRuleGeneratorService(cfg *config.ServiceConfig, recorder Recorder) (*RuleGeneratorService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}

	if err := os.MkdirAll(generationsDir(cfg), 0755); err != nil {
		return nil, fmt.Errorf("failed to create generations directory: %w", err)
	}

	return &RuleGeneratorService{
		recorder:     recorder,
		cfg:          cfg,
		logger:       logging.GetLogger("api"),
		jsonlMutexes: make(map[string]*sync.Mutex),
	}, nil
}

func generationsDir(cfg *config.ServiceConfig) string {
	return filepath.Join(cfg.DataDir, "generations")
}

// getJSONLMutex returns mutex for given filename, creating if not exists.
// Per-file mutex protects concurrent writes to same daily JSONL file.
// Mutex map grows by ~1 entry/day.
func (s *RuleGeneratorService) getJSONLMutex(filename string) *sync.Mutex {
	s.mutexLock.Lock()
	defer s.mutexLock.Unlock()

	if _, ok := s.jsonlMutexes[filename]; !ok {
		s.jsonlMutexes[filename] = &sync.Mutex{}
	}
	return s.jsonlMutexes[filename]
}
