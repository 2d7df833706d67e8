// Package storage provides the file-backed holdings store.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/Avishkar2004/8byte/internal/common"
	"github.com/Avishkar2004/8byte/internal/interfaces"
	"github.com/Avishkar2004/8byte/internal/models"
)

// HoldingsStore reads the static instrument universe from a JSON file.
// The file is read once and cached; Reload picks up edits without a
// process restart.
type HoldingsStore struct {
	path   string
	logger *common.Logger

	mu       sync.RWMutex
	holdings []models.Instrument
	loaded   bool
}

// NewHoldingsStore creates a store over the given file path.
func NewHoldingsStore(path string, logger *common.Logger) *HoldingsStore {
	return &HoldingsStore{path: path, logger: logger}
}

// GetHoldings returns the instrument list, loading the file on first use.
func (s *HoldingsStore) GetHoldings(ctx context.Context) ([]models.Instrument, error) {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return s.holdings, nil
	}
	s.mu.RUnlock()

	return s.Reload(ctx)
}

// Reload re-reads the holdings file.
func (s *HoldingsStore) Reload(_ context.Context) ([]models.Instrument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings file %s: %w", s.path, err)
	}

	var holdings []models.Instrument
	if err := json.Unmarshal(data, &holdings); err != nil {
		return nil, fmt.Errorf("failed to parse holdings file %s: %w", s.path, err)
	}

	for i, h := range holdings {
		if h.Symbol == "" {
			return nil, fmt.Errorf("holdings file %s: entry %d has no symbol", s.path, i)
		}
	}

	s.mu.Lock()
	s.holdings = holdings
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info().Str("path", s.path).Int("holdings", len(holdings)).Msg("Holdings loaded")

	return holdings, nil
}

var _ interfaces.HoldingsStore = (*HoldingsStore)(nil)
