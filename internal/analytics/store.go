package analytics

import (
	"fmt"
	"log"
	"sync"

	"github.com/aeroweather/backend/internal/domain"
)

// ModelStore holds the current trained model and its on-disk snapshot path.
// The old model is only replaced after a full successful fit, so readers
// never observe a partially trained model.
type ModelStore struct {
	mu    sync.RWMutex
	path  string
	model *TrainedModel
}

// NewModelStore creates a store for the snapshot at path.
func NewModelStore(path string) *ModelStore {
	return &ModelStore{path: path}
}

// Current returns the in-memory model, loading the snapshot lazily on first
// use. An absent or corrupt snapshot is an error; the caller must retrain.
func (s *ModelStore) Current() (*TrainedModel, error) {
	s.mu.RLock()
	model := s.model
	s.mu.RUnlock()
	if model != nil {
		return model, nil
	}

	loaded, err := Load(s.path)
	if err != nil {
		log.Printf("analytics: no usable model snapshot: %v", err)
		return nil, fmt.Errorf("analytics: no trained model available: %w", err)
	}

	s.mu.Lock()
	s.model = loaded
	s.mu.Unlock()
	return loaded, nil
}

// Retrain fits a fresh model on records, persists it over the previous
// snapshot, and swaps it in atomically.
func (s *ModelStore) Retrain(records []domain.FlightRecord) (*TrainedModel, error) {
	model, err := Train(records)
	if err != nil {
		return nil, err
	}

	if err := model.Save(s.path); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.model = model
	s.mu.Unlock()

	log.Printf("analytics: retrained model on %d records (cv_rmse=%.2f)", len(records), model.Metrics.CVRMSE)
	return model, nil
}
