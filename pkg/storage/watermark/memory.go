package watermark

import (
	"context"
	"sync"

	"github.com/flowbaker/hubspot-executor/pkg/domain"
)

// MemoryStore keeps watermarks in process. It backs single-node runs and
// tests; everything is lost on restart.
type MemoryStore struct {
	mtx        sync.RWMutex
	watermarks map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		watermarks: map[string]int64{},
	}
}

func (s *MemoryStore) Get(ctx context.Context, key domain.WatermarkKey) (int64, bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	value, ok := s.watermarks[key.String()]

	return value, ok, nil
}

func (s *MemoryStore) Put(ctx context.Context, key domain.WatermarkKey, value int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if current, ok := s.watermarks[key.String()]; ok && current >= value {
		return nil
	}

	s.watermarks[key.String()] = value

	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key domain.WatermarkKey) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.watermarks, key.String())

	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
