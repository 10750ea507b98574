package dal

import (
	"sync"

	"github.com/opencourt/scoutbook/internal/models"
)

// MemoryDAL implements ScoutingDAL with in-process storage. It is the
// default driver for development and doubles as the test fake.
type MemoryDAL struct {
	mu    sync.RWMutex
	store models.Store

	// FailSave, when set, makes Save return a PersistenceError. Tests use
	// it to exercise the write-failure path.
	FailSave error
}

// NewMemoryDAL creates an empty in-memory data access layer.
func NewMemoryDAL() *MemoryDAL {
	return &MemoryDAL{store: models.Store{}}
}

func (m *MemoryDAL) Load() (models.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.Clone(), nil
}

func (m *MemoryDAL) Save(store models.Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave != nil {
		return &PersistenceError{Op: "save", Err: m.FailSave}
	}
	m.store = store.Clone()
	return nil
}

func (m *MemoryDAL) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = models.Store{}
	return nil
}
